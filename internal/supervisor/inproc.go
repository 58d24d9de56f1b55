package supervisor

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"conductor/internal/api"
	"conductor/internal/spec"
	"conductor/pkg/logging"
)

// Runner is implemented by targets that run as goroutines inside the
// coordinator's own process. Run blocks until the worker is done; a nil
// return is a normal exit, ctx cancellation is a shutdown request.
type Runner interface {
	Run(ctx context.Context, args []interface{}) error
}

// Inproc supervises goroutine-based workers. Targets handed to Spawn must
// implement Runner; targets that do not are declined without error so that
// mixed graphs can park purely declarative nodes here.
type Inproc struct {
	mu        sync.Mutex
	instances map[string]*inprocInstance
}

// NewInproc returns an empty in-process supervisor.
func NewInproc() *Inproc {
	return &Inproc{instances: make(map[string]*inprocInstance)}
}

type inprocInstance struct {
	id     string
	cancel context.CancelFunc

	mu       sync.Mutex
	done     bool
	reason   ExitReason
	override *ExitReason
	watchers []chan ExitReason
}

// InstanceID implements Handle.
func (i *inprocInstance) InstanceID() string { return i.id }

// Spawn implements Supervisor.
func (s *Inproc) Spawn(ctx context.Context, sp spec.Spec) (Handle, error) {
	runner, ok := sp.Start.Target.(Runner)
	if !ok {
		logging.Debug("Supervisor", "Declining spec %s: target is not a Runner", sp.ID)
		return nil, nil
	}

	runCtx, cancel := context.WithCancel(context.Background())
	inst := &inprocInstance{
		id:     uuid.NewString(),
		cancel: cancel,
	}

	s.mu.Lock()
	s.instances[inst.id] = inst
	s.mu.Unlock()

	go func() {
		err := runner.Run(runCtx, sp.Start.Args)
		reason := ExitNormal
		if err != nil && runCtx.Err() == nil {
			reason = ExitReason(err.Error())
		}
		inst.finish(reason)
		s.mu.Lock()
		delete(s.instances, inst.id)
		s.mu.Unlock()
	}()

	logging.Debug("Supervisor", "Spawned in-process worker for %s (%s)", sp.ID, inst.id)
	return inst, nil
}

// finish records the exit exactly once and flushes all watchers.
func (i *inprocInstance) finish(reason ExitReason) {
	i.mu.Lock()
	if i.done {
		i.mu.Unlock()
		return
	}
	if i.override != nil {
		reason = *i.override
	}
	i.done = true
	i.reason = reason
	watchers := i.watchers
	i.watchers = nil
	i.mu.Unlock()

	for _, w := range watchers {
		w <- reason
	}
}

// Terminate implements Supervisor. The requested reason wins over whatever
// the runner returns while winding down.
func (s *Inproc) Terminate(ctx context.Context, h Handle, reason ExitReason) error {
	inst, ok := h.(*inprocInstance)
	if !ok {
		return api.NewServiceNotFoundError(h.InstanceID())
	}

	inst.mu.Lock()
	if inst.done {
		inst.mu.Unlock()
		return api.NewServiceNotFoundError(inst.id)
	}
	r := reason
	inst.override = &r
	inst.mu.Unlock()

	inst.cancel()
	return nil
}

// Watch implements Supervisor. An already-terminated instance delivers its
// reason immediately.
func (s *Inproc) Watch(h Handle) (Token, <-chan ExitReason) {
	token := Token(uuid.NewString())
	ch := make(chan ExitReason, 1)

	inst, ok := h.(*inprocInstance)
	if !ok {
		ch <- ExitReason("unknown handle")
		return token, ch
	}

	inst.mu.Lock()
	if inst.done {
		ch <- inst.reason
	} else {
		inst.watchers = append(inst.watchers, ch)
	}
	inst.mu.Unlock()
	return token, ch
}

// Probe implements Prober.
func (s *Inproc) Probe(h Handle) Liveness {
	inst, ok := h.(*inprocInstance)
	if !ok {
		return LivenessGone
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	if inst.done {
		return LivenessGone
	}
	if inst.override != nil {
		return LivenessWindingDown
	}
	return LivenessAlive
}
