package supervisor

import (
	"context"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"conductor/internal/api"
	"conductor/internal/spec"
	"conductor/pkg/logging"
)

// Commander is implemented by targets that run as operating-system
// processes.
type Commander interface {
	Command() (name string, args []string)
}

// DefaultGracePeriod is how long Exec waits between SIGTERM and SIGKILL.
const DefaultGracePeriod = 10 * time.Second

// Exec supervises workers as child processes. Termination is graceful:
// SIGTERM first, SIGKILL once the grace period expires.
type Exec struct {
	// GracePeriod overrides DefaultGracePeriod when positive.
	GracePeriod time.Duration

	mu        sync.Mutex
	instances map[string]*execInstance
}

// NewExec returns an empty process supervisor.
func NewExec() *Exec {
	return &Exec{instances: make(map[string]*execInstance)}
}

type execInstance struct {
	id  string
	cmd *exec.Cmd

	mu       sync.Mutex
	done     bool
	reason   ExitReason
	override *ExitReason
	watchers []chan ExitReason
}

// InstanceID implements Handle.
func (i *execInstance) InstanceID() string { return i.id }

// Spawn implements Supervisor. Targets that are not Commanders are
// declined without error.
func (s *Exec) Spawn(ctx context.Context, sp spec.Spec) (Handle, error) {
	commander, ok := sp.Start.Target.(Commander)
	if !ok {
		logging.Debug("Supervisor", "Declining spec %s: target is not a Commander", sp.ID)
		return nil, nil
	}

	name, args := commander.Command()
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	inst := &execInstance{
		id:  uuid.NewString(),
		cmd: cmd,
	}

	s.mu.Lock()
	if s.instances == nil {
		s.instances = make(map[string]*execInstance)
	}
	s.instances[inst.id] = inst
	s.mu.Unlock()

	go func() {
		err := cmd.Wait()
		reason := ExitNormal
		if err != nil {
			reason = ExitReason(err.Error())
		}
		inst.finish(reason)
		s.mu.Lock()
		delete(s.instances, inst.id)
		s.mu.Unlock()
	}()

	logging.Info("Supervisor", "Spawned process for %s (pid %d)", sp.ID, cmd.Process.Pid)
	return inst, nil
}

func (i *execInstance) finish(reason ExitReason) {
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

// Terminate implements Supervisor.
func (s *Exec) Terminate(ctx context.Context, h Handle, reason ExitReason) error {
	inst, ok := h.(*execInstance)
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

	if err := inst.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		return api.NewServiceNotFoundError(inst.id)
	}

	grace := s.GracePeriod
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	go func() {
		timer := time.NewTimer(grace)
		defer timer.Stop()
		select {
		case <-timer.C:
			inst.mu.Lock()
			alive := !inst.done
			inst.mu.Unlock()
			if alive {
				logging.Warn("Supervisor", "Process %s ignored SIGTERM, killing", inst.id)
				_ = inst.cmd.Process.Kill()
			}
		case <-ctx.Done():
		}
	}()
	return nil
}

// Watch implements Supervisor.
func (s *Exec) Watch(h Handle) (Token, <-chan ExitReason) {
	token := Token(uuid.NewString())
	ch := make(chan ExitReason, 1)

	inst, ok := h.(*execInstance)
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
func (s *Exec) Probe(h Handle) Liveness {
	inst, ok := h.(*execInstance)
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
