package coordinator

import (
	"context"

	"conductor/internal/api"
	"conductor/internal/dependency"
	"conductor/internal/registry"
	"conductor/internal/spec"
	"conductor/internal/supervisor"
	"conductor/pkg/logging"
)

// Status is the externally visible lifecycle state of one spec.
type Status string

const (
	StatusStopped Status = "stopped"
	StatusRunning Status = "running"
	StatusExiting Status = "exiting"
)

// Event is published to subscribers whenever a spec changes state.
type Event struct {
	ID       string
	Key      string
	OldState Status
	NewState Status
	Reason   supervisor.ExitReason
}

// Options configures a Coordinator.
type Options struct {
	// Supervisor delegates spawns and terminations. Required.
	Supervisor supervisor.Supervisor

	// StopDependents cascades a termination to all currently-running
	// transitive dependents of the terminated spec.
	StopDependents bool

	// RestartDependents restarts a spec after a termination its restart
	// policy covers (for the default transient policy, an abnormal one),
	// which re-establishes any of its needs that were cascade-stopped.
	RestartDependents bool

	// Name is an optional logical name used in log output when several
	// coordinators run side by side.
	Name string
}

const inboxSize = 64

// Coordinator starts, stops and tracks service instances subject to their
// declared needs. All state lives on a single goroutine that drains a
// request channel and a termination-event channel; public methods submit a
// request and wait for its reply.
type Coordinator struct {
	opts Options
	reg  *registry.Registry

	requests chan *request
	exits    chan exitEvent
	quit     chan struct{}
	stopped  chan struct{}

	subscribers []chan<- Event
}

type reqKind int

const (
	reqStart reqKind = iota
	reqStop
	reqCanStop
	reqLookup
	reqStatus
	reqSpecs
	reqSubscribe
)

type request struct {
	ctx   context.Context
	kind  reqKind
	input interface{}
	sub   chan<- Event
	reply chan response
}

type response struct {
	handle supervisor.Handle
	status Status
	ok     bool
	specs  []spec.Spec
	err    error
}

type exitEvent struct {
	token  supervisor.Token
	reason supervisor.ExitReason
}

// New constructs a Coordinator and starts its event loop.
func New(opts Options) (*Coordinator, error) {
	if opts.Supervisor == nil {
		return nil, api.ErrNoSupervisor
	}
	if opts.Name == "" {
		opts.Name = "coordinator"
	}
	c := &Coordinator{
		opts:     opts,
		reg:      registry.New(),
		requests: make(chan *request, inboxSize),
		exits:    make(chan exitEvent, inboxSize),
		quit:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go c.loop()
	return c, nil
}

// Close shuts down the event loop. Running instances are left to the
// supervisor; callers wanting a clean stop should drain the registry
// first (see App.Shutdown in the app package).
func (c *Coordinator) Close() {
	select {
	case <-c.quit:
	default:
		close(c.quit)
	}
	<-c.stopped
}

// Start ensures every need of the referenced service is running, then the
// service itself, spawning in dependency order. It returns the handle of
// the last instance it actually spawned, or nil if everything was already
// running. A failed spawn halts the sequence; prerequisites that were
// started stay up.
func (c *Coordinator) Start(ctx context.Context, input interface{}) (supervisor.Handle, error) {
	resp := c.submit(ctx, reqStart, input)
	return resp.handle, resp.err
}

// Stop terminates the referenced service if nothing running still needs
// it. The registry entry is removed when the termination notification
// arrives, not here.
func (c *Coordinator) Stop(ctx context.Context, input interface{}) error {
	return c.submit(ctx, reqStop, input).err
}

// CanStop reports whether the service is running and no other running
// service lists it in its direct needs.
func (c *Coordinator) CanStop(ctx context.Context, input interface{}) (bool, error) {
	resp := c.submit(ctx, reqCanStop, input)
	return resp.ok, resp.err
}

// Lookup returns the instance handle for the referenced service. Absence
// is reported as a not found error.
func (c *Coordinator) Lookup(ctx context.Context, input interface{}) (supervisor.Handle, error) {
	resp := c.submit(ctx, reqLookup, input)
	return resp.handle, resp.err
}

// Status derives the lifecycle state of the referenced service from
// registry membership plus, when the supervisor supports it, a liveness
// probe on the handle.
func (c *Coordinator) Status(ctx context.Context, input interface{}) (Status, error) {
	resp := c.submit(ctx, reqStatus, input)
	return resp.status, resp.err
}

// Specs returns the specs of all currently running instances.
func (c *Coordinator) Specs(ctx context.Context) []spec.Spec {
	return c.submit(ctx, reqSpecs, nil).specs
}

// Subscribe returns a channel of lifecycle events. Slow subscribers lose
// events rather than blocking the loop.
func (c *Coordinator) Subscribe() <-chan Event {
	ch := make(chan Event, 100)
	req := &request{ctx: context.Background(), kind: reqSubscribe, sub: ch, reply: make(chan response, 1)}
	select {
	case c.requests <- req:
		select {
		case <-req.reply:
		case <-c.quit:
		}
	case <-c.quit:
	}
	return ch
}

func (c *Coordinator) submit(ctx context.Context, kind reqKind, input interface{}) response {
	req := &request{ctx: ctx, kind: kind, input: input, reply: make(chan response, 1)}
	select {
	case c.requests <- req:
	case <-c.quit:
		return response{err: api.NewServiceNotFoundError(c.opts.Name)}
	}
	select {
	case resp := <-req.reply:
		return resp
	case <-c.quit:
		return response{err: api.NewServiceNotFoundError(c.opts.Name)}
	}
}

// loop is the single logical task owning all coordinator state.
func (c *Coordinator) loop() {
	defer close(c.stopped)
	for {
		select {
		case req := <-c.requests:
			req.reply <- c.handleRequest(req)
		case ev := <-c.exits:
			c.handleExit(ev)
		case <-c.quit:
			return
		}
	}
}

func (c *Coordinator) handleRequest(req *request) response {
	if req.kind == reqSpecs {
		return response{specs: c.reg.Specs()}
	}
	if req.kind == reqSubscribe {
		if req.sub != nil {
			c.subscribers = append(c.subscribers, req.sub)
		}
		return response{ok: true}
	}

	s, err := spec.Normalize(req.input)
	if err != nil {
		return response{err: err}
	}

	switch req.kind {
	case reqStart:
		h, err := c.start(req.ctx, s)
		return response{handle: h, err: err}
	case reqStop:
		return response{err: c.stop(req.ctx, s)}
	case reqCanStop:
		ok, err := c.canStop(s)
		return response{ok: ok, err: err}
	case reqLookup:
		h, ok := c.reg.HandleOf(s)
		if !ok {
			return response{err: api.NewServiceNotFoundError(s.ID)}
		}
		return response{handle: h}
	case reqStatus:
		return response{status: c.status(s)}
	}
	return response{}
}

func (c *Coordinator) start(ctx context.Context, s spec.Spec) (supervisor.Handle, error) {
	order, err := dependency.Dependencies(s)
	if err != nil {
		return nil, err
	}

	var last supervisor.Handle
	for _, d := range order {
		if c.reg.Contains(d) {
			continue
		}
		h, err := c.opts.Supervisor.Spawn(ctx, d)
		if err != nil {
			logging.Error(c.opts.Name, err, "Spawn of %s failed, halting start of %s", d.ID, s.ID)
			return nil, err
		}
		if h == nil {
			// Supervisor declined without error.
			continue
		}
		token, exitCh := c.opts.Supervisor.Watch(h)
		c.reg.Insert(d, h, token)
		go c.forward(token, exitCh)
		c.publish(Event{ID: d.ID, Key: d.Key(), OldState: StatusStopped, NewState: StatusRunning})
		logging.Info(c.opts.Name, "Started %s", d.ID)
		last = h
	}
	return last, nil
}

// forward pumps the one-shot watch notification into the event inbox.
func (c *Coordinator) forward(token supervisor.Token, exitCh <-chan supervisor.ExitReason) {
	select {
	case reason := <-exitCh:
		select {
		case c.exits <- exitEvent{token: token, reason: reason}:
		case <-c.quit:
		}
	case <-c.quit:
	}
}

func (c *Coordinator) stop(ctx context.Context, s spec.Spec) error {
	h, ok := c.reg.HandleOf(s)
	if !ok {
		return api.NewServiceNotFoundError(s.ID)
	}
	neededBy, err := dependency.DirectNeededBy(s, c.reg.Specs())
	if err != nil {
		return err
	}
	if len(neededBy) > 0 {
		ids := make([]string, len(neededBy))
		for i, n := range neededBy {
			ids[i] = n.ID
		}
		return api.NewNeededError(s.ID, ids)
	}
	return c.opts.Supervisor.Terminate(ctx, h, supervisor.ExitShutdown)
}

func (c *Coordinator) canStop(s spec.Spec) (bool, error) {
	if !c.reg.Contains(s) {
		return false, nil
	}
	neededBy, err := dependency.DirectNeededBy(s, c.reg.Specs())
	if err != nil {
		return false, err
	}
	return len(neededBy) == 0, nil
}

func (c *Coordinator) status(s spec.Spec) Status {
	h, ok := c.reg.HandleOf(s)
	if !ok {
		return StatusStopped
	}
	prober, ok := c.opts.Supervisor.(supervisor.Prober)
	if !ok {
		return StatusRunning
	}
	switch prober.Probe(h) {
	case supervisor.LivenessWindingDown:
		return StatusExiting
	case supervisor.LivenessGone:
		// The termination event has not been processed yet; it will
		// reconcile the registry shortly.
		return StatusStopped
	default:
		return StatusRunning
	}
}

// handleExit is the failure-propagation pipeline for one termination
// notification.
func (c *Coordinator) handleExit(ev exitEvent) {
	s, ok := c.reg.SpecOf(ev.token)
	if !ok {
		return
	}

	if c.opts.StopDependents {
		c.cascade(s, ev.reason)
	}

	c.reg.RemoveByToken(ev.token)
	c.publish(Event{ID: s.ID, Key: s.Key(), OldState: StatusRunning, NewState: StatusStopped, Reason: ev.reason})
	logging.Info(c.opts.Name, "Instance of %s terminated (%s)", s.ID, ev.reason)

	if c.opts.RestartDependents && c.shouldRestart(s, ev.reason) {
		logging.Info(c.opts.Name, "Restarting %s after abnormal exit", s.ID)
		if _, err := c.start(context.Background(), s); err != nil {
			logging.Error(c.opts.Name, err, "Restart of %s failed", s.ID)
		}
	}
}

// cascade terminates every running transitive dependent of s, deepest
// first, propagating the original exit reason as the cause.
func (c *Coordinator) cascade(s spec.Spec, reason supervisor.ExitReason) {
	dependents, err := dependency.Dependents(s, c.reg.Specs())
	if err != nil {
		// A graph accepted by start cannot normally turn cyclic; abort
		// the cascade for this spec only.
		logging.Error(c.opts.Name, err, "Dependent resolution failed for %s, skipping cascade", s.ID)
		return
	}
	for i := len(dependents) - 1; i >= 0; i-- {
		d := dependents[i]
		if d.Key() == s.Key() {
			continue
		}
		h, ok := c.reg.HandleOf(d)
		if !ok {
			continue
		}
		if err := c.opts.Supervisor.Terminate(context.Background(), h, reason); err != nil {
			// Already gone; its own termination event reconciles.
			logging.Debug(c.opts.Name, "Cascade terminate of %s: %v", d.ID, err)
		}
	}
}

// shouldRestart applies the per-spec restart policy to an exit reason.
func (c *Coordinator) shouldRestart(s spec.Spec, reason supervisor.ExitReason) bool {
	switch s.Restart {
	case spec.RestartPermanent:
		return true
	case spec.RestartTemporary:
		return false
	default:
		return reason.Abnormal()
	}
}

func (c *Coordinator) publish(ev Event) {
	for _, sub := range c.subscribers {
		select {
		case sub <- ev:
		default:
			logging.Debug(c.opts.Name, "Subscriber blocked, dropping event for %s", ev.ID)
		}
	}
}
