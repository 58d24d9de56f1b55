package app

import (
	"fmt"

	"conductor/internal/config"
	"conductor/internal/spec"
)

// Catalog holds the worker targets declared in the configuration, keyed
// by service id. It is the bridge between config entries and specs.
type Catalog struct {
	targets  map[string]*workerTarget
	restarts map[string]spec.RestartPolicy
	order    []string
}

// workerTarget adapts one config entry to the target contract: it names
// the service, resolves its needs through the catalog, and describes the
// process to run.
type workerTarget struct {
	id      string
	command string
	args    []string
	needs   []string
	catalog *Catalog
}

// ServiceName implements spec.Target.
func (t *workerTarget) ServiceName() string { return t.id }

// Command implements supervisor.Commander.
func (t *workerTarget) Command() (string, []string) { return t.command, t.args }

// Needs implements spec.NeedsProvider by resolving need ids against the
// catalog.
func (t *workerTarget) Needs() []interface{} {
	needs := make([]interface{}, 0, len(t.needs))
	for _, id := range t.needs {
		if target, ok := t.catalog.targets[id]; ok {
			needs = append(needs, t.catalog.specFor(target))
		}
	}
	return needs
}

// NewCatalog builds a catalog from a validated configuration.
func NewCatalog(cfg config.Config) *Catalog {
	c := &Catalog{targets: make(map[string]*workerTarget, len(cfg.Services))}
	restarts := make(map[string]spec.RestartPolicy, len(cfg.Services))
	for _, svc := range cfg.Services {
		c.targets[svc.ID] = &workerTarget{
			id:      svc.ID,
			command: svc.Command,
			args:    svc.Args,
			needs:   svc.Needs,
			catalog: c,
		}
		restarts[svc.ID] = spec.RestartPolicy(svc.Restart)
		c.order = append(c.order, svc.ID)
	}
	c.restarts = restarts
	return c
}

// Spec returns the normalized spec for a declared service id.
func (c *Catalog) Spec(id string) (spec.Spec, error) {
	target, ok := c.targets[id]
	if !ok {
		return spec.Spec{}, fmt.Errorf("unknown service %s", id)
	}
	return spec.Normalize(c.specFor(target))
}

// IDs returns the declared service ids in configuration order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.order))
	copy(ids, c.order)
	return ids
}

func (c *Catalog) specFor(t *workerTarget) spec.Spec {
	return spec.Spec{
		ID:      t.id,
		Start:   spec.Start{Target: t},
		Restart: c.restarts[t.id],
	}
}
