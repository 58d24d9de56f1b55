package config

import "fmt"

var validRestartPolicies = map[string]bool{
	"transient": true,
	"temporary": true,
	"permanent": true,
}

// Validate checks a config for structural problems: duplicate or empty
// ids, dangling needs edges, unknown restart policies, missing commands.
// Cycle detection is left to the resolver, which reports the offending
// path.
func Validate(cfg Config) error {
	seen := make(map[string]bool, len(cfg.Services))
	for _, svc := range cfg.Services {
		if svc.ID == "" {
			return fmt.Errorf("service with empty id")
		}
		if seen[svc.ID] {
			return fmt.Errorf("duplicate service id %s", svc.ID)
		}
		seen[svc.ID] = true
		if svc.Command == "" {
			return fmt.Errorf("service %s has no command", svc.ID)
		}
		if !validRestartPolicies[svc.Restart] {
			return fmt.Errorf("service %s has unknown restart policy %s", svc.ID, svc.Restart)
		}
	}
	for _, svc := range cfg.Services {
		for _, need := range svc.Needs {
			if !seen[need] {
				return fmt.Errorf("service %s needs unknown service %s", svc.ID, need)
			}
		}
	}
	return nil
}
