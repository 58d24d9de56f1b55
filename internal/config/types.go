package config

import "time"

// Config is the top-level configuration structure for conductor.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel,omitempty"`

	Coordinator CoordinatorConfig `yaml:"coordinator,omitempty"`

	// Services declares the workers the coordinator may start and the
	// needs edges between them.
	Services []ServiceConfig `yaml:"services"`
}

// CoordinatorConfig carries the failure-propagation options.
type CoordinatorConfig struct {
	// StopDependents cascades terminations to running dependents.
	StopDependents bool `yaml:"stopDependents,omitempty"`

	// RestartDependents restarts a service after an exit its restart
	// policy covers: abnormal exits for transient, any exit for permanent.
	RestartDependents bool `yaml:"restartDependents,omitempty"`

	// GracePeriod is how long a stopping process gets between SIGTERM
	// and SIGKILL.
	GracePeriod time.Duration `yaml:"gracePeriod,omitempty"`
}

// ServiceConfig declares one worker service.
type ServiceConfig struct {
	// ID is the unique service identifier referenced by needs edges.
	ID string `yaml:"id"`

	// Command is the executable to run for this service.
	Command string `yaml:"command"`

	// Args are passed to the command verbatim.
	Args []string `yaml:"args,omitempty"`

	// Needs lists the ids of services that must be running first.
	Needs []string `yaml:"needs,omitempty"`

	// Restart is one of transient (default), temporary, permanent.
	Restart string `yaml:"restart,omitempty"`

	// AutoStart starts this service when conductor serves.
	AutoStart bool `yaml:"autoStart,omitempty"`
}
