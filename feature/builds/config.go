package builds

import "time"

// Config configures the build workers and their watchdog.
type Config struct {
	// Workers is the number of worker loops started with the server.
	Workers int `mapstructure:"workers" default:"2"`
	// IdleInterval is how long a worker sleeps when the queue is empty.
	IdleInterval time.Duration `mapstructure:"idle_interval" default:"5s"`
	// WatchdogInterval is the period between stale-lease sweeps.
	WatchdogInterval time.Duration `mapstructure:"watchdog_interval" default:"1m"`
	// LeaseTimeout returns a claimed build to the queue once exceeded.
	LeaseTimeout time.Duration `mapstructure:"lease_timeout" default:"10m"`
}
