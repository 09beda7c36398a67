// internal/workers/search/relax-vehicle-filters/config.go
package relaxvehiclefilters

import "time"

type Config struct {
	Timeout time.Duration
	// MaxRounds stops the BPMN loop: at or past it the worker reports
	// exhausted without relaxing further.
	MaxRounds int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:   5 * time.Second,
		MaxRounds: 3,
	}
}
