// internal/workers/search/parse-vehicle-query/config.go
package parsevehiclequery

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}
