// internal/workers/idea/query-ideas/config.go
package queryideas

import "time"

type Config struct {
	Timeout       time.Duration
	SearchTimeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       10 * time.Second,
		SearchTimeout: 5 * time.Second,
	}
}
