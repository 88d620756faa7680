// internal/workers/idea/find-similar-ideas/config.go
package findsimilarideas

import "time"

type Config struct {
	Timeout time.Duration
	// SearchTimeout bounds the index query before falling back to the repository.
	SearchTimeout time.Duration
	PoolSize      int
	MaxResults    int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       15 * time.Second,
		SearchTimeout: 5 * time.Second,
		PoolSize:      200,
		MaxResults:    6,
	}
}
