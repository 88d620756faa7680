// internal/workers/idea/create-idea-record/config.go
package createidearecord

import "time"

type Config struct {
	Timeout time.Duration
	// IndexTimeout bounds the best-effort search indexing after the insert.
	IndexTimeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      10 * time.Second,
		IndexTimeout: 3 * time.Second,
	}
}
