// internal/workers/idea/evaluate-idea/config.go
package evaluateidea

import "time"

type Config struct {
	Timeout time.Duration
	// ScorerTimeout bounds one external scorer call, retries included.
	ScorerTimeout time.Duration
	CacheTTL      time.Duration
	// RequireScorer fails the job instead of falling back to the heuristic
	// result when the configured scorer errors.
	RequireScorer bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       45 * time.Second,
		ScorerTimeout: 30 * time.Second,
		CacheTTL:      time.Hour,
		RequireScorer: false,
	}
}
