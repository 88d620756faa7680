// internal/workers/notification/send-notification/config.go
package sendnotification

import (
	"strings"
	"time"

	"ideaforge-workers/internal/common/config"
)

type Config struct {
	Timeout              time.Duration
	EmailEnabled         bool
	SMSEnabled           bool
	FromEmail            string
	SMSSenderID          string
	SMSPriorityThreshold string
	AppURL               string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:              15 * time.Second,
		FromEmail:            "noreply@ideaforge.app",
		SMSPriorityThreshold: PriorityHigh,
		AppURL:               "https://ideaforge.app",
	}
}

// NewConfig enables the channels configured under integrations.aws and
// applies the notifications delivery policy.
func NewConfig(aws config.AWSConfig, policy config.NotificationConfig) *Config {
	cfg := LoadConfig()
	cfg.EmailEnabled = aws.SES.Enabled
	cfg.SMSEnabled = aws.SNS.Enabled
	if aws.SES.FromEmail != "" {
		cfg.FromEmail = aws.SES.FromEmail
	}
	cfg.SMSSenderID = aws.SNS.DefaultSMSSenderID
	if policy.SMSPriorityThreshold != "" {
		cfg.SMSPriorityThreshold = normalizePriority(policy.SMSPriorityThreshold)
	}
	if policy.AppURL != "" {
		cfg.AppURL = strings.TrimRight(policy.AppURL, "/")
	}
	return cfg
}
