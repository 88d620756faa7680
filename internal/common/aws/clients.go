package aws

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"ideaforge-workers/internal/common/config"
)

// Clients holds the SES and SNS clients used by send-notification. A channel
// that is disabled in configuration is left nil.
type Clients struct {
	SES *ses.Client
	SNS *sns.Client
}

// NewClients loads the default credential chain for cfg.Region and builds a
// client for each enabled channel.
func NewClients(ctx context.Context, cfg config.AWSConfig) (*Clients, error) {
	clients := &Clients{}
	if !cfg.SES.Enabled && !cfg.SNS.Enabled {
		return clients, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	if cfg.SES.Enabled {
		clients.SES = ses.NewFromConfig(awsCfg)
	}
	if cfg.SNS.Enabled {
		clients.SNS = sns.NewFromConfig(awsCfg)
	}
	return clients, nil
}
