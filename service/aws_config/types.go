package awsconfig

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	appconfig "github.com/thirukguru/receipt-parser/service/config"
)

// Options is the subset of loading behaviour the service needs from the SDK.
type Options struct {
	// LoadDefault is config.LoadDefaultConfig unless replaced in tests.
	LoadDefault func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error)
	// LoadProfile is config.LoadSharedConfigProfile unless replaced in tests.
	LoadProfile func(ctx context.Context, profile string, optFns ...func(*config.LoadSharedConfigOptions) error) (config.SharedConfig, error)
}

type service struct {
	opts Options
}

// Service loads the AWS configuration used to fetch s3:// receipts.
type Service interface {
	GetAWSCfg(ctx context.Context, cfg appconfig.AWSConfig) (aws.Config, error)
}
