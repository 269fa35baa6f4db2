package source

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awsconfig "github.com/thirukguru/receipt-parser/service/aws_config"
	"github.com/thirukguru/receipt-parser/service/config"
)

// NewS3ClientFactory loads AWS configuration through awsCfg and builds an S3 client.
// A configured endpoint switches to path-style addressing for S3-compatible stores.
func NewS3ClientFactory(awsCfg awsconfig.Service, cfg config.AWSConfig) S3ClientFactory {
	return func(ctx context.Context) (S3ClientAPI, error) {
		loaded, err := awsCfg.GetAWSCfg(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s3.NewFromConfig(loaded, func(o *s3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
				o.UsePathStyle = true
			}
		}), nil
	}
}
