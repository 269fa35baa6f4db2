// Package awsconfig loads AWS SDK configuration for S3 receipt sources.
package awsconfig

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	appconfig "github.com/thirukguru/receipt-parser/service/config"
)

const defaultSTSRegion = "us-east-1"

// NewService creates a new AWS configuration service.
func NewService() Service {
	return NewServiceWithOptions(Options{})
}

// NewServiceWithOptions is NewService with replaceable SDK loaders.
func NewServiceWithOptions(opts Options) Service {
	if opts.LoadDefault == nil {
		opts.LoadDefault = config.LoadDefaultConfig
	}
	if opts.LoadProfile == nil {
		opts.LoadProfile = config.LoadSharedConfigProfile
	}
	return &service{opts: opts}
}

func (s *service) GetAWSCfg(ctx context.Context, cfg appconfig.AWSConfig) (aws.Config, error) {
	// Static keys win over profiles; they are how S3-compatible stores are reached.
	if cfg.AccessKeyID != "" {
		return s.loadStatic(ctx, cfg)
	}

	// Profiles that assume a role with MFA need the token provider set on the
	// source credentials, which LoadDefaultConfig does not do on its own.
	if cfg.Profile != "" {
		shared, err := s.opts.LoadProfile(ctx, cfg.Profile)
		if err == nil && shared.RoleARN != "" && shared.MFASerial != "" {
			return s.loadWithMFA(ctx, cfg, shared)
		}
	}

	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(cfg.Profile))
	}
	opts = append(opts, config.WithAssumeRoleCredentialOptions(func(o *stscreds.AssumeRoleOptions) {
		o.TokenProvider = stscreds.StdinTokenProvider
	}))

	awsCfg, err := s.opts.LoadDefault(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("unable to load AWS config: %w", err)
	}
	return awsCfg, nil
}

func (s *service) loadStatic(ctx context.Context, cfg appconfig.AWSConfig) (aws.Config, error) {
	region := cfg.Region
	if region == "" {
		region = defaultSTSRegion
	}

	provider := credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	awsCfg, err := s.opts.LoadDefault(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(provider),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("unable to load AWS config with static credentials: %w", err)
	}
	return awsCfg, nil
}

func (s *service) loadWithMFA(ctx context.Context, cfg appconfig.AWSConfig, shared config.SharedConfig) (aws.Config, error) {
	sourceProfile := shared.SourceProfileName
	if sourceProfile == "" {
		sourceProfile = "default"
	}

	stsRegion := cfg.Region
	if stsRegion == "" {
		stsRegion = shared.Region
	}
	if stsRegion == "" {
		stsRegion = defaultSTSRegion
	}

	baseCfg, err := s.opts.LoadDefault(ctx,
		config.WithSharedConfigProfile(sourceProfile),
		config.WithRegion(stsRegion),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load source profile config: %w", err)
	}

	provider := stscreds.NewAssumeRoleProvider(sts.NewFromConfig(baseCfg), shared.RoleARN, func(o *stscreds.AssumeRoleOptions) {
		o.SerialNumber = aws.String(shared.MFASerial)
		o.TokenProvider = stscreds.StdinTokenProvider
	})

	opts := []func(*config.LoadOptions) error{
		config.WithCredentialsProvider(aws.NewCredentialsCache(provider)),
	}
	switch {
	case cfg.Region != "":
		opts = append(opts, config.WithRegion(cfg.Region))
	case shared.Region != "":
		opts = append(opts, config.WithRegion(shared.Region))
	}

	finalCfg, err := s.opts.LoadDefault(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load config with mfa: %w", err)
	}

	// Prompt for the MFA code now, before any spinner takes over the terminal.
	if _, err := finalCfg.Credentials.Retrieve(ctx); err != nil {
		return aws.Config{}, fmt.Errorf("failed to retrieve credentials (MFA might have failed): %w", err)
	}
	return finalCfg, nil
}
