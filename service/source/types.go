package source

import (
	"context"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3ClientAPI is the part of the S3 client used to fetch receipts.
type S3ClientAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3ClientFactory builds an S3 client on first use, so AWS config is only loaded for s3:// refs.
type S3ClientFactory func(ctx context.Context) (S3ClientAPI, error)

type service struct {
	stdin     io.Reader
	newClient S3ClientFactory

	mu     sync.Mutex
	client S3ClientAPI
}

// Service loads raw receipt bytes from a reference.
type Service interface {
	Load(ctx context.Context, ref string) ([]byte, error)
	Prepare(ctx context.Context, refs []string) error
}
