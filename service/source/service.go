// Package source reads receipts from files, stdin or S3.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/thirukguru/receipt-parser/service/receiptparser"
)

const (
	// StdinRef reads the receipt from standard input.
	StdinRef = "-"
	s3Scheme = "s3://"

	// receipts are a few KB; anything this large is not a receipt
	maxReceiptSize = 16 << 20
)

// ErrTooLarge is returned for inputs over the receipt size limit.
var ErrTooLarge = errors.New("receipt exceeds size limit")

// NewService creates a receipt source. newClient may be nil when S3 is not configured.
func NewService(stdin io.Reader, newClient S3ClientFactory) Service {
	if stdin == nil {
		stdin = os.Stdin
	}
	return &service{stdin: stdin, newClient: newClient}
}

// Load returns the raw receipt behind ref, decoding base64 text when needed.
func (s *service) Load(ctx context.Context, ref string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch {
	case ref == StdinRef:
		data, err = readLimited(s.stdin)
	case strings.HasPrefix(ref, s3Scheme):
		data, err = s.loadS3(ctx, ref)
	default:
		data, err = s.loadFile(ref)
	}
	if err != nil {
		return nil, err
	}

	data, _ = receiptparser.DecodeReceiptData(data)
	return data, nil
}

// Prepare creates the S3 client up front when any ref needs it, so credential prompts
// (MFA codes) happen before output starts.
func (s *service) Prepare(ctx context.Context, refs []string) error {
	for _, ref := range refs {
		if strings.HasPrefix(ref, s3Scheme) {
			_, err := s.s3Client(ctx)
			return err
		}
	}
	return nil
}

func (s *service) loadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open receipt: %w", err)
	}
	defer f.Close()

	return readLimited(f)
}

func (s *service) loadS3(ctx context.Context, ref string) ([]byte, error) {
	bucket, key, err := ParseS3Ref(ref)
	if err != nil {
		return nil, err
	}

	client, err := s.s3Client(ctx)
	if err != nil {
		return nil, err
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get s3 object %s: %w", ref, err)
	}
	defer out.Body.Close()

	return readLimited(out.Body)
}

func (s *service) s3Client(ctx context.Context) (S3ClientAPI, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}
	if s.newClient == nil {
		return nil, errors.New("s3 receipts require AWS configuration")
	}
	client, err := s.newClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}
	s.client = client
	return client, nil
}

// ParseS3Ref splits s3://bucket/key.
func ParseS3Ref(ref string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(ref, s3Scheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 reference %q, want s3://bucket/key", ref)
	}
	return bucket, key, nil
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxReceiptSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read receipt: %w", err)
	}
	if len(data) > maxReceiptSize {
		return nil, ErrTooLarge
	}
	return data, nil
}
