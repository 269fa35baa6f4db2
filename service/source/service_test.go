package source

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thirukguru/receipt-parser/service/receiptparser/receipttest"
)

type mockS3Client struct {
	objects map[string][]byte
	inputs  []*s3.GetObjectInput
}

func (m *mockS3Client) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.inputs = append(m.inputs, params)
	data, ok := m.objects[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestLoadFile(t *testing.T) {
	raw := receipttest.Sample().Marshal()
	dir := t.TempDir()

	rawPath := filepath.Join(dir, "receipt.der")
	require.NoError(t, os.WriteFile(rawPath, raw, 0644))
	b64Path := filepath.Join(dir, "receipt.b64")
	require.NoError(t, os.WriteFile(b64Path, []byte(base64.StdEncoding.EncodeToString(raw)+"\n"), 0644))

	svc := NewService(strings.NewReader(""), nil)

	got, err := svc.Load(context.Background(), rawPath)
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	got, err = svc.Load(context.Background(), b64Path)
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	_, err = svc.Load(context.Background(), filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadStdin(t *testing.T) {
	raw := receipttest.Sample().Marshal()
	svc := NewService(bytes.NewReader(raw), nil)

	got, err := svc.Load(context.Background(), StdinRef)
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestLoadS3(t *testing.T) {
	raw := receipttest.Sample().Marshal()
	client := &mockS3Client{objects: map[string][]byte{"receipts/app/1.der": raw}}
	factoryCalls := 0
	svc := NewService(nil, func(context.Context) (S3ClientAPI, error) {
		factoryCalls++
		return client, nil
	})

	got, err := svc.Load(context.Background(), "s3://receipts/app/1.der")
	require.NoError(t, err)
	assert.Equal(t, raw, got)
	assert.Equal(t, "receipts", aws.ToString(client.inputs[0].Bucket))
	assert.Equal(t, "app/1.der", aws.ToString(client.inputs[0].Key))

	_, err = svc.Load(context.Background(), "s3://receipts/missing")
	assert.Error(t, err)
	assert.Equal(t, 1, factoryCalls, "client is created once")
}

func TestPrepareCreatesClientOnlyForS3Refs(t *testing.T) {
	factoryCalls := 0
	svc := NewService(nil, func(context.Context) (S3ClientAPI, error) {
		factoryCalls++
		return &mockS3Client{}, nil
	})

	require.NoError(t, svc.Prepare(context.Background(), []string{"a.der", StdinRef}))
	assert.Equal(t, 0, factoryCalls)

	require.NoError(t, svc.Prepare(context.Background(), []string{"a.der", "s3://bucket/key", "s3://bucket/other"}))
	assert.Equal(t, 1, factoryCalls)

	_, _ = svc.Load(context.Background(), "s3://bucket/key")
	assert.Equal(t, 1, factoryCalls, "Load reuses the prepared client")
}

func TestPrepareReportsClientError(t *testing.T) {
	svc := NewService(nil, func(context.Context) (S3ClientAPI, error) {
		return nil, errors.New("mfa failed")
	})
	err := svc.Prepare(context.Background(), []string{"s3://bucket/key"})
	assert.ErrorContains(t, err, "mfa failed")
}

func TestLoadS3WithoutClient(t *testing.T) {
	svc := NewService(nil, nil)
	_, err := svc.Load(context.Background(), "s3://bucket/key")
	assert.Error(t, err)
}

func TestLoadTooLarge(t *testing.T) {
	svc := NewService(io.LimitReader(zeroReader{}, maxReceiptSize+10), nil)
	_, err := svc.Load(context.Background(), StdinRef)
	assert.ErrorIs(t, err, ErrTooLarge)
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

func TestParseS3Ref(t *testing.T) {
	tests := []struct {
		ref     string
		bucket  string
		key     string
		wantErr bool
	}{
		{ref: "s3://bucket/key.der", bucket: "bucket", key: "key.der"},
		{ref: "s3://bucket/a/b/c", bucket: "bucket", key: "a/b/c"},
		{ref: "s3://bucket", wantErr: true},
		{ref: "s3://bucket/", wantErr: true},
		{ref: "s3:///key", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			bucket, key, err := ParseS3Ref(tt.ref)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.key, key)
		})
	}
}
