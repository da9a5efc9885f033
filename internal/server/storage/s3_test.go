package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCfg = S3Config{
	User:         "minioadmin",
	Password:     "minioadmin",
	Bucket:       "orders",
	Region:       "us-east-1",
	BaseEndpoint: "http://127.0.0.1:9000",
}

// stubAWS replaces the client constructors and checks the options passed.
func stubAWS(t *testing.T) {
	t.Helper()

	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	origNewPre := newS3PresignClient
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		return aws.Config{}, nil
	}

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var opts s3.Options
		for _, fn := range optFns {
			fn(&opts)
		}
		require.NotNil(t, opts.BaseEndpoint)
		assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
		assert.True(t, opts.UsePathStyle)
		return &s3.Client{}
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return &s3.PresignClient{}
	}
}

func stubPresignPut(t *testing.T, fn func(in *s3.PutObjectInput) (*v4.PresignedHTTPRequest, error)) {
	t.Helper()
	orig := presignPutObject
	t.Cleanup(func() { presignPutObject = orig })
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return fn(in)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestPut_UploadsThroughPresignedURL(t *testing.T) {
	stubAWS(t)

	var gotBody, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	stubPresignPut(t, func(in *s3.PutObjectInput) (*v4.PresignedHTTPRequest, error) {
		assert.Equal(t, "orders", aws.ToString(in.Bucket))
		assert.Equal(t, "order-march-2026-ab12cd34.xlsx", aws.ToString(in.Key))
		assert.Equal(t, xlsxContentType, aws.ToString(in.ContentType))
		return &v4.PresignedHTTPRequest{URL: srv.URL + "/orders/key"}, nil
	})

	path := writeFile(t, "order-march-2026-ab12cd34.xlsx", "sheet-bytes")
	a := NewS3Archive(testCfg, srv.Client())

	require.NoError(t, a.Put(context.Background(), "order-march-2026-ab12cd34.xlsx", path))
	assert.Equal(t, "sheet-bytes", gotBody)
	assert.Equal(t, xlsxContentType, gotType)
}

func TestPut_PresignError(t *testing.T) {
	stubAWS(t)
	stubPresignPut(t, func(in *s3.PutObjectInput) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("no creds")
	})

	path := writeFile(t, "a.xlsx", "x")
	err := NewS3Archive(testCfg, nil).Put(context.Background(), "a.xlsx", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "presign put: no creds")
}

func TestPut_MissingFile(t *testing.T) {
	err := NewS3Archive(testCfg, nil).Put(context.Background(), "k", filepath.Join(t.TempDir(), "missing.xlsx"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestPut_LoadConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("bad profile")
	}

	path := writeFile(t, "a.xlsx", "x")
	err := NewS3Archive(testCfg, nil).Put(context.Background(), "a.xlsx", path)
	require.EqualError(t, err, "bad profile")
}

func TestPresignGet(t *testing.T) {
	stubAWS(t)

	orig := presignGetObject
	t.Cleanup(func() { presignGetObject = orig })
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		assert.Equal(t, "orders", aws.ToString(in.Bucket))
		assert.Equal(t, "k.xlsx", aws.ToString(in.Key))
		return &v4.PresignedHTTPRequest{URL: "http://127.0.0.1:9000/orders/k.xlsx?X-Amz-Signature=abc"}, nil
	}

	url, err := NewS3Archive(testCfg, nil).PresignGet(context.Background(), "k.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000/orders/k.xlsx?X-Amz-Signature=abc", url)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, xlsxContentType, ContentType("/tmp/a.xlsx"))
	assert.Equal(t, "application/octet-stream", ContentType("/tmp/blob"))
}
