// Package storage archives generated files in an S3 compatible bucket and
// hands out presigned download links for them.
package storage

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/storekeeper/internal/netx"
)

const presignExpires = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

type Archive interface {
	// Put uploads the file at path under key.
	Put(ctx context.Context, key, path string) error
	// PresignGet returns a temporary download URL for key.
	PresignGet(ctx context.Context, key string) (string, error)
}

type S3Config struct {
	User         string
	Password     string
	Bucket       string
	Region       string
	BaseEndpoint string
}

// S3Archive talks to the bucket only through presigned requests, uploads
// included.
type S3Archive struct {
	cfg    S3Config
	client netx.HTTPClient
}

func NewS3Archive(cfg S3Config, client netx.HTTPClient) *S3Archive {
	return &S3Archive{cfg: cfg, client: client}
}

func (a *S3Archive) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(a.cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			a.cfg.User,
			a.cfg.Password,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if a.cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(a.cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return newS3PresignClient(client), nil
}

func (a *S3Archive) Put(ctx context.Context, key, path string) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	presignClient, err := a.getPresignClient(ctx)
	if err != nil {
		return err
	}

	contentType := ContentType(path)
	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignExpires))
	if err != nil {
		return fmt.Errorf("presign put: %w", err)
	}

	return netx.UploadToPresignedURL(ctx, a.client, req.URL, contentType, body)
}

func (a *S3Archive) PresignGet(ctx context.Context, key string) (string, error) {
	presignClient, err := a.getPresignClient(ctx)
	if err != nil {
		return "", err
	}

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignExpires))
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}

	return req.URL, nil
}
