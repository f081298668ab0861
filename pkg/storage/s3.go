package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Provider represents the S3-compatible storage provider
type Provider string

const (
	ProviderAWS    Provider = "aws"
	ProviderWasabi Provider = "wasabi"
)

// Config holds configuration for S3-compatible avatar storage
type Config struct {
	Provider        Provider
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string

	// Wasabi-specific settings
	WasabiEndpoint string // e.g., "s3.ap-southeast-1.wasabisys.com"
}

// WasabiEndpoints maps regions to Wasabi endpoints
var WasabiEndpoints = map[string]string{
	"us-east-1":      "s3.us-east-1.wasabisys.com",
	"us-east-2":      "s3.us-east-2.wasabisys.com",
	"us-west-1":      "s3.us-west-1.wasabisys.com",
	"eu-central-1":   "s3.eu-central-1.wasabisys.com",
	"eu-west-1":      "s3.eu-west-1.wasabisys.com",
	"eu-west-2":      "s3.eu-west-2.wasabisys.com",
	"ap-northeast-1": "s3.ap-northeast-1.wasabisys.com",
	"ap-northeast-2": "s3.ap-northeast-2.wasabisys.com",
	"ap-southeast-1": "s3.ap-southeast-1.wasabisys.com",
	"ap-southeast-2": "s3.ap-southeast-2.wasabisys.com",
}

// Client wraps an S3-compatible client with the bucket it writes to
type Client struct {
	s3     *s3.Client
	bucket string
	cfg    Config
}

// NewClient creates a storage client with the given config.
// Supports both AWS S3 and Wasabi.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Client *s3.Client

	switch cfg.Provider {
	case ProviderWasabi:
		// Wasabi requires custom endpoint and path-style addressing
		endpoint := cfg.WasabiEndpoint
		if endpoint == "" {
			if ep, ok := WasabiEndpoints[cfg.Region]; ok {
				endpoint = ep
			} else {
				return nil, fmt.Errorf("unknown Wasabi region: %s", cfg.Region)
			}
		}
		s3Client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String("https://" + endpoint)
			o.UsePathStyle = true // Wasabi requires path-style
		})
	default:
		// AWS S3 - use default configuration
		s3Client = s3.NewFromConfig(awsCfg)
	}

	return &Client{s3: s3Client, bucket: cfg.Bucket, cfg: cfg}, nil
}

// PutObject uploads a blob and returns its public URL
func (c *Client) PutObject(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}
	return c.ObjectURL(key), nil
}

// ObjectURL returns the public URL for a stored object
func (c *Client) ObjectURL(key string) string {
	if c.cfg.Provider == ProviderWasabi {
		endpoint := c.cfg.WasabiEndpoint
		if endpoint == "" {
			endpoint = WasabiEndpoints[c.cfg.Region]
		}
		return fmt.Sprintf("https://%s/%s/%s", endpoint, c.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.bucket, c.cfg.Region, key)
}

// TestConnection checks bucket access by listing a single object
func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.s3.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(c.bucket),
		MaxKeys: aws.Int32(1), // Just check if we can access
	})
	if err != nil {
		return fmt.Errorf("failed to access bucket %s: %w", c.bucket, err)
	}
	return nil
}
