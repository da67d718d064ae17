package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3Config configures an S3Uploader. Endpoint is set for S3-compatible
// stores such as MinIO.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string // base URL objects are served from; derived when empty
	DisableSSL      bool
}

// S3Uploader stores uploads in an S3 bucket.
type S3Uploader struct {
	client    *s3.S3
	bucket    string
	publicURL string
}

// NewS3Uploader creates an S3 client for cfg. It does not contact the store.
func NewS3Uploader(cfg S3Config) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("media: S3 bucket is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	awsConfig := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.AccessKeyID != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
		awsConfig.DisableSSL = aws.Bool(cfg.DisableSSL)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("create AWS session: %w", err)
	}

	u := &S3Uploader{
		client:    s3.New(sess),
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}
	if u.publicURL == "" {
		u.publicURL = defaultPublicURL(cfg)
	}
	return u, nil
}

func defaultPublicURL(cfg S3Config) string {
	if cfg.Endpoint != "" && !strings.Contains(cfg.Endpoint, "amazonaws.com") {
		protocol := "https"
		if cfg.DisableSSL {
			protocol = "http"
		}
		host := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "http://"), "https://")
		return fmt.Sprintf("%s://%s/%s", protocol, strings.TrimRight(host, "/"), cfg.Bucket)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
}

func (u *S3Uploader) Backend() string { return "s3" }

// EnsureBucket creates the bucket if it does not exist yet.
func (u *S3Uploader) EnsureBucket(ctx context.Context) error {
	_, err := u.client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{Bucket: aws.String(u.bucket)})
	if err == nil {
		return nil
	}
	if _, err := u.client.CreateBucketWithContext(ctx, &s3.CreateBucketInput{Bucket: aws.String(u.bucket)}); err != nil {
		return fmt.Errorf("create bucket %s: %w", u.bucket, err)
	}
	return nil
}

// Upload puts r into the bucket and returns its public URL.
func (u *S3Uploader) Upload(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	p, err := prepare(name, contentType, r)
	if err != nil {
		return "", err
	}
	body, ok := p.body.(io.ReadSeeker)
	if !ok {
		buf, err := io.ReadAll(p.body)
		if err != nil {
			return "", fmt.Errorf("read upload: %w", err)
		}
		body = bytes.NewReader(buf)
	}
	_, err = u.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(p.key),
		Body:        body,
		ContentType: aws.String(p.contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload to S3: %w", err)
	}
	return u.ObjectURL(p.key), nil
}

// ObjectURL returns the public URL of key.
func (u *S3Uploader) ObjectURL(key string) string {
	return u.publicURL + "/" + strings.TrimLeft(key, "/")
}

// Delete removes the object behind a URL returned by Upload. URLs from
// elsewhere are ignored.
func (u *S3Uploader) Delete(ctx context.Context, objectURL string) error {
	key, ok := strings.CutPrefix(objectURL, u.publicURL+"/")
	if !ok {
		return nil
	}
	_, err := u.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete from S3: %w", err)
	}
	return nil
}
