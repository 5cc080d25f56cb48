package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/rehber360/rehber360-desktop/internal/config"
	"github.com/rehber360/rehber360-desktop/internal/http"
	"github.com/rehber360/rehber360-desktop/internal/logging"
)

// Uploader copies a finished backup off-site.
type Uploader interface {
	Upload(ctx context.Context, localPath, name string) error
	Name() string
}

// ErrAzureConnectionString is returned when the azure provider has no
// connection string in the environment.
var ErrAzureConnectionString = errors.New("REHBER360_AZURE_CONNECTION_STRING is not set")

// NewUploader builds the uploader for cfg. Returns nil for provider "none".
func NewUploader(ctx context.Context, cfg config.RemoteBackupConfig, proxy config.ProxyConfig, logger *logging.Logger) (Uploader, error) {
	switch cfg.Provider {
	case "", config.RemoteNone:
		return nil, nil
	case config.RemoteS3:
		return NewS3Uploader(ctx, cfg, proxy, logger)
	case config.RemoteAzure:
		return NewAzureUploader(cfg, proxy, logger)
	default:
		return nil, config.ErrInvalidRemoteProvider
	}
}

// objectKey joins the configured prefix and the backup name with '/'.
func objectKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// UploadWithRetry uploads localPath, retrying transient failures.
func UploadWithRetry(ctx context.Context, u Uploader, localPath string, logger *logging.Logger) error {
	name := filepath.Base(localPath)
	retryCfg := http.DefaultRetryConfig()
	retryCfg.OnRetry = func(attempt int, err error, errType http.ErrorType) {
		logger.Warn().Err(err).
			Int("attempt", attempt).
			Str("error_type", http.ErrorTypeName(errType)).
			Str("provider", u.Name()).
			Msg("Retrying off-site backup upload")
	}

	err := http.ExecuteWithRetry(ctx, retryCfg, func() error {
		return u.Upload(ctx, localPath, name)
	})
	if err != nil {
		return fmt.Errorf("%s upload of %s failed: %w", u.Name(), name, err)
	}
	logger.Info().Str("provider", u.Name()).Str("name", name).Msg("Backup copied off-site")
	return nil
}

// S3Uploader puts backups into an S3 bucket.
type S3Uploader struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Uploader creates an S3 uploader using the default AWS credential chain
// (environment, shared config, SSO, instance role).
func NewS3Uploader(ctx context.Context, cfg config.RemoteBackupConfig, proxy config.ProxyConfig, logger *logging.Logger) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, config.ErrRemoteBucketRequired
	}

	httpClient, err := http.ConfigureHTTPClient(proxy, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithHTTPClient(httpClient),
	}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Uploader{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

// Name returns "s3".
func (u *S3Uploader) Name() string { return config.RemoteS3 }

// Upload puts the file at localPath under prefix/name.
func (u *S3Uploader) Upload(ctx context.Context, localPath, name string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return err
	}

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(objectKey(u.prefix, name)),
		Body:          f,
		ContentLength: aws.Int64(st.Size()),
		ContentType:   aws.String("application/vnd.sqlite3"),
	})
	return err
}

// AzureUploader puts backups into an Azure Blob container.
type AzureUploader struct {
	client    *azblob.Client
	container string
	prefix    string
}

// NewAzureUploader creates an Azure uploader from the connection string in
// the environment.
func NewAzureUploader(cfg config.RemoteBackupConfig, proxy config.ProxyConfig, logger *logging.Logger) (*AzureUploader, error) {
	if cfg.Container == "" {
		return nil, config.ErrRemoteContainer
	}
	if cfg.AzureConnectionString == "" {
		return nil, ErrAzureConnectionString
	}

	httpClient, err := http.ConfigureHTTPClient(proxy, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	client, err := azblob.NewClientFromConnectionString(cfg.AzureConnectionString, &azblob.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Transport: httpClient,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure client: %w", err)
	}

	return &AzureUploader{client: client, container: cfg.Container, prefix: cfg.Prefix}, nil
}

// Name returns "azure".
func (u *AzureUploader) Name() string { return config.RemoteAzure }

// Upload writes the file at localPath to prefix/name as a block blob.
func (u *AzureUploader) Upload(ctx context.Context, localPath, name string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = u.client.UploadFile(ctx, u.container, objectKey(u.prefix, name), f, nil)
	return err
}
