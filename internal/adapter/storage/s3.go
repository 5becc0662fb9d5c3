package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3manager "github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	appconfig "github.com/semmidev/odoodrive/internal/config"
	"github.com/semmidev/odoodrive/internal/domain"
)

type S3Storage struct {
	client   *s3.Client
	uploader *s3manager.Uploader
	bucket   string
	prefix   string
	format   string
	mimeType string
}

// NewS3 creates an S3Storage using AWS SDK v2. A custom endpoint switches to
// path-style addressing for S3-compatible services.
func NewS3(ctx context.Context, cfg *appconfig.UploadTarget, format string) (*S3Storage, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		client:   client,
		uploader: s3manager.NewUploader(client),
		bucket:   cfg.Bucket,
		prefix:   normalizePrefix(cfg.Prefix),
		format:   format,
		mimeType: domain.MimeType(format),
	}, nil
}

func (s *S3Storage) Upload(ctx context.Context, localPath string, remoteName string) (domain.RemoteFile, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return domain.RemoteFile{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return domain.RemoteFile{}, fmt.Errorf("failed to stat file: %w", err)
	}

	key := s.key(remoteName)

	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(s.mimeType),
	})
	if err != nil {
		return domain.RemoteFile{}, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return domain.RemoteFile{
		ID:          key,
		Name:        remoteName,
		CreatedTime: creationTime(remoteName, time.Now()),
		Size:        info.Size(),
	}, nil
}

// List returns the archives under the prefix in ascending creation order.
func (s *S3Storage) List(ctx context.Context) ([]domain.RemoteFile, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	var files []domain.RemoteFile
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list S3 objects: %w", err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			name := strings.TrimPrefix(key, s.prefix)
			if name == "" || strings.Contains(name, "/") || !hasArchiveExt(name, s.format) {
				continue
			}

			files = append(files, domain.RemoteFile{
				ID:          key,
				Name:        name,
				CreatedTime: aws.ToTime(obj.LastModified),
				Size:        aws.ToInt64(obj.Size),
			})
		}
	}

	domain.SortByCreation(files)
	return files, nil
}

func (s *S3Storage) Delete(ctx context.Context, file domain.RemoteFile) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(file.ID),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}

	return nil
}

func (s *S3Storage) key(remoteName string) string {
	return s.prefix + path.Base(remoteName)
}

// normalizePrefix turns "backups" and "/backups/" into "backups/".
func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}
