// Package upload stores event banner images and returns their public URL.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"devevent/internal/adapters/awscfg"
	"devevent/internal/domain"
)

// Config holds configuration for creating an uploader.
type Config struct {
	Provider      string // "s3" or "local"
	Bucket        string
	LocalDir      string
	PublicBaseURL string
	AWS           awscfg.Settings
}

// putObjectAPI is the part of the S3 client the uploader uses.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewUploader creates an ImageUploader from config.
func NewUploader(config Config, logger *slog.Logger) (domain.ImageUploader, error) {
	switch config.Provider {
	case "s3":
		if config.Bucket == "" {
			return nil, fmt.Errorf("%w: S3_BUCKET is required for the s3 upload provider", domain.ErrConfiguration)
		}
		base := config.PublicBaseURL
		if base == "" {
			base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", config.Bucket, config.AWS.Region)
		}
		awsCfg, err := awscfg.New(config.AWS)
		if err != nil {
			return nil, err
		}
		return &s3Uploader{
			client:  s3.NewFromConfig(awsCfg),
			bucket:  config.Bucket,
			baseURL: strings.TrimRight(base, "/"),
		}, nil
	case "local", "":
		base := config.PublicBaseURL
		if base == "" {
			base = "/uploads"
		}
		logger.Info("storing uploads on local disk", "dir", config.LocalDir)
		return &localUploader{dir: config.LocalDir, baseURL: strings.TrimRight(base, "/")}, nil
	default:
		return nil, fmt.Errorf("%w: unknown upload provider %q", domain.ErrConfiguration, config.Provider)
	}
}

// objectKey returns folder/<uuid><ext>. Only the last element of folder
// survives path cleaning so a hint cannot escape the upload root.
func objectKey(folder string, img *domain.ImageFile) string {
	name := uuid.NewString() + domain.ImageExtension(img.ContentType)
	folder = path.Base(path.Clean("/" + folder))
	if folder == "/" || folder == "." {
		return name
	}
	return folder + "/" + name
}

type s3Uploader struct {
	client  putObjectAPI
	bucket  string
	baseURL string
}

func (u *s3Uploader) Upload(ctx context.Context, folder string, img *domain.ImageFile) (string, error) {
	key := objectKey(folder, img)
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(img.Data),
		ContentType:   aws.String(img.ContentType),
		ContentLength: aws.Int64(int64(len(img.Data))),
	})
	if err != nil {
		return "", fmt.Errorf("%w: put s3 object: %w", domain.ErrUpstream, err)
	}
	return u.baseURL + "/" + key, nil
}

type localUploader struct {
	dir     string
	baseURL string
}

func (u *localUploader) Upload(ctx context.Context, folder string, img *domain.ImageFile) (string, error) {
	key := objectKey(folder, img)
	dst := filepath.Join(u.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("%w: create upload dir: %w", domain.ErrUpstream, err)
	}
	if err := os.WriteFile(dst, img.Data, 0o644); err != nil {
		return "", fmt.Errorf("%w: write upload: %w", domain.ErrUpstream, err)
	}
	return u.baseURL + "/" + key, nil
}
