// Package awscfg builds the aws.Config shared by the SES mailer and the S3 uploader.
package awscfg

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"devevent/internal/domain"
)

// Settings holds the static AWS credentials and transport options.
type Settings struct {
	Region             string
	AccessKeyID        string
	SecretAccessKey    string
	InsecureSkipVerify bool
}

// New returns an aws.Config for s. Static credentials are used when both keys
// are set; otherwise the SDK default chain applies (environment, shared files,
// IAM role). Credentials themselves are resolved on the first signed call.
func New(s Settings) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithHTTPClient(&http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: s.InsecureSkipVerify,
					MinVersion:         tls.VersionTLS12,
				},
			},
		}),
	}
	if s.Region != "" {
		opts = append(opts, config.WithRegion(s.Region))
	}
	if s.AccessKeyID != "" && s.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.AccessKeyID, s.SecretAccessKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("%w: aws config: %w", domain.ErrConfiguration, err)
	}
	return cfg, nil
}
