// Package send delivers cleaned emails as previews through AWS SES v2, so a
// cleaned export can be checked in real inboxes before it is imported back.
package send

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"
)

// maxRetries is the maximum number of retry attempts for transient failures.
const maxRetries = 3

// baseRetryDelay is the initial delay for exponential backoff.
var baseRetryDelay = 1 * time.Second

// Config holds what is needed to reach SES.
type Config struct {
	Region          string `yaml:"region"`
	Sender          string `yaml:"sender"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// Message is one preview email.
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// SendEmailAPI is the SES v2 SendEmail operation.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender sends previews via the AWS SES v2 API.
type SESSender struct {
	sender string
	client SendEmailAPI
	log    *zap.Logger
}

// New creates a SESSender. Without static keys the default AWS credential
// chain (environment, shared config, instance role) is used.
func New(ctx context.Context, cfg Config, log *zap.Logger) (*SESSender, error) {
	if cfg.Sender == "" {
		return nil, errors.New("sender address is required")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewWithClient(cfg.Sender, sesv2.NewFromConfig(awsCfg), log), nil
}

// NewWithClient creates a SESSender around an existing client.
func NewWithClient(sender string, client SendEmailAPI, log *zap.Logger) *SESSender {
	if log == nil {
		log = zap.NewNop()
	}
	return &SESSender{sender: sender, client: client, log: log.Named("ses")}
}

// Send delivers msg and returns the SES message id.
func (s *SESSender) Send(ctx context.Context, msg Message) (string, error) {
	if len(msg.To) == 0 {
		return "", errors.New("no recipients")
	}
	input := buildInput(s.sender, msg)

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			s.log.Debug("Retrying SES request", zap.Int("attempt", attempt), zap.Int("max_retries", maxRetries))
			if err := sleepWithContext(ctx, backoffDelay(attempt)); err != nil {
				return "", fmt.Errorf("context cancelled during retry wait: %w", err)
			}
		}

		out, err := s.client.SendEmail(ctx, input)
		if err == nil {
			id := aws.ToString(out.MessageId)
			s.log.Info("Preview sent", zap.Strings("to", msg.To), zap.String("message_id", id))
			return id, nil
		}
		lastErr = err
		s.log.Warn("SES API error", zap.Int("attempt", attempt), zap.Error(err))
	}
	return "", fmt.Errorf("SES API request failed after %d retries: %w", maxRetries, lastErr)
}

func buildInput(sender string, msg Message) *sesv2.SendEmailInput {
	body := &types.Body{
		Html: &types.Content{
			Data:    aws.String(msg.HTML),
			Charset: aws.String("UTF-8"),
		},
	}
	if msg.Text != "" {
		body.Text = &types.Content{
			Data:    aws.String(msg.Text),
			Charset: aws.String("UTF-8"),
		}
	}

	return &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(sender),
		Destination:      &types.Destination{ToAddresses: msg.To},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(msg.Subject),
					Charset: aws.String("UTF-8"),
				},
				Body: body,
			},
		},
	}
}

// backoffDelay returns the exponential backoff delay for the given attempt number.
func backoffDelay(attempt int) time.Duration {
	return baseRetryDelay << (attempt - 1)
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
