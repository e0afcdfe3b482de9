package ses

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"

	"github.com/mikey/llm-mail-composer/internal/config"
	"github.com/mikey/llm-mail-composer/internal/core"
)

// ErrMissingMessageID is returned when SES accepts a message without an ID
var ErrMissingMessageID = errors.New("SES response carried no message ID")

// SendEmailAPI is the subset of the SES v2 client used by Transport
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Transport delivers mail through the AWS SES v2 API
type Transport struct {
	client   SendEmailAPI
	fromName string
	logger   *zap.Logger
}

// New creates an SES transport. Static credentials are used when both keys are
// set; otherwise the default AWS credential chain applies.
func New(ctx context.Context, cfg config.SESConfig, fromName string, logger *zap.Logger) (*Transport, error) {
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

	return NewWithClient(sesv2.NewFromConfig(awsCfg), fromName, logger), nil
}

// NewWithClient creates an SES transport around an existing client
func NewWithClient(client SendEmailAPI, fromName string, logger *zap.Logger) *Transport {
	return &Transport{
		client:   client,
		fromName: fromName,
		logger:   logger,
	}
}

// Name returns the transport name
func (t *Transport) Name() string {
	return "ses"
}

// Send submits msg as a single SES simple message. Failures are not retried.
func (t *Transport) Send(ctx context.Context, msg core.OutgoingMessage) (string, error) {
	out, err := t.client.SendEmail(ctx, t.buildInput(msg))
	if err != nil {
		return "", fmt.Errorf("SES SendEmail failed: %w", err)
	}

	if out == nil || out.MessageId == nil {
		return "", ErrMissingMessageID
	}

	t.logger.Debug("Message accepted by SES", zap.String("message_id", *out.MessageId))

	return *out.MessageId, nil
}

func (t *Transport) buildInput(msg core.OutgoingMessage) *sesv2.SendEmailInput {
	body := &types.Body{}

	if msg.HTML != "" {
		body.Html = &types.Content{
			Data:    aws.String(msg.HTML),
			Charset: aws.String("UTF-8"),
		}
	}
	if msg.Text != "" {
		body.Text = &types.Content{
			Data:    aws.String(msg.Text),
			Charset: aws.String("UTF-8"),
		}
	}

	from := msg.From
	if t.fromName != "" {
		from = (&mail.Address{Name: t.fromName, Address: msg.From}).String()
	}

	return &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: msg.To,
		},
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
