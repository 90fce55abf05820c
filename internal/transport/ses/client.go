// Package ses sends email through the AWS SES v2 API.
package ses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/aws/smithy-go"

	appconfig "github.com/everfaz/ses-compliance/internal/config"
	"github.com/everfaz/ses-compliance/internal/service/sending"
)

// Client sends email through SES v2 and implements sending.Transport.
type Client struct {
	client *sesv2.Client
	region string
}

// NewClient creates an SES v2 API client with static credentials.
func NewClient(ctx context.Context, cfg appconfig.SESConfig) (*Client, error) {
	creds := credentials.NewStaticCredentialsProvider(
		cfg.AccessKey,
		cfg.SecretKey,
		"", // session token (empty for static creds)
	)

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(creds),
		config.WithHTTPClient(&http.Client{Timeout: cfg.Timeout()}),
	)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &Client{
		client: sesv2.NewFromConfig(awsCfg),
		region: cfg.Region,
	}, nil
}

// Send delivers one message. Stored provider templates are used when the
// message names one; otherwise the subject and body travel inline.
func (c *Client) Send(ctx context.Context, msg *sending.Message) (string, error) {
	content, err := buildContent(msg)
	if err != nil {
		return "", err
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(msg.From),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Content:          content,
		EmailTags:        buildTags(msg.Tags),
		ReplyToAddresses: replyTo(msg),
	}

	output, err := c.client.SendEmail(ctx, input)
	if err != nil {
		return "", classify(err)
	}
	return aws.ToString(output.MessageId), nil
}

func buildContent(msg *sending.Message) (*types.EmailContent, error) {
	if msg.Template != "" {
		data, err := json.Marshal(msg.Data)
		if err != nil {
			return nil, fmt.Errorf("encoding template data: %w", err)
		}
		return &types.EmailContent{
			Template: &types.Template{
				TemplateName: aws.String(msg.Template),
				TemplateData: aws.String(string(data)),
			},
		}, nil
	}

	return &types.EmailContent{
		Simple: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(msg.Data["body"])},
			},
		},
	}, nil
}

func buildTags(tags map[string]string) []types.MessageTag {
	out := make([]types.MessageTag, 0, len(tags))
	for k, v := range tags {
		out = append(out, types.MessageTag{
			Name:  aws.String(k),
			Value: aws.String(v),
		})
	}
	return out
}

func replyTo(msg *sending.Message) []string {
	if msg.ReplyTo == "" {
		return nil
	}
	return []string{msg.ReplyTo}
}

// classify maps an SES API failure onto a transport error kind using the
// typed error hierarchy, never the message text.
func classify(err error) error {
	var (
		rejected  *types.MessageRejected
		paused    *types.SendingPausedException
		suspended *types.AccountSuspendedException
		throttled *types.TooManyRequestsException
	)

	switch {
	case errors.As(err, &throttled):
		return &sending.TransportError{Kind: sending.KindThrottled, Message: throttled.ErrorMessage(), Err: err}
	case errors.As(err, &rejected):
		return &sending.TransportError{Kind: sending.KindRejected, Message: rejected.ErrorMessage(), Err: err}
	case errors.As(err, &paused):
		return &sending.TransportError{Kind: sending.KindSuspended, Message: paused.ErrorMessage(), Err: err}
	case errors.As(err, &suspended):
		return &sending.TransportError{Kind: sending.KindSuspended, Message: suspended.ErrorMessage(), Err: err}
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return &sending.TransportError{Kind: sending.KindUnknown, Message: apiErr.ErrorMessage(), Err: err}
	}
	return &sending.TransportError{Kind: sending.KindUnknown, Message: err.Error(), Err: err}
}
