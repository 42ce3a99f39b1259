// Package ses sends templated notifications through Amazon SES.
package ses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/dtroode/authcore/internal/model"
)

// sesAPI is the part of *sesv2.Client used here.
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

var _ model.Dispatcher = (*Dispatcher)(nil)

// ErrNoRecipient is returned for notifications without a recipient.
var ErrNoRecipient = errors.New("notification has no recipient")

// Options configures the SES client.
type Options struct {
	Region string
	From   string
	// Endpoint overrides the SES endpoint, e.g. for a local emulator.
	Endpoint string
	// AccessKey and SecretKey select static credentials. When empty the
	// default AWS credential chain is used.
	AccessKey string
	SecretKey string
}

type Dispatcher struct {
	api  sesAPI
	from string
}

// New creates a Dispatcher from opts.
func New(ctx context.Context, opts Options) (*Dispatcher, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := sesv2.NewFromConfig(cfg, func(o *sesv2.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})

	return NewWithAPI(client, opts.From), nil
}

// NewWithAPI allows injecting a fake client (used in tests).
func NewWithAPI(api sesAPI, from string) *Dispatcher {
	return &Dispatcher{api: api, from: from}
}

// Send sends notification as an SES templated email. Data becomes the
// template data.
func (d *Dispatcher) Send(ctx context.Context, notification model.Notification) error {
	if notification.Recipient == "" {
		return ErrNoRecipient
	}

	data, err := json.Marshal(notification.Data)
	if err != nil {
		return fmt.Errorf("failed to encode template data: %w", err)
	}

	_, err = d.api.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(d.from),
		Destination: &types.Destination{
			ToAddresses: []string{notification.Recipient},
		},
		Content: &types.EmailContent{
			Template: &types.Template{
				TemplateName: aws.String(notification.TemplateID),
				TemplateData: aws.String(string(data)),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses rejected template %q: %w", notification.TemplateID, err)
	}

	return nil
}
