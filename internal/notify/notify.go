// Package notify acknowledges case submissions to citizens by email (SES)
// or SMS (SNS). Delivery is best effort: the case is already stored when a
// notification is attempted, and failures are reported to the caller only
// so it can log them.
package notify

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/tbourn/legal-aid-backend/internal/domain"
)

// Channel names reported in Result.
const (
	ChannelNone  = "none"
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// ErrSendFailed wraps provider errors.
var ErrSendFailed = errors.New("notification send failed")

// Notifier is told about new cases.
type Notifier interface {
	CaseSubmitted(ctx context.Context, c *domain.Case) (channel string, err error)
}

// SESService is the subset of the SES client used here.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SNSService is the subset of the SNS client used here.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Config controls which channels are used.
type Config struct {
	Region    string
	EmailFrom string // empty disables email
	SMS       bool
}

// AWS sends acknowledgements through SES and SNS.
type AWS struct {
	cfg Config
	ses SESService
	sns SNSService
}

// NewAWS loads the default AWS credential chain for cfg.Region.
func NewAWS(ctx context.Context, cfg Config) (*AWS, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return NewAWSWithClients(cfg, ses.NewFromConfig(awsCfg), sns.NewFromConfig(awsCfg)), nil
}

// NewAWSWithClients builds a notifier over caller-provided clients.
func NewAWSWithClients(cfg Config, sesClient SESService, snsClient SNSService) *AWS {
	return &AWS{cfg: cfg, ses: sesClient, sns: snsClient}
}

var phoneRE = regexp.MustCompile(`^\+?[0-9][0-9 \-]{7,18}[0-9]$`)

// CaseSubmitted picks a channel from the case contact: an address with "@"
// gets email, a phone number gets SMS. Cases without a usable contact, or
// whose channel is disabled, are skipped with ChannelNone.
func (a *AWS) CaseSubmitted(ctx context.Context, c *domain.Case) (string, error) {
	contact := strings.TrimSpace(c.Contact)
	subject, body := message(c)

	switch {
	case strings.Contains(contact, "@") && a.cfg.EmailFrom != "":
		_, err := a.ses.SendEmail(ctx, &ses.SendEmailInput{
			Destination: &types.Destination{ToAddresses: []string{contact}},
			Message: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body:    &types.Body{Text: &types.Content{Data: aws.String(body)}},
			},
			Source: aws.String(a.cfg.EmailFrom),
		})
		if err != nil {
			return ChannelEmail, fmt.Errorf("%w: email: %v", ErrSendFailed, err)
		}
		return ChannelEmail, nil

	case a.cfg.SMS && phoneRE.MatchString(contact):
		_, err := a.sns.Publish(ctx, &sns.PublishInput{
			PhoneNumber: aws.String(normalizePhone(contact)),
			Message:     aws.String(body),
		})
		if err != nil {
			return ChannelSMS, fmt.Errorf("%w: sms: %v", ErrSendFailed, err)
		}
		return ChannelSMS, nil
	}
	return ChannelNone, nil
}

func message(c *domain.Case) (subject, body string) {
	name := strings.TrimSpace(c.FullName)
	if name == "" {
		name = "Citizen"
	}
	ref := c.ID
	if len(ref) > 8 {
		ref = ref[:8]
	}
	subject = "Your legal aid request has been received (ref " + ref + ")"
	body = fmt.Sprintf("Dear %s, we have received your %s case (ref %s). A volunteer or advocate will contact you. "+
		"For free legal aid you can also call the NALSA helpline 15100.", name, strings.ReplaceAll(string(c.Category), "_", " "), ref)
	return subject, body
}

// normalizePhone strips separators and assumes +91 for bare 10-digit numbers.
func normalizePhone(s string) string {
	s = strings.NewReplacer(" ", "", "-", "").Replace(s)
	if !strings.HasPrefix(s, "+") && len(s) == 10 {
		return "+91" + s
	}
	return s
}

// Nop drops every notification.
type Nop struct{}

func (Nop) CaseSubmitted(context.Context, *domain.Case) (string, error) { return ChannelNone, nil }
