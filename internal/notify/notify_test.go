package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/legal-aid-backend/internal/domain"
)

type fakeSES struct {
	in  *ses.SendEmailInput
	err error
}

func (m *fakeSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.in = params
	return &ses.SendEmailOutput{MessageId: aws.String("m-1")}, m.err
}

type fakeSNS struct {
	in  *sns.PublishInput
	err error
}

func (m *fakeSNS) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.in = params
	return &sns.PublishOutput{MessageId: aws.String("p-1")}, m.err
}

func sampleCase(contact string) *domain.Case {
	return &domain.Case{
		ID:          "0b9c6f1e-1111-2222-3333-444455556666",
		FullName:    "Asha Patil",
		Contact:     contact,
		Category:    domain.CategoryCyberCrime,
		Description: "Lost money to a fake refund call.",
	}
}

func TestCaseSubmitted_Email(t *testing.T) {
	s, p := &fakeSES{}, &fakeSNS{}
	n := NewAWSWithClients(Config{EmailFrom: "no-reply@legalaid.example", SMS: true}, s, p)

	ch, err := n.CaseSubmitted(context.Background(), sampleCase(" asha@example.com "))
	require.NoError(t, err)
	assert.Equal(t, ChannelEmail, ch)
	require.NotNil(t, s.in)
	assert.Equal(t, []string{"asha@example.com"}, s.in.Destination.ToAddresses)
	assert.Equal(t, "no-reply@legalaid.example", aws.ToString(s.in.Source))
	assert.Contains(t, aws.ToString(s.in.Message.Subject.Data), "ref 0b9c6f1e")
	assert.Contains(t, aws.ToString(s.in.Message.Body.Text.Data), "Dear Asha Patil")
	assert.Contains(t, aws.ToString(s.in.Message.Body.Text.Data), "cyber crime case")
	assert.Nil(t, p.in)
}

func TestCaseSubmitted_SMS(t *testing.T) {
	s, p := &fakeSES{}, &fakeSNS{}
	n := NewAWSWithClients(Config{SMS: true}, s, p)

	ch, err := n.CaseSubmitted(context.Background(), sampleCase("98765 43210"))
	require.NoError(t, err)
	assert.Equal(t, ChannelSMS, ch)
	require.NotNil(t, p.in)
	assert.Equal(t, "+919876543210", aws.ToString(p.in.PhoneNumber))
	assert.True(t, strings.HasPrefix(aws.ToString(p.in.Message), "Dear Asha Patil"))
	assert.Nil(t, s.in)
}

func TestCaseSubmitted_SkippedChannels(t *testing.T) {
	s, p := &fakeSES{}, &fakeSNS{}
	n := NewAWSWithClients(Config{}, s, p)

	for _, contact := range []string{"asha@example.com", "+91 98765 43210", "", "call me"} {
		ch, err := n.CaseSubmitted(context.Background(), sampleCase(contact))
		require.NoError(t, err)
		assert.Equal(t, ChannelNone, ch, "contact %q", contact)
	}
	assert.Nil(t, s.in)
	assert.Nil(t, p.in)
}

func TestCaseSubmitted_ProviderErrors(t *testing.T) {
	s := &fakeSES{err: errors.New("MessageRejected")}
	p := &fakeSNS{err: errors.New("throttled")}
	n := NewAWSWithClients(Config{EmailFrom: "no-reply@legalaid.example", SMS: true}, s, p)

	_, err := n.CaseSubmitted(context.Background(), sampleCase("asha@example.com"))
	assert.True(t, errors.Is(err, ErrSendFailed))

	ch, err := n.CaseSubmitted(context.Background(), sampleCase("+919876543210"))
	assert.Equal(t, ChannelSMS, ch)
	assert.True(t, errors.Is(err, ErrSendFailed))
}

func TestMessage_AnonymousAndNop(t *testing.T) {
	c := sampleCase("")
	c.FullName = ""
	c.ID = "short"
	subject, body := message(c)
	assert.Equal(t, "Your legal aid request has been received (ref short)", subject)
	assert.Contains(t, body, "Dear Citizen")
	assert.Contains(t, body, "15100")

	ch, err := Nop{}.CaseSubmitted(context.Background(), c)
	assert.NoError(t, err)
	assert.Equal(t, ChannelNone, ch)
}
