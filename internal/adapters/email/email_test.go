package email

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventboard/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestTemplateRenderer_Verification(t *testing.T) {
	r := NewTemplateRenderer()
	data := &domain.VerificationEmailData{
		Email:            "ana@example.com",
		Link:             "https://app.test/auth/verify?token=abc",
		ExpiresInMinutes: 60,
	}

	subject, html, text, err := r.Render("verification", data)
	require.NoError(t, err)
	assert.Equal(t, "Confirm your eventboard account", subject)
	assert.Contains(t, html, `href="https://app.test/auth/verify?token=abc"`)
	assert.Contains(t, html, "ana@example.com")
	assert.Contains(t, text, "https://app.test/auth/verify?token=abc")
	assert.Contains(t, text, "60 minutes")
}

func TestTemplateRenderer_UnknownTemplate(t *testing.T) {
	_, _, _, err := NewTemplateRenderer().Render("missing", nil)
	require.Error(t, err)
}

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESMailer_Send(t *testing.T) {
	client := &fakeSES{}
	m := newSESMailer(client, "no-reply@eventboard.test", "Eventboard", testLogger)

	err := m.Send(context.Background(), "ana@example.com", "Hello", "<p>hi</p>", "")
	require.NoError(t, err)
	require.NotNil(t, client.input)
	assert.Equal(t, "Eventboard <no-reply@eventboard.test>", aws.ToString(client.input.Source))
	assert.Equal(t, []string{"ana@example.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "Hello", aws.ToString(client.input.Message.Subject.Data))
	require.NotNil(t, client.input.Message.Body.Html)
	assert.Nil(t, client.input.Message.Body.Text)
}

func TestSESMailer_SendError(t *testing.T) {
	client := &fakeSES{err: errors.New("throttled")}
	m := newSESMailer(client, "no-reply@eventboard.test", "", testLogger)

	err := m.Send(context.Background(), "ana@example.com", "Hello", "", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
	assert.Equal(t, "no-reply@eventboard.test", aws.ToString(client.input.Source))
}

func TestNewMailer_Providers(t *testing.T) {
	assert.IsType(t, &noopMailer{}, NewMailer(MailerConfig{Provider: "noop"}, testLogger))
	assert.IsType(t, &noopMailer{}, NewMailer(MailerConfig{Provider: "carrier-pigeon"}, testLogger))
	assert.IsType(t, &sesMailer{}, NewMailer(MailerConfig{Provider: "ses", SES: SESConfig{Region: "eu-west-1"}}, testLogger))
	require.NoError(t, NewMailer(MailerConfig{}, testLogger).Send(context.Background(), "a@b.co", "s", "", "t"))
}
