package integration

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/RubachokBoss/thesisflow/internal/models"
	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendgridEndpoint = "/v3/mail/send"

// ErrPermanentDelivery marks a rejected e-mail that must not be retried.
var ErrPermanentDelivery = errors.New("permanent delivery failure")

type EmailClient interface {
	Send(ctx context.Context, event *models.EmailNotificationEvent) error
}

type sendgridClient struct {
	key        string
	host       string
	from       *sgmail.Email
	subjPrefix string
	logger     zerolog.Logger
}

func NewEmailClient(key, host, fromName, fromEmail string, logger zerolog.Logger) EmailClient {
	return &sendgridClient{
		key:        key,
		host:       host,
		from:       sgmail.NewEmail(fromName, fromEmail),
		subjPrefix: "[" + fromName + "] ",
		logger:     logger,
	}
}

func (c *sendgridClient) prepare(event *models.EmailNotificationEvent) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = c.subjPrefix + event.Subject
	p.AddTos(sgmail.NewEmail(event.ToName, event.ToEmail))

	m := sgmail.NewV3Mail()
	m.SetFrom(c.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", event.Text))
	if event.HTML != "" {
		m.AddContent(sgmail.NewContent("text/html", event.HTML))
	}

	return m
}

func (c *sendgridClient) Send(ctx context.Context, event *models.EmailNotificationEvent) error {
	if event.ToEmail == "" {
		return fmt.Errorf("%w: no recipient", ErrPermanentDelivery)
	}

	req := sendgrid.GetRequest(c.key, sendgridEndpoint, c.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(c.prepare(event))

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to send e-mail: %w", err)
	}

	switch {
	case res.StatusCode >= http.StatusInternalServerError || res.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("e-mail provider returned status %d: %s", res.StatusCode, res.Body)
	case res.StatusCode >= http.StatusBadRequest:
		return fmt.Errorf("%w: status %d: %s", ErrPermanentDelivery, res.StatusCode, res.Body)
	}

	c.logger.Info().
		Str("event_id", event.ID).
		Str("kind", string(event.Kind)).
		Str("to", event.ToEmail).
		Msg("E-mail sent")

	return nil
}

// NewLogEmailClient returns an EmailClient that only logs. It is used when
// outbound e-mail is disabled.
func NewLogEmailClient(logger zerolog.Logger) EmailClient {
	return logEmailClient{logger: logger}
}

type logEmailClient struct {
	logger zerolog.Logger
}

func (c logEmailClient) Send(ctx context.Context, event *models.EmailNotificationEvent) error {
	c.logger.Info().
		Str("event_id", event.ID).
		Str("kind", string(event.Kind)).
		Str("to", event.ToEmail).
		Str("subject", event.Subject).
		Msg("E-mail delivery disabled; notification logged")
	return nil
}
