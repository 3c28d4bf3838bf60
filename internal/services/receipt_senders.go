package services

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/poofware/housing-service/internal/config"
	"github.com/poofware/housing-service/internal/models"
	"github.com/poofware/housing-service/internal/utils"
)

/* ---------- e-mail ---------- */

type EmailReceiptSender struct {
	client    *sendgrid.Client
	orgName   string
	fromEmail string
	sandbox   bool
}

func NewEmailReceiptSender(cfg *config.Config) *EmailReceiptSender {
	return &EmailReceiptSender{
		client:    sendgrid.NewSendClient(cfg.SendGridAPIKey),
		orgName:   cfg.OrganizationName,
		fromEmail: cfg.SendgridFromEmail,
		sandbox:   cfg.LDFlag_SendgridSandboxMode,
	}
}

func (s *EmailReceiptSender) Name() string { return "email" }

func (s *EmailReceiptSender) SendReceipt(_ context.Context, ev models.PaymentEvent) error {
	from := mail.NewEmail(s.orgName, s.fromEmail)
	to := mail.NewEmail(ev.Name, ev.Email)
	subject := s.orgName + " - Maintenance Payment Receipt"
	plain, html := receiptBodies(ev)
	message := mail.NewSingleEmail(from, subject, to, plain, html)

	if s.sandbox {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		message.MailSettings = ms
	}

	resp, err := s.client.Send(message)
	if err != nil {
		return fmt.Errorf("%w: failed to send email via sendgrid: %v", utils.ErrExternalServiceFailure, err)
	}
	if resp != nil && resp.StatusCode >= 400 {
		return fmt.Errorf("%w: sendgrid returned status %d", utils.ErrExternalServiceFailure, resp.StatusCode)
	}
	return nil
}

/* ---------- sms ---------- */

type SMSReceiptSender struct {
	client *twilio.RestClient
	from   string
}

func NewSMSReceiptSender(cfg *config.Config) *SMSReceiptSender {
	return &SMSReceiptSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		}),
		from: cfg.TwilioFromPhone,
	}
}

func (s *SMSReceiptSender) Name() string { return "sms" }

func (s *SMSReceiptSender) SendReceipt(_ context.Context, ev models.PaymentEvent) error {
	if !utils.IsE164(ev.Phone) {
		utils.Logger.WithField("email", ev.Email).Debug("Skipping SMS receipt; phone is not E.164")
		return nil
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(ev.Phone)
	params.SetFrom(s.from)
	params.SetBody(fmt.Sprintf(
		"Payment of Rs.%d received for flat %s-%s. Pending dues: Rs.%d.",
		ev.Amount, ev.BlockNo, ev.FlatNo, ev.Pending,
	))

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("%w: failed to send sms via twilio: %v", utils.ErrExternalServiceFailure, err)
	}
	return nil
}

// ReceiptSendersFromConfig returns the channels that have credentials.
func ReceiptSendersFromConfig(cfg *config.Config) []ReceiptSender {
	var out []ReceiptSender
	if cfg.SendGridAPIKey != "" {
		out = append(out, NewEmailReceiptSender(cfg))
	}
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" && cfg.TwilioFromPhone != "" {
		out = append(out, NewSMSReceiptSender(cfg))
	}
	return out
}

func receiptBodies(ev models.PaymentEvent) (string, string) {
	paidAt := ev.PaidAt.Format("02 Jan 2006 15:04")
	plain := fmt.Sprintf(
		"Dear %s,\n\nWe received Rs.%d for flat %s-%s on %s.\nPending dues: Rs.%d.\n",
		ev.Name, ev.Amount, ev.BlockNo, ev.FlatNo, paidAt, ev.Pending,
	)
	html := fmt.Sprintf(receiptEmailHTML, ev.Name, ev.Amount, ev.BlockNo, ev.FlatNo, paidAt, ev.Pending)
	return plain, html
}

const receiptEmailHTML = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <p>Dear %s,</p>
  <p>We received <strong>Rs.%d</strong> for flat <strong>%s-%s</strong> on %s.</p>
  <p>Pending dues: <strong>Rs.%d</strong></p>
</body>
</html>`
