package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"go.uber.org/zap"

	"hackreg-backend/errs"
	"hackreg-backend/log"
)

const sendTimeout = 10 * time.Second

type Mailer struct {
	mg     *mailgun.MailgunImpl
	sender string
}

func New(domain, apiKey, sender string) *Mailer {
	return &Mailer{
		mg:     mailgun.NewMailgun(domain, apiKey),
		sender: sender,
	}
}

// SendOTP dispatches a single plaintext message carrying the verification
// code.
func (m *Mailer) SendOTP(ctx context.Context, to, code string) error {
	body := fmt.Sprintf("Your verification code is: %s\nIt expires in 10 minutes.", code)
	msg := m.mg.NewMessage(m.sender, "Email verification code", body, to)

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if _, _, err := m.mg.Send(ctx, msg); err != nil {
		log.Logger.Error("mail dispatch failed", zap.String("to", to), zap.Error(err))
		return errs.ErrMail
	}

	return nil
}
