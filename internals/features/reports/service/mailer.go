// file: internals/features/reports/service/mailer.go
package service

import (
	"context"

	"go.uber.org/zap"

	"libsense_backend/internals/logger"
)

type Attachment struct {
	Filename string
	Content  []byte
}

// Mailer delivers a finished report. The SMTP/provider wiring lives behind
// this boundary so the scheduler and controller never care how mail goes out.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, body string, attachments []Attachment) error
}

// LogMailer records deliveries instead of sending them; the default when no
// mail provider is configured.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, to []string, subject, _ string, attachments []Attachment) error {
	names := make([]string, 0, len(attachments))
	for _, a := range attachments {
		names = append(names, a.Filename)
	}
	logger.Log.Info("report delivery skipped, no mailer configured",
		zap.Strings("to", to),
		zap.String("subject", subject),
		zap.Strings("attachments", names),
	)
	return nil
}
