// file: internals/features/reports/service/scheduler.go
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"libsense_backend/internals/configs"
	"libsense_backend/internals/logger"
)

// Scheduler mails the overdue reports on a fixed interval so staff get a
// morning digest without asking for it.
type Scheduler struct {
	Builder  *Builder
	Mailer   Mailer
	Settings configs.SettingsProvider
	Interval time.Duration
}

func NewScheduler(builder *Builder, mailer Mailer, settings configs.SettingsProvider, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Scheduler{Builder: builder, Mailer: mailer, Settings: settings, Interval: interval}
}

// Run blocks until the context is cancelled. A failed send is logged and
// retried on the next tick, never fatal.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Log.Debug("report scheduler is done")
			return
		case <-ticker.C:
			if err := s.SendAll(ctx); err != nil {
				logger.Log.Error("scheduled report run failed", zap.Error(err))
			}
		}
	}
}

// SendAll builds and mails every report type to the configured recipients.
func (s *Scheduler) SendAll(ctx context.Context) error {
	recipients := s.Settings.Current().ReportRecipients
	if len(recipients) == 0 {
		logger.Log.Info("no report recipients configured, skipping run")
		return nil
	}

	for _, kind := range []ReportType{ReportRushLocal, ReportCDLOrder, ReportShanghai} {
		if err := s.Send(ctx, kind, recipients); err != nil {
			return fmt.Errorf("send %s: %w", kind, err)
		}
	}
	return nil
}

func (s *Scheduler) Send(ctx context.Context, kind ReportType, to []string) error {
	content, filename, err := s.Builder.BuildCSV(kind)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("%s report %s", kind, time.Now().Format("2006-01-02"))
	body := fmt.Sprintf("Attached is the current %s report.", kind)
	return s.Mailer.Send(ctx, to, subject, body, []Attachment{{Filename: filename, Content: content}})
}
