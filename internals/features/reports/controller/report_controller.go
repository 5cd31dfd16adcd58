// file: internals/features/reports/controller/report_controller.go
package controller

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"libsense_backend/internals/configs"
	orderService "libsense_backend/internals/features/orders/service"
	reportService "libsense_backend/internals/features/reports/service"
	helper "libsense_backend/internals/helpers"
)

type ReportController struct {
	Builder   *reportService.Builder
	Scheduler *reportService.Scheduler
	Settings  configs.SettingsProvider
}

func NewReportController(db *gorm.DB, settings configs.SettingsProvider, mailer reportService.Mailer) *ReportController {
	builder := reportService.NewBuilder(orderService.NewReportService(db, settings))
	return &ReportController{
		Builder:   builder,
		Scheduler: reportService.NewScheduler(builder, mailer, settings, 0),
		Settings:  settings,
	}
}

// Download streams one report as a CSV attachment.
func (ctrl *ReportController) Download(c *fiber.Ctx) error {
	kind := reportService.ReportType(c.Params("kind"))
	content, filename, err := ctrl.Builder.BuildCSV(kind)
	if err != nil {
		if errors.Is(err, reportService.ErrUnknownReport) {
			return helper.JsonError(c, fiber.StatusNotFound, err.Error())
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Send(content)
}

// Send mails one report to the configured recipients right now.
func (ctrl *ReportController) Send(c *fiber.Ctx) error {
	kind := reportService.ReportType(c.Params("kind"))
	recipients := ctrl.Settings.Current().ReportRecipients
	if len(recipients) == 0 {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, "no report recipients configured")
	}
	if err := ctrl.Scheduler.Send(c.Context(), kind, recipients); err != nil {
		if errors.Is(err, reportService.ErrUnknownReport) {
			return helper.JsonError(c, fiber.StatusNotFound, err.Error())
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, "report sent", fiber.Map{"report": kind, "recipients": recipients})
}
