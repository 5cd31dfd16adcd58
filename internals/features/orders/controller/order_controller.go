// file: internals/features/orders/controller/order_controller.go
package controller

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"libsense_backend/internals/configs"
	"libsense_backend/internals/features/orders/dto"
	"libsense_backend/internals/features/orders/service"
	helper "libsense_backend/internals/helpers"
	"libsense_backend/internals/helpers/query"
)

type OrderController struct {
	DB       *gorm.DB
	Reports  *service.ReportService
	Orders   *service.OrderService
	Settings configs.SettingsProvider
	Validate *validator.Validate
}

func NewOrderController(db *gorm.DB, settings configs.SettingsProvider) *OrderController {
	return &OrderController{
		DB:       db,
		Reports:  service.NewReportService(db, settings),
		Orders:   service.NewOrderService(db),
		Settings: settings,
		Validate: validator.New(),
	}
}

// Query serves every paged order view. The views block in the request
// selects which report shape runs; everything else is the shared
// filter/sort/fuzzy language.
func (ctrl *OrderController) Query(c *fiber.Ctx) error {
	var req dto.PageableOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	rows, total, err := ctrl.Reports.Query(req)
	if err != nil {
		return queryError(c, err)
	}
	return helper.JsonPage(c, req.PageIndex, req.PageSize, total, rows)
}

func (ctrl *OrderController) GetByID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id < 1 {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid order id")
	}
	row, err := ctrl.Orders.Detail(ctrl.Reports, id)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "order not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, "OK", row)
}

func (ctrl *OrderController) Patch(c *fiber.Ctx) error {
	var req dto.PatchOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	if err := ctrl.Orders.Patch(req, currentUsername(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			return helper.JsonError(c, fiber.StatusNotFound, "order not found")
		case errors.Is(err, service.ErrBarcodeNotFinalized):
			return helper.JsonError(c, fiber.StatusUnprocessableEntity, "barcode is not finalized yet")
		case errors.Is(err, service.ErrCheckAnywayNotEligible):
			return helper.JsonError(c, fiber.StatusUnprocessableEntity, "order is not eligible for check-anyway")
		default:
			return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
		}
	}
	return helper.JsonUpdated(c, "order updated", fiber.Map{"bookId": req.BookID})
}

func (ctrl *OrderController) SetChecked(c *fiber.Ctx) error {
	var req dto.CheckedRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	if err := ctrl.Orders.SetChecked(req); err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonUpdated(c, "checked flag updated", fiber.Map{"count": len(req.ID)})
}

func (ctrl *OrderController) SetAttention(c *fiber.Ctx) error {
	var req dto.AttentionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	if err := ctrl.Orders.SetAttention(req); err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonUpdated(c, "attention flag updated", fiber.Map{"count": len(req.ID)})
}

func (ctrl *OrderController) MarkCDL(c *fiber.Ctx) error {
	var req dto.NewCDLRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	if err := ctrl.Orders.MarkCDL(req.BookID); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "order not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonCreated(c, "order marked as CDL", fiber.Map{"bookId": req.BookID})
}

func (ctrl *OrderController) RemoveCDL(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id < 1 {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid order id")
	}
	if err := ctrl.Orders.RemoveCDL(id); err != nil {
		if errors.Is(err, service.ErrCDLNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "order has no CDL record")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonDeleted(c, "CDL record removed", fiber.Map{"bookId": id})
}

func (ctrl *OrderController) Overview(c *fiber.Ctx) error {
	ov, err := ctrl.Reports.Overview()
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, "OK", ov)
}

// PatchCDLCutoff moves the completed-scan window used by the average
// scan-day threshold. Admin only; the new value is persisted to the
// settings file so it survives restarts.
func (ctrl *OrderController) PatchCDLCutoff(c *fiber.Ctx) error {
	var req struct {
		CDLVendorCutoffDate string `json:"cdlVendorCutoffDate" validate:"required,datetime=2006-01-02"`
	}
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	err := ctrl.Settings.Update(func(s *configs.Settings) {
		s.CDLVendorCutoffDate = req.CDLVendorCutoffDate
	})
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonUpdated(c, "CDL cutoff updated", fiber.Map{
		"cdlVendorCutoffDate": req.CDLVendorCutoffDate,
	})
}

func queryError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, query.ErrUnknownColumn), errors.Is(err, query.ErrBadValue):
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	default:
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
}

func currentUsername(c *fiber.Ctx) string {
	if u, ok := c.Locals("username").(string); ok {
		return u
	}
	return ""
}
