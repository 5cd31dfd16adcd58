// file: internals/features/vendors/controller/vendor_controller.go
package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"libsense_backend/internals/features/vendors/dto"
	"libsense_backend/internals/features/vendors/model"
	helper "libsense_backend/internals/helpers"
)

type VendorController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewVendorController(db *gorm.DB) *VendorController {
	return &VendorController{DB: db, Validate: validator.New()}
}

func (ctrl *VendorController) List(c *fiber.Ctx) error {
	var vendors []model.VendorModel
	if err := ctrl.DB.Order("vendor_code").Find(&vendors).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	out := make([]dto.VendorResponse, 0, len(vendors))
	for _, v := range vendors {
		out = append(out, dto.VendorResponse{VendorCode: v.VendorCode, NotifyIn: v.NotifyIn, Local: v.Local})
	}
	return helper.JsonOK(c, "OK", out)
}

func (ctrl *VendorController) Upsert(c *fiber.Ctx) error {
	var req dto.VendorRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	vendor := model.VendorModel{VendorCode: req.VendorCode, NotifyIn: req.NotifyIn, Local: req.Local}
	if err := ctrl.DB.Save(&vendor).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonUpdated(c, "vendor saved", dto.VendorResponse{
		VendorCode: vendor.VendorCode, NotifyIn: vendor.NotifyIn, Local: vendor.Local,
	})
}

func (ctrl *VendorController) Delete(c *fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "missing vendor code")
	}

	err := ctrl.DB.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Table("nyc_orders").Where("vendor_code = ?", code).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return errVendorInUse
		}
		res := tx.Delete(&model.VendorModel{}, "vendor_code = ?", code)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	switch {
	case errors.Is(err, errVendorInUse):
		return helper.JsonError(c, fiber.StatusConflict, "vendor still has orders")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "vendor not found")
	case err != nil:
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonDeleted(c, "vendor deleted", fiber.Map{"vendorCode": code})
}

var errVendorInUse = errors.New("vendor still referenced by orders")
