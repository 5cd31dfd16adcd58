// file: internals/features/presets/controller/preset_controller.go
package controller

import (
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"libsense_backend/internals/features/presets/dto"
	"libsense_backend/internals/features/presets/model"
	helper "libsense_backend/internals/helpers"
)

type PresetController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewPresetController(db *gorm.DB) *PresetController {
	return &PresetController{DB: db, Validate: validator.New()}
}

// List returns the caller's own presets.
func (ctrl *PresetController) List(c *fiber.Ctx) error {
	owner, _ := c.Locals("username").(string)

	var presets []model.PresetModel
	if err := ctrl.DB.Where("owner = ?", owner).Order("name").Find(&presets).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	out := make([]dto.PresetResponse, 0, len(presets))
	for _, p := range presets {
		out = append(out, dto.PresetResponse{ID: p.ID, Name: p.Name, Query: []byte(p.Query)})
	}
	return helper.JsonOK(c, "OK", out)
}

// Save creates a preset, or replaces the caller's preset of the same name.
func (ctrl *PresetController) Save(c *fiber.Ctx) error {
	var req dto.SavePresetRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	owner, _ := c.Locals("username").(string)

	raw, err := sonic.Marshal(req.Query)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "query is not serializable")
	}

	preset := model.PresetModel{Name: req.Name, Owner: owner, Query: string(raw)}
	err = ctrl.DB.Transaction(func(tx *gorm.DB) error {
		var existing model.PresetModel
		res := tx.Where("owner = ? AND name = ?", owner, req.Name).Limit(1).Find(&existing)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			preset.ID = existing.ID
			preset.CreatedAt = existing.CreatedAt
			return tx.Save(&preset).Error
		}
		return tx.Create(&preset).Error
	})
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonCreated(c, "preset saved", dto.PresetResponse{
		ID: preset.ID, Name: preset.Name, Query: raw,
	})
}

func (ctrl *PresetController) Delete(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id < 1 {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid preset id")
	}
	owner, _ := c.Locals("username").(string)

	res := ctrl.DB.Delete(&model.PresetModel{}, "id = ? AND owner = ?", id, owner)
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "preset not found")
	}
	return helper.JsonDeleted(c, "preset deleted", fiber.Map{"id": id})
}
