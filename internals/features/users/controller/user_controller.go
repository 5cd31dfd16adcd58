// file: internals/features/users/controller/user_controller.go
package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"libsense_backend/internals/features/users/dto"
	"libsense_backend/internals/features/users/model"
	helper "libsense_backend/internals/helpers"
)

type UserController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db, Validate: validator.New()}
}

func (ctrl *UserController) List(c *fiber.Ctx) error {
	var users []model.UserModel
	if err := ctrl.DB.Order("username").Find(&users).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, dto.UserResponse{Username: u.Username, Role: u.Role})
	}
	return helper.JsonOK(c, "OK", out)
}

func (ctrl *UserController) Create(c *fiber.Ctx) error {
	var req dto.NewUserRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "could not hash password")
	}
	user := model.UserModel{Username: req.Username, Password: string(hash), Role: req.Role}
	if err := ctrl.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return helper.JsonError(c, fiber.StatusConflict, "username already exists")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonCreated(c, "user created", dto.UserResponse{Username: user.Username, Role: user.Role})
}

func (ctrl *UserController) Delete(c *fiber.Ctx) error {
	username := c.Params("username")
	if username == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "missing username")
	}
	if me, _ := c.Locals("username").(string); me == username {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, "cannot delete your own account")
	}

	res := ctrl.DB.Delete(&model.UserModel{}, "username = ?", username)
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "user not found")
	}
	return helper.JsonDeleted(c, "user deleted", fiber.Map{"username": username})
}
