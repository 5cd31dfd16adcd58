// file: internals/features/users/controller/auth_controller.go
package controller

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"libsense_backend/internals/configs"
	"libsense_backend/internals/features/users/dto"
	"libsense_backend/internals/features/users/model"
	helper "libsense_backend/internals/helpers"
	"libsense_backend/internals/logger"
	"libsense_backend/internals/middlewares"
)

const tokenTTL = 12 * time.Hour

type AuthController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db, Validate: validator.New()}
}

func (ctrl *AuthController) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	var user model.UserModel
	if err := ctrl.DB.First(&user, "username = ?", req.Username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusUnauthorized, "wrong username or password")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		logger.Log.Warn("failed login attempt", zap.String("username", req.Username), zap.String("ip", c.IP()))
		return helper.JsonError(c, fiber.StatusUnauthorized, "wrong username or password")
	}

	token, err := issueToken(user)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "could not issue token")
	}

	c.Cookie(&fiber.Cookie{
		Name:     middlewares.AccessTokenCookie,
		Value:    token,
		Expires:  time.Now().Add(tokenTTL),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return helper.JsonOK(c, "login successful", dto.LoginResponse{
		Username:    user.Username,
		Role:        user.Role,
		AccessToken: token,
	})
}

func (ctrl *AuthController) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middlewares.AccessTokenCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return helper.JsonOK(c, "logged out", nil)
}

// Me echoes the authenticated identity, used by the frontend on reload.
func (ctrl *AuthController) Me(c *fiber.Ctx) error {
	username, _ := c.Locals("username").(string)
	role, _ := c.Locals("role").(string)
	return helper.JsonOK(c, "OK", dto.UserResponse{Username: username, Role: role})
}

func issueToken(user model.UserModel) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.Username,
		"role": user.Role,
		"exp":  time.Now().Add(tokenTTL).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(configs.JWTSecret))
}
