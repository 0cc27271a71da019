package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/beautyshop/backend/internal/hash"
	"github.com/beautyshop/backend/internal/logging"
	"github.com/beautyshop/backend/internal/mail"
	authmw "github.com/beautyshop/backend/internal/middleware/auth"
	"github.com/beautyshop/backend/internal/models"
	"github.com/beautyshop/backend/internal/mykafka"
	"github.com/beautyshop/backend/internal/tokens"
)

type AuthHandler struct {
	DB        *gorm.DB
	JWTSecret []byte
	TokenTTL  time.Duration
	Producer  *mykafka.Producer
	Mailer    *mail.Mailer
}

func (h *AuthHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "user_events", key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}
	if req.Username == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username is required")
	}

	role := req.Role
	if role == "" {
		role = models.RoleCustomer
	}
	if role != models.RoleCustomer && role != models.RoleOrderManager && role != models.RoleAdmin {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown role")
	}

	var existing models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return echo.NewHTTPError(http.StatusConflict, "email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if err := h.DB.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		return echo.NewHTTPError(http.StatusConflict, "username already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: pwHash,
		Role:         role,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	token, err := tokens.SignAccessToken(user.ID, user.Role, h.JWTSecret, h.TokenTTL)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.Mailer.SendWelcome(user.Email, user.Username)
	h.publish(c, fmt.Sprint(user.ID), map[string]any{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"user":         user,
		"access_token": token,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email or password is missing")
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "email or password is incorrect")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "email or password is incorrect")
	}
	if user.Blocked {
		return echo.NewHTTPError(http.StatusForbidden, "account is blocked")
	}

	token, err := tokens.SignAccessToken(user.ID, user.Role, h.JWTSecret, h.TokenTTL)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, fmt.Sprint(user.ID), map[string]any{
		"type":     "user_logged_in",
		"userID":   user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"user":         user,
		"access_token": token,
	})
}

// Logout appends the token's jti to the blocklist. A jti that is
// already present means the token was revoked before: the call stays
// idempotent and still reports success.
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, userID, err := authmw.MustClaims(c)
	if err != nil {
		return err
	}

	entry := models.TokenBlocklist{JTI: claims.ID}
	if err := h.DB.Create(&entry).Error; err != nil {
		var count int64
		if cErr := h.DB.Model(&models.TokenBlocklist{}).Where("jti = ?", claims.ID).Count(&count).Error; cErr == nil && count > 0 {
			return c.JSON(http.StatusOK, echo.Map{"message": "already logged out"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, fmt.Sprint(userID), map[string]any{
		"type":   "user_logged_out",
		"userID": userID,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "successfully logged out"})
}
