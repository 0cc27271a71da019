package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/beautyshop/backend/internal/hash"
	"github.com/beautyshop/backend/internal/logging"
	"github.com/beautyshop/backend/internal/mail"
	authmw "github.com/beautyshop/backend/internal/middleware/auth"
	"github.com/beautyshop/backend/internal/models"
	"github.com/beautyshop/backend/internal/mykafka"
)

type UserHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	Mailer   *mail.Mailer
}

func (h *UserHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "user_events", key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}

func (h *UserHandler) Me(c echo.Context) error {
	_, userID, err := authmw.MustClaims(c)
	if err != nil {
		return err
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) ChangePassword(c echo.Context) error {
	_, userID, err := authmw.MustClaims(c)
	if err != nil {
		return err
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "current and new password are required")
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if !hash.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		return echo.NewHTTPError(http.StatusUnauthorized, "current password is incorrect")
	}

	pwHash, err := hash.HashPassword(req.NewPassword)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if err := h.DB.Model(&user).Update("password_hash", pwHash).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

func (h *UserHandler) ListUsers(c echo.Context) error {
	var users []models.User
	if err := h.DB.Order("id ASC").Find(&users).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, users)
}

// DeleteUser removes the account and its cart in one transaction.
// Orders are detached (user_id set to NULL) so purchase and invoice
// history survives the deletion.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Order{}).Where("user_id = ?", user.ID).Update("user_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if txErr != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, fmt.Sprint(user.ID), map[string]any{
		"type":   "user_deleted",
		"userID": user.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}

func (h *UserHandler) ToggleBlock(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user.Blocked = !user.Blocked
	if err := h.DB.Model(&user).Update("blocked", user.Blocked).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.Mailer.SendAccountStatus(user.Email, user.Username, user.Blocked)
	h.publish(c, fmt.Sprint(user.ID), map[string]any{
		"type":    "user_block_toggled",
		"userID":  user.ID,
		"blocked": user.Blocked,
	})

	return c.JSON(http.StatusOK, user)
}

// RegisterOrderManager promotes an existing account in place, or
// creates a new one with a generated one-time password. Either way
// the address ends up with the order_manager role.
func (h *UserHandler) RegisterOrderManager(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Username string `json:"username"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email is required")
	}

	var user models.User
	err := h.DB.Where("email = ?", req.Email).First(&user).Error
	switch {
	case err == nil:
		if user.Role != models.RoleOrderManager {
			if err := h.DB.Model(&user).Update("role", models.RoleOrderManager).Error; err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
			}
			user.Role = models.RoleOrderManager
		}
		h.Mailer.SendManagerInvite(user.Email, user.Username, "")
		h.publish(c, fmt.Sprint(user.ID), map[string]any{
			"type":   "user_promoted",
			"userID": user.ID,
		})
		return c.JSON(http.StatusOK, echo.Map{"user": user, "created": false})

	case errors.Is(err, gorm.ErrRecordNotFound):
		username := req.Username
		if username == "" {
			username = strings.SplitN(req.Email, "@", 2)[0]
		}

		oneTime, err := generatePassword()
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		pwHash, err := hash.HashPassword(oneTime)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}

		user = models.User{
			Username:     username,
			Email:        req.Email,
			PasswordHash: pwHash,
			Role:         models.RoleOrderManager,
		}
		if err := h.DB.Create(&user).Error; err != nil {
			return echo.NewHTTPError(http.StatusConflict, "username already exists")
		}

		h.Mailer.SendManagerInvite(user.Email, user.Username, oneTime)
		h.publish(c, fmt.Sprint(user.ID), map[string]any{
			"type":   "manager_created",
			"userID": user.ID,
		})
		return c.JSON(http.StatusCreated, echo.Map{"user": user, "created": true})

	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func generatePassword() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
