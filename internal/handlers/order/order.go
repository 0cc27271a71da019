package order

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/beautyshop/backend/internal/logging"
	"github.com/beautyshop/backend/internal/mail"
	authmw "github.com/beautyshop/backend/internal/middleware/auth"
	"github.com/beautyshop/backend/internal/models"
	"github.com/beautyshop/backend/internal/mykafka"
)

type OrderHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	Mailer   *mail.Mailer
}

func (h *OrderHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "order_events", key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}

// Checkout turns the cart into an order, its items, and an invoice in
// one transaction. The confirmation mail goes out only after commit
// and its outcome never changes the response.
func (h *OrderHandler) Checkout(c echo.Context) error {
	_, userID, err := authmw.MustClaims(c)
	if err != nil {
		return err
	}

	var req struct {
		DeliveryAddress string  `json:"delivery_address"`
		BillingInfo     string  `json:"billing_info"`
		Shipping        float64 `json:"shipping"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Shipping < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "shipping must be >= 0")
	}

	var (
		ord      models.Order
		invoice  *models.Invoice
		subtotal float64
	)

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var items []models.CartItem
		if err := tx.Preload("Product").Where("user_id = ?", userID).Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "cart is empty")
		}

		for _, it := range items {
			if it.Product == nil {
				return echo.NewHTTPError(http.StatusBadRequest, "product not found")
			}
			subtotal += it.Product.Price * float64(it.Quantity)
		}

		uid := userID
		ord = models.Order{
			UserID:          &uid,
			Status:          models.OrderStatusPending,
			TotalPrice:      subtotal + req.Shipping,
			ShippingFee:     req.Shipping,
			DeliveryAddress: req.DeliveryAddress,
			BillingInfo:     req.BillingInfo,
		}
		if err := tx.Create(&ord).Error; err != nil {
			return err
		}

		orderItems := make([]models.OrderItem, 0, len(items))
		for _, it := range items {
			orderItems = append(orderItems, models.OrderItem{
				OrderID:      ord.ID,
				ProductID:    it.ProductID,
				Quantity:     it.Quantity,
				PriceAtOrder: it.Product.Price,
			})
		}
		if err := tx.Create(&orderItems).Error; err != nil {
			return err
		}
		ord.Items = orderItems

		if err := tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}

		invoice, err = createInvoice(tx, ord.ID)
		return err
	})
	if txErr != nil {
		var he *echo.HTTPError
		if errors.As(txErr, &he) {
			return he
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	ord.Invoice = invoice

	var user models.User
	if err := h.DB.First(&user, userID).Error; err == nil {
		h.Mailer.SendOrderConfirmation(user.Email, user.Username, ord.ID, invoice.InvoiceNumber, ord.TotalPrice)
	} else {
		logging.FromContext(c.Request().Context()).Error("order confirmation skipped", "orderID", ord.ID, "error", err)
	}

	h.publish(c, fmt.Sprint(ord.ID), map[string]any{
		"type":    "order_created",
		"userID":  userID,
		"orderID": ord.ID,
		"total":   ord.TotalPrice,
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"order":          ord,
		"invoice_number": invoice.InvoiceNumber,
		"breakdown": echo.Map{
			"subtotal": subtotal,
			"shipping": ord.ShippingFee,
			"total":    ord.TotalPrice,
		},
	})
}

// ListOrders returns every order for admins (optionally filtered by a
// case-insensitive substring on status) and only the caller's own
// orders otherwise, newest first.
func (h *OrderHandler) ListOrders(c echo.Context) error {
	claims, userID, err := authmw.MustClaims(c)
	if err != nil {
		return err
	}

	q := h.DB.Preload("Items").Preload("Invoice")
	if claims.Role == models.RoleAdmin {
		if status := c.QueryParam("status"); status != "" {
			q = q.Where("LOWER(status) LIKE ?", "%"+strings.ToLower(status)+"%")
		}
	} else {
		q = q.Where("user_id = ?", userID)
	}

	var orders []models.Order
	if err := q.Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, orders)
}

// GetOrder hides orders the caller does not own behind a 404 so that
// existence is never revealed to non-owners.
func (h *OrderHandler) GetOrder(c echo.Context) error {
	claims, userID, err := authmw.MustClaims(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	q := h.DB.Preload("Items.Product").Preload("Invoice").Where("id = ?", id)
	if claims.Role != models.RoleAdmin {
		q = q.Where("user_id = ?", userID)
	}

	var ord models.Order
	if err := q.First(&ord).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, ord)
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	status := strings.ToLower(req.Status)
	if !models.OrderStatuses[status] {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown status")
	}

	var ord models.Order
	if err := h.DB.First(&ord, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	ord.Status = status
	if err := h.DB.Model(&ord).Update("status", status).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, fmt.Sprint(ord.ID), map[string]any{
		"type":    "order_status_updated",
		"orderID": ord.ID,
		"status":  status,
	})

	return c.JSON(http.StatusOK, ord)
}

// GetInvoice renders the invoice projection with its line items at
// their recorded order-time prices.
func (h *OrderHandler) GetInvoice(c echo.Context) error {
	claims, userID, err := authmw.MustClaims(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	q := h.DB.Preload("Items.Product").Preload("Invoice").Where("id = ?", id)
	if claims.Role != models.RoleAdmin {
		q = q.Where("user_id = ?", userID)
	}

	var ord models.Order
	if err := q.First(&ord).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if ord.Invoice == nil {
		return echo.NewHTTPError(http.StatusNotFound, "invoice not found")
	}

	type invoiceLine struct {
		ProductName string  `json:"product_name"`
		Quantity    uint    `json:"quantity"`
		UnitPrice   float64 `json:"unit_price"`
		Total       float64 `json:"total"`
	}

	lines := make([]invoiceLine, 0, len(ord.Items))
	for _, it := range ord.Items {
		name := ""
		if it.Product != nil {
			name = it.Product.Name
		}
		lines = append(lines, invoiceLine{
			ProductName: name,
			Quantity:    it.Quantity,
			UnitPrice:   it.PriceAtOrder,
			Total:       it.PriceAtOrder * float64(it.Quantity),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"invoice_number": ord.Invoice.InvoiceNumber,
		"order_id":       ord.ID,
		"order_date":     ord.CreatedAt.Format("2006-01-02"),
		"issued_at":      ord.Invoice.IssuedAt,
		"pdf_url":        ord.Invoice.PDFURL,
		"items":          lines,
		"shipping":       ord.ShippingFee,
		"total_amount":   ord.TotalPrice,
		"status":         ord.Status,
	})
}
