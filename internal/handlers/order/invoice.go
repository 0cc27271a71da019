package order

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/beautyshop/backend/internal/models"
)

const invoiceAttempts = 5

// newInvoiceNumber builds an INV-{yyyymmdd}-{6 hex} identifier.
func newInvoiceNumber(now time.Time) (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%s-%s", now.Format("20060102"), hex.EncodeToString(buf)), nil
}

// createInvoice inserts the order's invoice, retrying number
// generation on collision. The unique index on invoice_number is the
// final guard: a duplicate never gets through silently.
func createInvoice(tx *gorm.DB, orderID uint) (*models.Invoice, error) {
	now := time.Now().UTC()

	for i := 0; i < invoiceAttempts; i++ {
		number, err := newInvoiceNumber(now)
		if err != nil {
			return nil, err
		}

		var count int64
		if err := tx.Model(&models.Invoice{}).Where("invoice_number = ?", number).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			continue
		}

		inv := models.Invoice{
			InvoiceNumber: number,
			OrderID:       orderID,
			IssuedAt:      now,
			PDFURL:        fmt.Sprintf("/invoices/%d.pdf", orderID),
		}
		if err := tx.Create(&inv).Error; err != nil {
			return nil, err
		}
		return &inv, nil
	}

	return nil, fmt.Errorf("could not generate a unique invoice number after %d attempts", invoiceAttempts)
}
