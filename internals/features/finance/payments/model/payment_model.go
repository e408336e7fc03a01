package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* ===================== Enums (string) ===================== */

const (
	PaymentMethodCash         = "TIEN_MAT"
	PaymentMethodBankTransfer = "CHUYEN_KHOAN"
	PaymentMethodOnline       = "ONLINE"
	PaymentMethodVirtualBank  = "NGAN_HANG_AO"
)

/* ===================== Model ===================== */

// Payment là bản ghi bất biến của một lần thanh toán vào một hóa đơn.
// uniqueIndex trên transaction_id là cơ chế chống replay DUY NHẤT cho
// callback gateway (at-least-once): trùng id -> trả lại payment cũ.
type Payment struct {
	PaymentID        uuid.UUID `gorm:"column:payment_id;type:uuid;primaryKey" json:"payment_id"`
	PaymentInvoiceID uuid.UUID `gorm:"column:payment_invoice_id;type:uuid;not null;index" json:"payment_invoice_id"`

	PaymentAmount float64 `gorm:"column:payment_amount;not null" json:"payment_amount"`
	PaymentMethod string  `gorm:"column:payment_method;type:varchar(15);not null" json:"payment_method"`

	PaymentTransactionID *string `gorm:"column:payment_transaction_id;type:varchar(80);uniqueIndex" json:"payment_transaction_id,omitempty"`

	CreatedAt time.Time `gorm:"column:payment_created_at;autoCreateTime" json:"payment_created_at"`
}

func (Payment) TableName() string { return "payments" }

func (m *Payment) BeforeCreate(tx *gorm.DB) error {
	if m.PaymentID == uuid.Nil {
		m.PaymentID = uuid.New()
	}
	return nil
}
