// file: internals/features/finance/payments/service/payment_service.go
package service

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	billingModel "ktx_backend/internals/features/finance/billing/model"
	paymentModel "ktx_backend/internals/features/finance/payments/model"
)

// lockForUpdate khóa row bằng FOR UPDATE trên Postgres; sqlite (test)
// chạy một connection nên bỏ qua được.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func validMethod(method string) bool {
	switch method {
	case paymentModel.PaymentMethodCash,
		paymentModel.PaymentMethodBankTransfer,
		paymentModel.PaymentMethodOnline,
		paymentModel.PaymentMethodVirtualBank:
		return true
	}
	return false
}

// ProcessPayment ghi một lần thanh toán vào hóa đơn và cập nhật số dư.
// Idempotent theo transaction_id: callback gọi lại với cùng id nhận lại
// payment đã ghi, KHÔNG cộng tiền lần hai.
func ProcessPayment(ctx context.Context, db *gorm.DB, invoiceID uuid.UUID, amount float64, method string, transactionID *string) (*paymentModel.Payment, error) {
	if amount <= 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Số tiền thanh toán phải lớn hơn 0")
	}
	if !validMethod(method) {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Phương thức thanh toán không hợp lệ")
	}

	// replay check trước khi mở transaction
	if transactionID != nil && *transactionID != "" {
		if existing, err := findByTransactionID(ctx, db, *transactionID); err != nil {
			return nil, err
		} else if existing != nil {
			return existing, nil
		}
	}

	payment := paymentModel.Payment{
		PaymentInvoiceID:     invoiceID,
		PaymentAmount:        amount,
		PaymentMethod:        method,
		PaymentTransactionID: transactionID,
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoice billingModel.Invoice
		if err := lockForUpdate(tx).First(&invoice, "invoice_id = ?", invoiceID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fiber.NewError(fiber.StatusNotFound, "Hóa đơn không tồn tại")
			}
			return err
		}

		switch invoice.InvoiceStatus {
		case billingModel.InvoiceStatusCancelled:
			return fiber.NewError(fiber.StatusBadRequest, "Hóa đơn đã bị hủy")
		case billingModel.InvoiceStatusPaid:
			return fiber.NewError(fiber.StatusBadRequest, "Hóa đơn đã thanh toán đủ")
		}

		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		// nộp dư thì remaining kẹp về 0, phần dư không theo dõi
		paid := invoice.InvoicePaidAmount + amount
		remaining := invoice.InvoiceTotalAmount - paid
		status := billingModel.InvoiceStatusPartial
		if remaining <= 0 {
			remaining = 0
			status = billingModel.InvoiceStatusPaid
		}
		return tx.Model(&billingModel.Invoice{}).
			Where("invoice_id = ?", invoice.InvoiceID).
			Updates(map[string]any{
				"invoice_paid_amount":      paid,
				"invoice_remaining_amount": remaining,
				"invoice_status":           status,
			}).Error
	})
	if err != nil {
		// hai callback song song cùng transaction_id: bên thua unique
		// constraint đọc lại bản ghi của bên thắng (NGOÀI transaction đã hỏng)
		if err == gorm.ErrDuplicatedKey && transactionID != nil {
			if existing, ferr := findByTransactionID(ctx, db, *transactionID); ferr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}
	return &payment, nil
}

func findByTransactionID(ctx context.Context, db *gorm.DB, transactionID string) (*paymentModel.Payment, error) {
	var payment paymentModel.Payment
	err := db.WithContext(ctx).First(&payment, "payment_transaction_id = ?", transactionID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// ListPaymentsByInvoice: lịch sử thanh toán của một hóa đơn, cũ trước.
func ListPaymentsByInvoice(ctx context.Context, db *gorm.DB, invoiceID uuid.UUID) ([]paymentModel.Payment, error) {
	var payments []paymentModel.Payment
	err := db.WithContext(ctx).
		Where("payment_invoice_id = ?", invoiceID).
		Order("payment_created_at ASC").
		Find(&payments).Error
	return payments, err
}
