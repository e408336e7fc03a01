// file: internals/features/finance/payments/dto/payment_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	"ktx_backend/internals/features/finance/payments/model"
)

/* ===================== Requests ===================== */

// RecordPaymentRequest: thu ngân ghi nhận tiền mặt / chuyển khoản.
type RecordPaymentRequest struct {
	InvoiceID     uuid.UUID `json:"invoice_id" validate:"required"`
	Amount        float64   `json:"amount" validate:"required,gt=0"`
	Method        string    `json:"method" validate:"required,oneof=TIEN_MAT CHUYEN_KHOAN ONLINE NGAN_HANG_AO"`
	TransactionID *string   `json:"transaction_id" validate:"omitempty,max=80"`
}

type CreatePaymentURLRequest struct {
	InvoiceID uuid.UUID `json:"invoice_id" validate:"required"`
}

/* ===================== Responses ===================== */

type PaymentResponse struct {
	PaymentID     uuid.UUID `json:"payment_id"`
	InvoiceID     uuid.UUID `json:"invoice_id"`
	Amount        float64   `json:"amount"`
	Method        string    `json:"method"`
	TransactionID *string   `json:"transaction_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func ToPaymentResponse(m *model.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:     m.PaymentID,
		InvoiceID:     m.PaymentInvoiceID,
		Amount:        m.PaymentAmount,
		Method:        m.PaymentMethod,
		TransactionID: m.PaymentTransactionID,
		CreatedAt:     m.CreatedAt,
	}
}

func ToPaymentResponses(ms []model.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(ms))
	for i := range ms {
		out = append(out, ToPaymentResponse(&ms[i]))
	}
	return out
}
