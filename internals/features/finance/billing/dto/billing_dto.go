// file: internals/features/finance/billing/dto/billing_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"ktx_backend/internals/features/finance/billing/model"
)

/* ===================== Requests ===================== */

type UtilityReadingItem struct {
	RoomID        uuid.UUID `json:"room_id" validate:"required"`
	ElectricIndex float64   `json:"electric_index" validate:"gte=0"`
	WaterIndex    float64   `json:"water_index" validate:"gte=0"`
}

type RecordUtilityBatchRequest struct {
	Month    int                  `json:"month" validate:"required,min=1,max=12"`
	Year     int                  `json:"year" validate:"required,min=2020"`
	Readings []UtilityReadingItem `json:"readings" validate:"required,min=1,dive"`
}

type GenerateMonthlyInvoicesRequest struct {
	Month int `json:"month" validate:"required,min=1,max=12"`
	Year  int `json:"year" validate:"required,min=2020"`
}

type CancelInvoiceRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type UpdateUtilityConfigRequest struct {
	Type         string  `json:"type" validate:"required,oneof=DIEN NUOC"`
	PricePerUnit float64 `json:"price_per_unit" validate:"required,gt=0"`
}

/* ===================== Responses ===================== */

type InvoiceResponse struct {
	InvoiceID       uuid.UUID      `json:"invoice_id"`
	ContractID      *uuid.UUID     `json:"contract_id,omitempty"`
	RoomID          *uuid.UUID     `json:"room_id,omitempty"`
	Title           *string        `json:"title,omitempty"`
	TotalAmount     float64        `json:"total_amount"`
	PaidAmount      float64        `json:"paid_amount"`
	RemainingAmount float64        `json:"remaining_amount"`
	Status          string         `json:"status"`
	DueDate         *time.Time     `json:"due_date,omitempty"`
	Details         datatypes.JSON `json:"details,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

func ToInvoiceResponse(m *model.Invoice) InvoiceResponse {
	return InvoiceResponse{
		InvoiceID:       m.InvoiceID,
		ContractID:      m.InvoiceContractID,
		RoomID:          m.InvoiceRoomID,
		Title:           m.InvoiceTitle,
		TotalAmount:     m.InvoiceTotalAmount,
		PaidAmount:      m.InvoicePaidAmount,
		RemainingAmount: m.InvoiceRemainingAmount,
		Status:          m.InvoiceStatus,
		DueDate:         m.InvoiceDueDate,
		Details:         m.InvoiceDetails,
		CreatedAt:       m.CreatedAt,
	}
}

func ToInvoiceResponses(ms []model.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, 0, len(ms))
	for i := range ms {
		out = append(out, ToInvoiceResponse(&ms[i]))
	}
	return out
}

type GenerateInvoicesResponse struct {
	Month           int `json:"month"`
	Year            int `json:"year"`
	UtilityCreated  int `json:"utility_created"`
	PersonalCreated int `json:"personal_created"`
	Skipped         int `json:"skipped"`
}
