// file: internals/features/dorm/contracts/dto/contract_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	"ktx_backend/internals/features/dorm/contracts/model"
)

/* ===================== Requests ===================== */

// BookBedRequest: sinh viên tự đặt (student_id lấy từ token) hoặc
// admin đặt hộ (student_id truyền trong body). Ngày bắt đầu do server
// chốt lúc đặt, không nhận từ client.
type BookBedRequest struct {
	StudentID *uuid.UUID `json:"student_id" validate:"omitempty"`
	BedID     uuid.UUID  `json:"bed_id" validate:"required"`
	EndDate   time.Time  `json:"end_date" validate:"required"`
}

type UpdateContractStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=CHO_DUYET DANG_O HET_HAN CHAM_DUT"`
}

type LiquidateContractRequest struct {
	PenaltyAmount float64 `json:"penalty_amount" validate:"gte=0"`
	DamageFee     float64 `json:"damage_fee" validate:"gte=0"`
	Notes         *string `json:"notes" validate:"omitempty,max=1000"`
}

/* ===================== Responses ===================== */

type ContractResponse struct {
	ContractID    uuid.UUID `json:"contract_id"`
	StudentID     uuid.UUID `json:"student_id"`
	BedID         uuid.UUID `json:"bed_id"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	PricePerMonth float64   `json:"price_per_month"`
	DepositAmount float64   `json:"deposit_amount"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

func ToContractResponse(m *model.Contract) ContractResponse {
	return ContractResponse{
		ContractID:    m.ContractID,
		StudentID:     m.ContractStudentID,
		BedID:         m.ContractBedID,
		StartDate:     m.ContractStartDate,
		EndDate:       m.ContractEndDate,
		PricePerMonth: m.ContractPricePerMonth,
		DepositAmount: m.ContractDepositAmount,
		Status:        m.ContractStatus,
		CreatedAt:     m.CreatedAt,
	}
}

func ToContractResponses(ms []model.Contract) []ContractResponse {
	out := make([]ContractResponse, 0, len(ms))
	for i := range ms {
		out = append(out, ToContractResponse(&ms[i]))
	}
	return out
}

type LiquidationResponse struct {
	LiquidationID        uuid.UUID `json:"liquidation_id"`
	ContractID           uuid.UUID `json:"contract_id"`
	LiquidationDate      time.Time `json:"liquidation_date"`
	RefundDepositAmount  float64   `json:"refund_deposit_amount"`
	PenaltyAmount        float64   `json:"penalty_amount"`
	DamageFee            float64   `json:"damage_fee"`
	TotalRefundToStudent float64   `json:"total_refund_to_student"`
	Notes                *string   `json:"notes,omitempty"`
	ConfirmedBy          uuid.UUID `json:"confirmed_by"`
}

func ToLiquidationResponse(m *model.LiquidationRecord) LiquidationResponse {
	return LiquidationResponse{
		LiquidationID:        m.LiquidationID,
		ContractID:           m.LiquidationContractID,
		LiquidationDate:      m.LiquidationDate,
		RefundDepositAmount:  m.LiquidationRefundDepositAmount,
		PenaltyAmount:        m.LiquidationPenaltyAmount,
		DamageFee:            m.LiquidationDamageFee,
		TotalRefundToStudent: m.LiquidationTotalRefundToStudent,
		Notes:                m.LiquidationNotes,
		ConfirmedBy:          m.LiquidationConfirmedBy,
	}
}
