// file: internals/features/dorm/transfers/dto/transfer_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	"ktx_backend/internals/features/dorm/transfers/model"
)

/* ===================== Requests ===================== */

type CreateTransferRequest struct {
	TargetBedID *uuid.UUID `json:"target_bed_id" validate:"omitempty"`
	Reason      string     `json:"reason" validate:"required,min=10,max=1000"`
}

type ReviewTransferRequest struct {
	TargetBedID   *uuid.UUID `json:"target_bed_id" validate:"omitempty"`
	AdminResponse *string    `json:"admin_response" validate:"omitempty,max=1000"`
}

/* ===================== Responses ===================== */

type TransferResponse struct {
	TransferID    uuid.UUID  `json:"transfer_id"`
	StudentID     uuid.UUID  `json:"student_id"`
	ContractID    uuid.UUID  `json:"contract_id"`
	TargetBedID   *uuid.UUID `json:"target_bed_id,omitempty"`
	Reason        string     `json:"reason"`
	AdminResponse *string    `json:"admin_response,omitempty"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
}

func ToTransferResponse(m *model.TransferRequest) TransferResponse {
	return TransferResponse{
		TransferID:    m.TransferID,
		StudentID:     m.TransferStudentID,
		ContractID:    m.TransferContractID,
		TargetBedID:   m.TransferTargetBedID,
		Reason:        m.TransferReason,
		AdminResponse: m.TransferAdminResponse,
		Status:        m.TransferStatus,
		CreatedAt:     m.CreatedAt,
	}
}

func ToTransferResponses(ms []model.TransferRequest) []TransferResponse {
	out := make([]TransferResponse, 0, len(ms))
	for i := range ms {
		out = append(out, ToTransferResponse(&ms[i]))
	}
	return out
}
