package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* ===================== Enums (string) ===================== */

const (
	TransferStatusPending  = "CHO_DUYET"
	TransferStatusApproved = "DA_DUYET"
	TransferStatusRejected = "TU_CHOI"
)

/* ===================== Model ===================== */

type TransferRequest struct {
	TransferID uuid.UUID `gorm:"column:transfer_id;type:uuid;primaryKey" json:"transfer_id"`

	TransferStudentID  uuid.UUID `gorm:"column:transfer_student_id;type:uuid;not null;index" json:"transfer_student_id"`
	TransferContractID uuid.UUID `gorm:"column:transfer_contract_id;type:uuid;not null;index" json:"transfer_contract_id"`

	TransferTargetBedID *uuid.UUID `gorm:"column:transfer_target_bed_id;type:uuid" json:"transfer_target_bed_id,omitempty"`
	TransferReason      string     `gorm:"column:transfer_reason;type:text;not null" json:"transfer_reason"`

	TransferAdminResponse *string `gorm:"column:transfer_admin_response;type:text" json:"transfer_admin_response,omitempty"`
	TransferStatus        string  `gorm:"column:transfer_status;type:varchar(12);not null;default:'CHO_DUYET'" json:"transfer_status"`

	CreatedAt time.Time `gorm:"column:transfer_created_at;autoCreateTime" json:"transfer_created_at"`
	UpdatedAt time.Time `gorm:"column:transfer_updated_at;autoUpdateTime" json:"transfer_updated_at"`
}

func (TransferRequest) TableName() string { return "transfer_requests" }

func (m *TransferRequest) BeforeCreate(tx *gorm.DB) error {
	if m.TransferID == uuid.Nil {
		m.TransferID = uuid.New()
	}
	return nil
}
