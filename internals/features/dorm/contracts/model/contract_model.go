package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* ===================== Enums (string) ===================== */

const (
	ContractStatusPending    = "CHO_DUYET"
	ContractStatusActive     = "DANG_O"
	ContractStatusExpired    = "HET_HAN"
	ContractStatusTerminated = "CHAM_DUT"
)

/* ===================== Model ===================== */

// Contract tham chiếu bed/student bằng FK thuần, không nhúng back-reference
// (đồ thị Room↔Bed↔Contract↔Invoice điều hướng qua lookup).
type Contract struct {
	ContractID uuid.UUID `gorm:"column:contract_id;type:uuid;primaryKey" json:"contract_id"`

	ContractStudentID uuid.UUID `gorm:"column:contract_student_id;type:uuid;not null;index" json:"contract_student_id"`
	ContractBedID     uuid.UUID `gorm:"column:contract_bed_id;type:uuid;not null;index" json:"contract_bed_id"`

	ContractStartDate time.Time `gorm:"column:contract_start_date;not null" json:"contract_start_date"`
	ContractEndDate   time.Time `gorm:"column:contract_end_date;not null" json:"contract_end_date"`

	ContractPricePerMonth float64 `gorm:"column:contract_price_per_month;not null" json:"contract_price_per_month"`
	ContractDepositAmount float64 `gorm:"column:contract_deposit_amount;not null;default:0" json:"contract_deposit_amount"`

	ContractStatus string `gorm:"column:contract_status;type:varchar(12);not null;default:'CHO_DUYET'" json:"contract_status"`

	CreatedAt time.Time `gorm:"column:contract_created_at;autoCreateTime" json:"contract_created_at"`
	UpdatedAt time.Time `gorm:"column:contract_updated_at;autoUpdateTime" json:"contract_updated_at"`
}

func (Contract) TableName() string { return "contracts" }

func (m *Contract) BeforeCreate(tx *gorm.DB) error {
	if m.ContractID == uuid.Nil {
		m.ContractID = uuid.New()
	}
	return nil
}

func (m *Contract) IsOpen() bool {
	return m.ContractStatus == ContractStatusPending || m.ContractStatus == ContractStatusActive
}

/* ===================== LiquidationRecord ===================== */

// LiquidationRecord 1-1 với hợp đồng CHAM_DUT qua thanh lý.
// total_refund CÓ THỂ ÂM: sinh viên còn nợ, hệ thống không tự thu —
// client phải đọc liquidation_total_refund_to_student như số có dấu.
type LiquidationRecord struct {
	LiquidationID         uuid.UUID `gorm:"column:liquidation_id;type:uuid;primaryKey" json:"liquidation_id"`
	LiquidationContractID uuid.UUID `gorm:"column:liquidation_contract_id;type:uuid;uniqueIndex;not null" json:"liquidation_contract_id"`

	LiquidationDate time.Time `gorm:"column:liquidation_date;not null" json:"liquidation_date"`

	LiquidationRefundDepositAmount float64 `gorm:"column:liquidation_refund_deposit_amount;not null;default:0" json:"liquidation_refund_deposit_amount"`
	LiquidationPenaltyAmount       float64 `gorm:"column:liquidation_penalty_amount;not null;default:0" json:"liquidation_penalty_amount"`
	LiquidationDamageFee           float64 `gorm:"column:liquidation_damage_fee;not null;default:0" json:"liquidation_damage_fee"`

	LiquidationTotalRefundToStudent float64 `gorm:"column:liquidation_total_refund_to_student;not null" json:"liquidation_total_refund_to_student"`

	LiquidationNotes       *string   `gorm:"column:liquidation_notes;type:text" json:"liquidation_notes,omitempty"`
	LiquidationConfirmedBy uuid.UUID `gorm:"column:liquidation_confirmed_by;type:uuid;not null" json:"liquidation_confirmed_by"`

	CreatedAt time.Time `gorm:"column:liquidation_created_at;autoCreateTime" json:"liquidation_created_at"`
}

func (LiquidationRecord) TableName() string { return "liquidation_records" }

func (m *LiquidationRecord) BeforeCreate(tx *gorm.DB) error {
	if m.LiquidationID == uuid.Nil {
		m.LiquidationID = uuid.New()
	}
	return nil
}
