package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* ===================== Enums (string) ===================== */

const (
	BedStatusAvailable   = "TRONG"
	BedStatusOccupied    = "DANG_O"
	BedStatusMaintenance = "BAO_TRI"
	BedStatusReserved    = "DA_DAT"
)

/* ===================== Model ===================== */

// Bed là nguồn sự thật duy nhất về tình trạng chỗ ở.
// Invariant: tối đa MỘT hợp đồng CHO_DUYET/DANG_O trỏ tới một giường;
// được đảm bảo bằng CAS trên bed_status (xem contracts/service).
type Bed struct {
	BedID     uuid.UUID `gorm:"column:bed_id;type:uuid;primaryKey" json:"bed_id"`
	BedRoomID uuid.UUID `gorm:"column:bed_room_id;type:uuid;not null;index" json:"bed_room_id"`

	BedLabel  string `gorm:"column:bed_label;type:varchar(20);not null" json:"bed_label"`
	BedStatus string `gorm:"column:bed_status;type:varchar(10);not null;default:'TRONG'" json:"bed_status"`

	// cờ legacy, luôn sync với bed_status (client cũ còn đọc)
	BedIsOccupied bool `gorm:"column:bed_is_occupied;not null;default:false" json:"bed_is_occupied"`

	CreatedAt time.Time `gorm:"column:bed_created_at;autoCreateTime" json:"bed_created_at"`
	UpdatedAt time.Time `gorm:"column:bed_updated_at;autoUpdateTime" json:"bed_updated_at"`
}

func (Bed) TableName() string { return "beds" }

func (m *Bed) BeforeCreate(tx *gorm.DB) error {
	if m.BedID == uuid.Nil {
		m.BedID = uuid.New()
	}
	return nil
}
