package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/* ===================== Enums (string) ===================== */

const (
	RoomGenderMale   = "NAM"
	RoomGenderFemale = "NU"
	RoomGenderMixed  = "HON_HOP"
)

const (
	RoomStatusAvailable   = "CON_CHO"
	RoomStatusFull        = "DAY"
	RoomStatusMaintenance = "BAO_TRI"
	RoomStatusReserved    = "GIU_CHO"
	RoomStatusCleaning    = "DANG_DON"
)

/* ===================== RoomType ===================== */

type RoomType struct {
	RoomTypeID uuid.UUID `gorm:"column:room_type_id;type:uuid;primaryKey" json:"room_type_id"`

	RoomTypeName        string  `gorm:"column:room_type_name;type:varchar(120);uniqueIndex;not null" json:"room_type_name"`
	RoomTypeCapacity    int     `gorm:"column:room_type_capacity;not null;default:1" json:"room_type_capacity"`
	RoomTypeBasePrice   float64 `gorm:"column:room_type_base_price;not null;default:0" json:"room_type_base_price"`
	RoomTypeDescription *string `gorm:"column:room_type_description;type:varchar(255)" json:"room_type_description,omitempty"`

	RoomTypeAmenities datatypes.JSON `gorm:"column:room_type_amenities;type:jsonb" json:"room_type_amenities,omitempty"`

	CreatedAt time.Time `gorm:"column:room_type_created_at;autoCreateTime" json:"room_type_created_at"`
	UpdatedAt time.Time `gorm:"column:room_type_updated_at;autoUpdateTime" json:"room_type_updated_at"`
}

func (RoomType) TableName() string { return "room_types" }

func (m *RoomType) BeforeCreate(tx *gorm.DB) error {
	if m.RoomTypeID == uuid.Nil {
		m.RoomTypeID = uuid.New()
	}
	return nil
}

/* ===================== Room ===================== */

type Room struct {
	RoomID         uuid.UUID  `gorm:"column:room_id;type:uuid;primaryKey" json:"room_id"`
	RoomBuildingID uuid.UUID  `gorm:"column:room_building_id;type:uuid;not null;index" json:"room_building_id"`
	RoomTypeID     *uuid.UUID `gorm:"column:room_room_type_id;type:uuid" json:"room_room_type_id,omitempty"`

	RoomCode  string `gorm:"column:room_code;type:varchar(20);uniqueIndex;not null" json:"room_code"`
	RoomFloor int    `gorm:"column:room_floor;not null;default:1" json:"room_floor"`

	RoomGenderType string `gorm:"column:room_gender_type;type:varchar(10);not null;default:'NAM'" json:"room_gender_type"`
	RoomStatus     string `gorm:"column:room_status;type:varchar(12);not null;default:'CON_CHO'" json:"room_status"`

	RoomBasePrice float64  `gorm:"column:room_base_price;not null;default:0" json:"room_base_price"`
	RoomAreaM2    *float64 `gorm:"column:room_area_m2" json:"room_area_m2,omitempty"`

	RoomCurrentOccupancy int            `gorm:"column:room_current_occupancy;not null;default:0" json:"room_current_occupancy"`
	RoomAttributes       datatypes.JSON `gorm:"column:room_attributes;type:jsonb" json:"room_attributes,omitempty"`

	CreatedAt time.Time `gorm:"column:room_created_at;autoCreateTime" json:"room_created_at"`
	UpdatedAt time.Time `gorm:"column:room_updated_at;autoUpdateTime" json:"room_updated_at"`
}

func (Room) TableName() string { return "rooms" }

func (m *Room) BeforeCreate(tx *gorm.DB) error {
	if m.RoomID == uuid.Nil {
		m.RoomID = uuid.New()
	}
	return nil
}
