package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/* ===================== Campus ===================== */

type Campus struct {
	CampusID uuid.UUID `gorm:"column:campus_id;type:uuid;primaryKey" json:"campus_id"`

	CampusName        string  `gorm:"column:campus_name;type:varchar(120);not null" json:"campus_name"`
	CampusAddress     *string `gorm:"column:campus_address;type:varchar(255)" json:"campus_address,omitempty"`
	CampusDescription *string `gorm:"column:campus_description;type:varchar(255)" json:"campus_description,omitempty"`

	CreatedAt time.Time `gorm:"column:campus_created_at;autoCreateTime" json:"campus_created_at"`
	UpdatedAt time.Time `gorm:"column:campus_updated_at;autoUpdateTime" json:"campus_updated_at"`
}

func (Campus) TableName() string { return "campuses" }

func (m *Campus) BeforeCreate(tx *gorm.DB) error {
	if m.CampusID == uuid.Nil {
		m.CampusID = uuid.New()
	}
	return nil
}

/* ===================== Building ===================== */

type Building struct {
	BuildingID       uuid.UUID `gorm:"column:building_id;type:uuid;primaryKey" json:"building_id"`
	BuildingCampusID uuid.UUID `gorm:"column:building_campus_id;type:uuid;not null;index" json:"building_campus_id"`

	BuildingCode        string  `gorm:"column:building_code;type:varchar(20);uniqueIndex;not null" json:"building_code"`
	BuildingName        *string `gorm:"column:building_name;type:varchar(120)" json:"building_name,omitempty"`
	BuildingTotalFloors int     `gorm:"column:building_total_floors;not null;default:1" json:"building_total_floors"`

	BuildingUtilityConfig datatypes.JSON `gorm:"column:building_utility_config;type:jsonb" json:"building_utility_config,omitempty"`

	CreatedAt time.Time `gorm:"column:building_created_at;autoCreateTime" json:"building_created_at"`
	UpdatedAt time.Time `gorm:"column:building_updated_at;autoUpdateTime" json:"building_updated_at"`
}

func (Building) TableName() string { return "buildings" }

func (m *Building) BeforeCreate(tx *gorm.DB) error {
	if m.BuildingID == uuid.Nil {
		m.BuildingID = uuid.New()
	}
	return nil
}
