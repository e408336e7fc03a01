package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* ===================== Enums (string) ===================== */

const (
	UtilityTypeElectricity = "DIEN"
	UtilityTypeWater       = "NUOC"
)

/* ===================== UtilityConfig ===================== */

// UtilityConfig giữ đơn giá hệ thống cho từng loại công tơ.
// Billing đọc qua RateSource (service/rate_source.go), không query trực tiếp.
type UtilityConfig struct {
	UtilityConfigID uuid.UUID `gorm:"column:utility_config_id;type:uuid;primaryKey" json:"utility_config_id"`

	UtilityConfigType         string  `gorm:"column:utility_config_type;type:varchar(10);uniqueIndex;not null" json:"utility_config_type"`
	UtilityConfigPricePerUnit float64 `gorm:"column:utility_config_price_per_unit;not null" json:"utility_config_price_per_unit"`

	// giá lũy tiến chưa hỗ trợ, cờ giữ lại cho tương thích dữ liệu cũ
	UtilityConfigIsProgressive bool `gorm:"column:utility_config_is_progressive;not null;default:false" json:"utility_config_is_progressive"`

	CreatedAt time.Time `gorm:"column:utility_config_created_at;autoCreateTime" json:"utility_config_created_at"`
	UpdatedAt time.Time `gorm:"column:utility_config_updated_at;autoUpdateTime" json:"utility_config_updated_at"`
}

func (UtilityConfig) TableName() string { return "utility_configs" }

func (m *UtilityConfig) BeforeCreate(tx *gorm.DB) error {
	if m.UtilityConfigID == uuid.Nil {
		m.UtilityConfigID = uuid.New()
	}
	return nil
}

/* ===================== UtilityReading ===================== */

// UtilityReading: chỉ số công tơ theo phòng theo kỳ (month/year).
// Chỉ bản ghi is_finalized mới được tính hóa đơn và seed chỉ số kỳ sau.
type UtilityReading struct {
	UtilityReadingID     uuid.UUID `gorm:"column:utility_reading_id;type:uuid;primaryKey" json:"utility_reading_id"`
	UtilityReadingRoomID uuid.UUID `gorm:"column:utility_reading_room_id;type:uuid;not null;index" json:"utility_reading_room_id"`

	UtilityReadingRecordedBy uuid.UUID `gorm:"column:utility_reading_recorded_by;type:uuid;not null" json:"utility_reading_recorded_by"`

	UtilityReadingMonth int `gorm:"column:utility_reading_month;not null" json:"utility_reading_month"`
	UtilityReadingYear  int `gorm:"column:utility_reading_year;not null" json:"utility_reading_year"`

	UtilityReadingElectricIndex float64 `gorm:"column:utility_reading_electric_index;not null" json:"utility_reading_electric_index"`
	UtilityReadingWaterIndex    float64 `gorm:"column:utility_reading_water_index;not null" json:"utility_reading_water_index"`

	UtilityReadingPrevElectricIndex float64 `gorm:"column:utility_reading_prev_electric_index;not null;default:0" json:"utility_reading_prev_electric_index"`
	UtilityReadingPrevWaterIndex    float64 `gorm:"column:utility_reading_prev_water_index;not null;default:0" json:"utility_reading_prev_water_index"`

	UtilityReadingIsFinalized bool `gorm:"column:utility_reading_is_finalized;not null;default:false" json:"utility_reading_is_finalized"`

	CreatedAt time.Time `gorm:"column:utility_reading_created_at;autoCreateTime" json:"utility_reading_created_at"`
}

func (UtilityReading) TableName() string { return "utility_readings" }

func (m *UtilityReading) BeforeCreate(tx *gorm.DB) error {
	if m.UtilityReadingID == uuid.Nil {
		m.UtilityReadingID = uuid.New()
	}
	return nil
}

// ElectricUsage = max(0, chỉ số mới - chỉ số cũ); không bao giờ âm
// (lưới an toàn nhập liệu khi công tơ bị thay/reset).
func (m *UtilityReading) ElectricUsage() float64 {
	if u := m.UtilityReadingElectricIndex - m.UtilityReadingPrevElectricIndex; u > 0 {
		return u
	}
	return 0
}

func (m *UtilityReading) WaterUsage() float64 {
	if u := m.UtilityReadingWaterIndex - m.UtilityReadingPrevWaterIndex; u > 0 {
		return u
	}
	return 0
}
