package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* ===================== Enums (string) ===================== */

const (
	ServiceTypeParking       = "GIU_XE"
	ServiceTypeLaundry       = "GIAT_LA"
	ServiceTypeCleaning      = "DON_DEP"
	ServiceTypeWaterDelivery = "GIAO_NUOC"
	ServiceTypeInternet      = "INTERNET"
	ServiceTypeOther         = "KHAC"
)

const (
	BillingCycleOneTime  = "MOT_LAN"
	BillingCycleMonthly  = "HANG_THANG"
	BillingCycleSemester = "HOC_KY"
)

/* ===================== ServicePackage ===================== */

type ServicePackage struct {
	ServicePackageID uuid.UUID `gorm:"column:service_package_id;type:uuid;primaryKey" json:"service_package_id"`

	ServicePackageName        string  `gorm:"column:service_package_name;type:varchar(120);not null;index" json:"service_package_name"`
	ServicePackageDescription *string `gorm:"column:service_package_description;type:varchar(255)" json:"service_package_description,omitempty"`

	ServicePackageType  string  `gorm:"column:service_package_type;type:varchar(12);not null;default:'KHAC'" json:"service_package_type"`
	ServicePackagePrice float64 `gorm:"column:service_package_price;not null" json:"service_package_price"`

	ServicePackageBillingCycle string `gorm:"column:service_package_billing_cycle;type:varchar(12);not null;default:'HANG_THANG'" json:"service_package_billing_cycle"`
	// không gắn default: GORM bỏ qua zero-value khi cột có default,
	// false sẽ không bao giờ ghi xuống được
	ServicePackageIsActive bool `gorm:"column:service_package_is_active;not null" json:"service_package_is_active"`

	CreatedAt time.Time `gorm:"column:service_package_created_at;autoCreateTime" json:"service_package_created_at"`
	UpdatedAt time.Time `gorm:"column:service_package_updated_at;autoUpdateTime" json:"service_package_updated_at"`
}

func (ServicePackage) TableName() string { return "service_packages" }

func (m *ServicePackage) BeforeCreate(tx *gorm.DB) error {
	if m.ServicePackageID == uuid.Nil {
		m.ServicePackageID = uuid.New()
	}
	return nil
}

/* ===================== ServiceSubscription ===================== */

type ServiceSubscription struct {
	ServiceSubscriptionID uuid.UUID `gorm:"column:service_subscription_id;type:uuid;primaryKey" json:"service_subscription_id"`

	ServiceSubscriptionUserID    uuid.UUID `gorm:"column:service_subscription_user_id;type:uuid;not null;index" json:"service_subscription_user_id"`
	ServiceSubscriptionServiceID uuid.UUID `gorm:"column:service_subscription_service_id;type:uuid;not null;index" json:"service_subscription_service_id"`

	ServiceSubscriptionStartDate time.Time  `gorm:"column:service_subscription_start_date;not null" json:"service_subscription_start_date"`
	ServiceSubscriptionEndDate   *time.Time `gorm:"column:service_subscription_end_date" json:"service_subscription_end_date,omitempty"`

	ServiceSubscriptionIsActive bool    `gorm:"column:service_subscription_is_active;not null" json:"service_subscription_is_active"`
	ServiceSubscriptionQuantity int     `gorm:"column:service_subscription_quantity;not null;default:1" json:"service_subscription_quantity"`
	ServiceSubscriptionNote     *string `gorm:"column:service_subscription_note;type:varchar(255)" json:"service_subscription_note,omitempty"`

	CreatedAt time.Time `gorm:"column:service_subscription_created_at;autoCreateTime" json:"service_subscription_created_at"`
	UpdatedAt time.Time `gorm:"column:service_subscription_updated_at;autoUpdateTime" json:"service_subscription_updated_at"`
}

func (ServiceSubscription) TableName() string { return "service_subscriptions" }

func (m *ServiceSubscription) BeforeCreate(tx *gorm.DB) error {
	if m.ServiceSubscriptionID == uuid.Nil {
		m.ServiceSubscriptionID = uuid.New()
	}
	return nil
}
