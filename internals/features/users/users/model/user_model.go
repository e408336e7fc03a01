package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* ===================== Enums (string) ===================== */

const (
	UserGenderMale   = "NAM"
	UserGenderFemale = "NU"
)

const (
	UserRoleAdmin   = "ADMIN"
	UserRoleManager = "QUAN_LY_TOA"
	UserRoleStudent = "SINH_VIEN"
)

/* ===================== Model ===================== */

// User do hệ thống auth bên ngoài quản lý; core chỉ đọc gender/role
// và cập nhật thông tin hiển thị.
type User struct {
	UserID uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`

	UserFullName    string  `gorm:"column:user_full_name;type:varchar(120);not null" json:"user_full_name"`
	UserEmail       string  `gorm:"column:user_email;type:varchar(120);uniqueIndex;not null" json:"user_email"`
	UserStudentCode *string `gorm:"column:user_student_code;type:varchar(20)" json:"user_student_code,omitempty"`

	// NAM | NU; nil = chưa khai báo (chặn đặt phòng không MIXED)
	UserGender *string `gorm:"column:user_gender;type:varchar(10)" json:"user_gender,omitempty"`

	UserRole     string `gorm:"column:user_role;type:varchar(20);not null;default:'SINH_VIEN'" json:"user_role"`
	UserPassword string `gorm:"column:user_password;type:varchar(120)" json:"-"`
	UserIsActive bool   `gorm:"column:user_is_active;not null" json:"user_is_active"`

	CreatedAt time.Time `gorm:"column:user_created_at;autoCreateTime" json:"user_created_at"`
	UpdatedAt time.Time `gorm:"column:user_updated_at;autoUpdateTime" json:"user_updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}
	return nil
}
