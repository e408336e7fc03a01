// file: internals/seeds/runner.go
package seeds

import (
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"ktx_backend/internals/configs"
	billingModel "ktx_backend/internals/features/finance/billing/model"
	userModel "ktx_backend/internals/features/users/users/model"
)

// Run seed dữ liệu nền tối thiểu để hệ thống chạy được ngay:
// tài khoản admin + đơn giá điện nước mặc định. Idempotent (FirstOrCreate).
func Run(db *gorm.DB) {
	seedAdmin(db)
	seedUtilityConfigs(db)
}

func seedAdmin(db *gorm.DB) {
	email := configs.GetEnv("ADMIN_EMAIL", "admin@ktx.local")
	password := configs.GetEnv("ADMIN_PASSWORD", "admin123")

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("❌ Seed admin: hash password lỗi: %v", err)
		return
	}

	admin := userModel.User{
		UserFullName: "Quản trị hệ thống",
		UserEmail:    email,
		UserRole:     userModel.UserRoleAdmin,
		UserPassword: string(hashed),
		UserIsActive: true,
	}
	result := db.Where("user_email = ?", email).FirstOrCreate(&admin)
	if result.Error != nil {
		log.Printf("❌ Seed admin lỗi: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("✅ Đã tạo tài khoản admin %s", email)
	}
}

func seedUtilityConfigs(db *gorm.DB) {
	defaults := []billingModel.UtilityConfig{
		{UtilityConfigType: billingModel.UtilityTypeElectricity, UtilityConfigPricePerUnit: 3_500},
		{UtilityConfigType: billingModel.UtilityTypeWater, UtilityConfigPricePerUnit: 15_000},
	}
	for _, cfg := range defaults {
		c := cfg
		result := db.Where("utility_config_type = ?", c.UtilityConfigType).FirstOrCreate(&c)
		if result.Error != nil {
			log.Printf("❌ Seed đơn giá %s lỗi: %v", c.UtilityConfigType, result.Error)
			continue
		}
		if result.RowsAffected > 0 {
			log.Printf("✅ Đã seed đơn giá %s = %.0f", c.UtilityConfigType, c.UtilityConfigPricePerUnit)
		}
	}
}
