package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"ktx_backend/internals/configs"
	contractModel "ktx_backend/internals/features/dorm/contracts/model"
	inventoryModel "ktx_backend/internals/features/dorm/inventory/model"
	serviceModel "ktx_backend/internals/features/dorm/services/model"
	transferModel "ktx_backend/internals/features/dorm/transfers/model"
	billingModel "ktx_backend/internals/features/finance/billing/model"
	paymentModel "ktx_backend/internals/features/finance/payments/model"
	userModel "ktx_backend/internals/features/users/users/model"
)

var DB *gorm.DB

func ConnectDB() {
	log.Println("🔌 Kết nối PostgreSQL...")

	sslmode := configs.GetEnv("DB_SSLMODE", "require")
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=ktx&options=-c statement_timeout=3000",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_NAME"),
		sslmode,
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // 👍 hợp với PgBouncer (transaction pooling)
	}), &gorm.Config{
		Logger:         configs.NewGormLogger(),
		TranslateError: true, // cần để bắt gorm.ErrDuplicatedKey (idempotency thanh toán)
	})
	if err != nil {
		log.Fatalf("❌ Kết nối DB thất bại: %v", err)
	}
	DB = db
	log.Println("✅ DB connected.")
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("pool tune err: %v", err)
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

// Migrate tạo/cập nhật schema cho toàn bộ model của hệ thống.
func Migrate() {
	err := DB.AutoMigrate(
		&userModel.User{},
		&inventoryModel.Campus{},
		&inventoryModel.Building{},
		&inventoryModel.RoomType{},
		&inventoryModel.Room{},
		&inventoryModel.Bed{},
		&contractModel.Contract{},
		&contractModel.LiquidationRecord{},
		&transferModel.TransferRequest{},
		&serviceModel.ServicePackage{},
		&serviceModel.ServiceSubscription{},
		&billingModel.UtilityConfig{},
		&billingModel.UtilityReading{},
		&billingModel.Invoice{},
		&paymentModel.Payment{},
	)
	if err != nil {
		log.Fatalf("❌ AutoMigrate thất bại: %v", err)
	}
	log.Println("✅ Schema migrated.")
}
