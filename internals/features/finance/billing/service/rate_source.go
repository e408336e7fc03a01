// file: internals/features/finance/billing/service/rate_source.go
package service

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	billingModel "ktx_backend/internals/features/finance/billing/model"
)

// RateSource tách nguồn đơn giá khỏi engine tính hóa đơn:
// production đọc từ utility_configs, test truyền StaticRateSource.
type RateSource interface {
	Rate(ctx context.Context, utilityType string) (float64, error)
}

/* ===================== ConfigRateSource ===================== */

type ConfigRateSource struct {
	DB *gorm.DB
}

func (s *ConfigRateSource) Rate(ctx context.Context, utilityType string) (float64, error) {
	var cfg billingModel.UtilityConfig
	err := s.DB.WithContext(ctx).
		First(&cfg, "utility_config_type = ?", utilityType).Error
	if err == gorm.ErrRecordNotFound {
		return 0, fiber.NewError(fiber.StatusInternalServerError,
			fmt.Sprintf("Chưa cấu hình đơn giá %s", utilityType))
	}
	if err != nil {
		return 0, err
	}
	return cfg.UtilityConfigPricePerUnit, nil
}

/* ===================== StaticRateSource ===================== */

// StaticRateSource: bảng giá cố định, dùng cho test và tool offline.
type StaticRateSource map[string]float64

func (s StaticRateSource) Rate(_ context.Context, utilityType string) (float64, error) {
	rate, ok := s[utilityType]
	if !ok {
		return 0, fiber.NewError(fiber.StatusInternalServerError,
			fmt.Sprintf("Chưa cấu hình đơn giá %s", utilityType))
	}
	return rate, nil
}
