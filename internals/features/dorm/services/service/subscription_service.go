// file: internals/features/dorm/services/service/subscription_service.go
package service

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	servicesModel "ktx_backend/internals/features/dorm/services/model"
)

// Subscribe đăng ký gói dịch vụ cho sinh viên. Một gói chỉ được đăng ký
// một lần đang hiệu lực.
func Subscribe(ctx context.Context, db *gorm.DB, userID, serviceID uuid.UUID, quantity int, endDate *time.Time, note *string) (*servicesModel.ServiceSubscription, error) {
	var pkg servicesModel.ServicePackage
	if err := db.WithContext(ctx).First(&pkg, "service_package_id = ?", serviceID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "Gói dịch vụ không tồn tại")
		}
		return nil, err
	}
	if !pkg.ServicePackageIsActive {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Gói dịch vụ đã ngừng cung cấp")
	}

	var active int64
	if err := db.WithContext(ctx).Model(&servicesModel.ServiceSubscription{}).
		Where("service_subscription_user_id = ? AND service_subscription_service_id = ? AND service_subscription_is_active = ?",
			userID, serviceID, true).
		Count(&active).Error; err != nil {
		return nil, err
	}
	if active > 0 {
		return nil, fiber.NewError(fiber.StatusConflict, "Bạn đã đăng ký gói này rồi")
	}

	if quantity < 1 {
		quantity = 1
	}
	sub := servicesModel.ServiceSubscription{
		ServiceSubscriptionUserID:    userID,
		ServiceSubscriptionServiceID: serviceID,
		ServiceSubscriptionStartDate: time.Now(),
		ServiceSubscriptionEndDate:   endDate,
		ServiceSubscriptionIsActive:  true,
		ServiceSubscriptionQuantity:  quantity,
		ServiceSubscriptionNote:      note,
	}
	if err := db.WithContext(ctx).Create(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// Unsubscribe tắt đăng ký; dịch vụ ngừng vào kỳ hóa đơn kế tiếp.
func Unsubscribe(ctx context.Context, db *gorm.DB, userID, subscriptionID uuid.UUID) (*servicesModel.ServiceSubscription, error) {
	var sub servicesModel.ServiceSubscription
	if err := db.WithContext(ctx).First(&sub, "service_subscription_id = ?", subscriptionID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "Đăng ký không tồn tại")
		}
		return nil, err
	}
	if sub.ServiceSubscriptionUserID != userID {
		return nil, fiber.NewError(fiber.StatusForbidden, "Bạn không có quyền hủy đăng ký này")
	}
	if !sub.ServiceSubscriptionIsActive {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Đăng ký đã bị hủy trước đó")
	}

	now := time.Now()
	if err := db.WithContext(ctx).Model(&servicesModel.ServiceSubscription{}).
		Where("service_subscription_id = ?", subscriptionID).
		Updates(map[string]any{
			"service_subscription_is_active": false,
			"service_subscription_end_date":  now,
		}).Error; err != nil {
		return nil, err
	}
	sub.ServiceSubscriptionIsActive = false
	sub.ServiceSubscriptionEndDate = &now
	return &sub, nil
}

func ListMySubscriptions(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]servicesModel.ServiceSubscription, error) {
	var subs []servicesModel.ServiceSubscription
	err := db.WithContext(ctx).
		Where("service_subscription_user_id = ?", userID).
		Order("service_subscription_created_at DESC").
		Find(&subs).Error
	return subs, err
}

func ListActivePackages(ctx context.Context, db *gorm.DB) ([]servicesModel.ServicePackage, error) {
	var pkgs []servicesModel.ServicePackage
	err := db.WithContext(ctx).
		Where("service_package_is_active = ?", true).
		Order("service_package_name ASC").
		Find(&pkgs).Error
	return pkgs, err
}
