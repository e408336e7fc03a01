// file: internals/features/finance/billing/service/finance_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	contractModel "ktx_backend/internals/features/dorm/contracts/model"
	inventoryModel "ktx_backend/internals/features/dorm/inventory/model"
	servicesModel "ktx_backend/internals/features/dorm/services/model"

	billingModel "ktx_backend/internals/features/finance/billing/model"
)

/* =========================================================
   UTILITY READINGS
========================================================= */

type UtilityReadingInput struct {
	RoomID        uuid.UUID
	ElectricIndex float64
	WaterIndex    float64
}

// RecordUtilityBatch ghi chỉ số công tơ cho một loạt phòng cùng kỳ.
// Chỉ số đầu kỳ lấy từ bản ghi chốt gần nhất của phòng (0 nếu chưa có).
// Kỳ đã chốt rồi thì từ chối 409, không ghi đè.
func RecordUtilityBatch(ctx context.Context, db *gorm.DB, recordedBy uuid.UUID, month, year int, items []UtilityReadingInput) ([]billingModel.UtilityReading, error) {
	if month < 1 || month > 12 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Tháng không hợp lệ")
	}

	out := make([]billingModel.UtilityReading, 0, len(items))
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			var roomCount int64
			if err := tx.Model(&inventoryModel.Room{}).
				Where("room_id = ?", item.RoomID).Count(&roomCount).Error; err != nil {
				return err
			}
			if roomCount == 0 {
				return fiber.NewError(fiber.StatusNotFound,
					fmt.Sprintf("Phòng %s không tồn tại", item.RoomID))
			}

			var existing int64
			if err := tx.Model(&billingModel.UtilityReading{}).
				Where("utility_reading_room_id = ? AND utility_reading_month = ? AND utility_reading_year = ? AND utility_reading_is_finalized = ?",
					item.RoomID, month, year, true).
				Count(&existing).Error; err != nil {
				return err
			}
			if existing > 0 {
				return fiber.NewError(fiber.StatusConflict,
					fmt.Sprintf("Chỉ số kỳ %d/%d của phòng đã được chốt", month, year))
			}

			prevElectric, prevWater := 0.0, 0.0
			var prev billingModel.UtilityReading
			err := tx.
				Where("utility_reading_room_id = ? AND utility_reading_is_finalized = ?", item.RoomID, true).
				Order("utility_reading_year DESC, utility_reading_month DESC").
				First(&prev).Error
			if err != nil && err != gorm.ErrRecordNotFound {
				return err
			}
			if err == nil {
				prevElectric = prev.UtilityReadingElectricIndex
				prevWater = prev.UtilityReadingWaterIndex
			}

			reading := billingModel.UtilityReading{
				UtilityReadingRoomID:            item.RoomID,
				UtilityReadingRecordedBy:        recordedBy,
				UtilityReadingMonth:             month,
				UtilityReadingYear:              year,
				UtilityReadingElectricIndex:     item.ElectricIndex,
				UtilityReadingWaterIndex:        item.WaterIndex,
				UtilityReadingPrevElectricIndex: prevElectric,
				UtilityReadingPrevWaterIndex:    prevWater,
				UtilityReadingIsFinalized:       true,
			}
			if err := tx.Create(&reading).Error; err != nil {
				return err
			}
			out = append(out, reading)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetLatestReading trả bản ghi chốt gần nhất của phòng (seed form nhập liệu).
func GetLatestReading(ctx context.Context, db *gorm.DB, roomID uuid.UUID) (*billingModel.UtilityReading, error) {
	var reading billingModel.UtilityReading
	err := db.WithContext(ctx).
		Where("utility_reading_room_id = ? AND utility_reading_is_finalized = ?", roomID, true).
		Order("utility_reading_year DESC, utility_reading_month DESC").
		First(&reading).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fiber.NewError(fiber.StatusNotFound, "Phòng chưa có chỉ số nào được chốt")
	}
	if err != nil {
		return nil, err
	}
	return &reading, nil
}

/* =========================================================
   MONTHLY INVOICE GENERATION
========================================================= */

type GenerateResult struct {
	UtilityCreated  int
	PersonalCreated int
	Skipped         int
}

func utilityPeriodKey(roomID uuid.UUID, month, year int) string {
	return fmt.Sprintf("UTILITY:%s:%04d-%02d", roomID, year, month)
}

func personalPeriodKey(contractID uuid.UUID, month, year int) string {
	return fmt.Sprintf("PERSONAL:%s:%04d-%02d", contractID, year, month)
}

// GenerateMonthlyInvoices phát hành hóa đơn kỳ month/year theo hai lượt:
// lượt 1 điện nước theo phòng (từ chỉ số đã chốt), lượt 2 tiền phòng +
// dịch vụ theo hợp đồng DANG_O. Idempotent theo invoice_period_key:
// chạy lại chỉ tạo phần còn thiếu, phần đã có đếm vào Skipped.
func GenerateMonthlyInvoices(ctx context.Context, db *gorm.DB, rates RateSource, month, year int) (*GenerateResult, error) {
	if month < 1 || month > 12 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Tháng không hợp lệ")
	}

	electricRate, err := rates.Rate(ctx, billingModel.UtilityTypeElectricity)
	if err != nil {
		return nil, err
	}
	waterRate, err := rates.Rate(ctx, billingModel.UtilityTypeWater)
	if err != nil {
		return nil, err
	}

	result := &GenerateResult{}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := generateUtilityInvoices(tx, month, year, electricRate, waterRate, result); err != nil {
			return err
		}
		return generatePersonalInvoices(tx, month, year, result)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func generateUtilityInvoices(tx *gorm.DB, month, year int, electricRate, waterRate float64, result *GenerateResult) error {
	var readings []billingModel.UtilityReading
	if err := tx.
		Where("utility_reading_month = ? AND utility_reading_year = ? AND utility_reading_is_finalized = ?", month, year, true).
		Find(&readings).Error; err != nil {
		return err
	}

	processedRooms := map[uuid.UUID]bool{}
	for i := range readings {
		reading := &readings[i]
		if processedRooms[reading.UtilityReadingRoomID] {
			continue
		}
		processedRooms[reading.UtilityReadingRoomID] = true

		key := utilityPeriodKey(reading.UtilityReadingRoomID, month, year)
		var dup int64
		if err := tx.Model(&billingModel.Invoice{}).
			Where("invoice_period_key = ?", key).Count(&dup).Error; err != nil {
			return err
		}
		if dup > 0 {
			result.Skipped++
			continue
		}

		var room inventoryModel.Room
		if err := tx.First(&room, "room_id = ?", reading.UtilityReadingRoomID).Error; err != nil {
			return err
		}

		eUsage := reading.ElectricUsage()
		wUsage := reading.WaterUsage()
		total := eUsage*electricRate + wUsage*waterRate
		// không dùng gì thì không phát hành hóa đơn
		if total <= 0 {
			continue
		}

		title := fmt.Sprintf("Hóa đơn Điện/Nước phòng %s - T%d/%d", room.RoomCode, month, year)
		roomID := room.RoomID
		due := time.Now().AddDate(0, 0, 10)
		details := billingModel.InvoiceDetails{
			Kind:  billingModel.InvoiceKindUtility,
			Month: month,
			Year:  year,
			UtilityItems: []billingModel.UtilityLine{
				{Name: "Điện", Usage: eUsage, Rate: electricRate, Amount: eUsage * electricRate},
				{Name: "Nước", Usage: wUsage, Rate: waterRate, Amount: wUsage * waterRate},
			},
		}

		invoice := billingModel.Invoice{
			InvoiceRoomID:          &roomID,
			InvoiceTitle:           &title,
			InvoiceTotalAmount:     total,
			InvoiceRemainingAmount: total,
			InvoiceStatus:          billingModel.InvoiceStatusUnpaid,
			InvoiceDueDate:         &due,
			InvoiceDetails:         details.JSON(),
			InvoicePeriodKey:       &key,
		}
		if err := tx.Create(&invoice).Error; err != nil {
			if err == gorm.ErrDuplicatedKey {
				result.Skipped++
				continue
			}
			return err
		}
		result.UtilityCreated++
	}
	return nil
}

func generatePersonalInvoices(tx *gorm.DB, month, year int, result *GenerateResult) error {
	var contracts []contractModel.Contract
	if err := tx.
		Where("contract_status = ?", contractModel.ContractStatusActive).
		Find(&contracts).Error; err != nil {
		return err
	}

	for i := range contracts {
		contract := &contracts[i]
		key := personalPeriodKey(contract.ContractID, month, year)

		var dup int64
		if err := tx.Model(&billingModel.Invoice{}).
			Where("invoice_period_key = ?", key).Count(&dup).Error; err != nil {
			return err
		}
		if dup > 0 {
			result.Skipped++
			continue
		}

		lines := []billingModel.PersonalLine{
			{Name: "Tiền phòng", Quantity: 1, Price: contract.ContractPricePerMonth, Amount: contract.ContractPricePerMonth},
		}
		total := contract.ContractPricePerMonth

		serviceLines, serviceTotal, err := monthlyServiceLines(tx, contract.ContractStudentID)
		if err != nil {
			return err
		}
		lines = append(lines, serviceLines...)
		total += serviceTotal
		if total <= 0 {
			continue
		}

		title := fmt.Sprintf("Hóa đơn Tiền phòng - T%d/%d", month, year)
		due := time.Now().AddDate(0, 0, 10)
		details := billingModel.InvoiceDetails{
			Kind:          billingModel.InvoiceKindPersonal,
			Month:         month,
			Year:          year,
			PersonalItems: lines,
		}

		invoice := billingModel.Invoice{
			InvoiceContractID:      &contract.ContractID,
			InvoiceTitle:           &title,
			InvoiceTotalAmount:     total,
			InvoiceRemainingAmount: total,
			InvoiceStatus:          billingModel.InvoiceStatusUnpaid,
			InvoiceDueDate:         &due,
			InvoiceDetails:         details.JSON(),
			InvoicePeriodKey:       &key,
		}
		if err := tx.Create(&invoice).Error; err != nil {
			if err == gorm.ErrDuplicatedKey {
				result.Skipped++
				continue
			}
			return err
		}
		result.PersonalCreated++
	}
	return nil
}

// monthlyServiceLines gom các gói dịch vụ HANG_THANG còn hiệu lực của
// sinh viên thành line item cho hóa đơn cá nhân.
func monthlyServiceLines(tx *gorm.DB, studentID uuid.UUID) ([]billingModel.PersonalLine, float64, error) {
	var subs []servicesModel.ServiceSubscription
	if err := tx.
		Where("service_subscription_user_id = ? AND service_subscription_is_active = ?", studentID, true).
		Find(&subs).Error; err != nil {
		return nil, 0, err
	}

	var lines []billingModel.PersonalLine
	total := 0.0
	now := time.Now()
	for i := range subs {
		sub := &subs[i]
		if sub.ServiceSubscriptionEndDate != nil && sub.ServiceSubscriptionEndDate.Before(now) {
			continue
		}

		var pkg servicesModel.ServicePackage
		if err := tx.First(&pkg, "service_package_id = ?", sub.ServiceSubscriptionServiceID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				continue
			}
			return nil, 0, err
		}
		if pkg.ServicePackageBillingCycle != servicesModel.BillingCycleMonthly {
			continue
		}

		qty := sub.ServiceSubscriptionQuantity
		if qty < 1 {
			qty = 1
		}
		amount := pkg.ServicePackagePrice * float64(qty)
		lines = append(lines, billingModel.PersonalLine{
			Name:     pkg.ServicePackageName,
			Quantity: qty,
			Price:    pkg.ServicePackagePrice,
			Amount:   amount,
		})
		total += amount
	}
	return lines, total, nil
}

/* =========================================================
   INVOICE QUERIES / CANCEL
========================================================= */

func GetInvoiceByID(ctx context.Context, db *gorm.DB, invoiceID uuid.UUID) (*billingModel.Invoice, error) {
	var invoice billingModel.Invoice
	if err := db.WithContext(ctx).First(&invoice, "invoice_id = ?", invoiceID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "Hóa đơn không tồn tại")
		}
		return nil, err
	}
	return &invoice, nil
}

// ListInvoicesByContract trả hóa đơn theo hợp đồng, mới nhất trước.
func ListInvoicesByContract(ctx context.Context, db *gorm.DB, contractID uuid.UUID) ([]billingModel.Invoice, error) {
	var invoices []billingModel.Invoice
	err := db.WithContext(ctx).
		Where("invoice_contract_id = ?", contractID).
		Order("invoice_created_at DESC").
		Find(&invoices).Error
	return invoices, err
}

func ListInvoicesByRoom(ctx context.Context, db *gorm.DB, roomID uuid.UUID) ([]billingModel.Invoice, error) {
	var invoices []billingModel.Invoice
	err := db.WithContext(ctx).
		Where("invoice_room_id = ?", roomID).
		Order("invoice_created_at DESC").
		Find(&invoices).Error
	return invoices, err
}

// CancelInvoice hủy hóa đơn ở bất kỳ trạng thái nào trừ khi đã hủy rồi.
// Tiền đã nhận KHÔNG đảo lại: hủy chỉ đóng hóa đơn, hoàn tiền (nếu cần)
// là nghiệp vụ thủ công riêng.
func CancelInvoice(ctx context.Context, db *gorm.DB, invoiceID uuid.UUID, reason string) (*billingModel.Invoice, error) {
	var invoice billingModel.Invoice
	if err := db.WithContext(ctx).First(&invoice, "invoice_id = ?", invoiceID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "Hóa đơn không tồn tại")
		}
		return nil, err
	}
	if invoice.InvoiceStatus == billingModel.InvoiceStatusCancelled {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Hóa đơn đã bị hủy trước đó")
	}

	details := billingModel.ParseInvoiceDetails(invoice.InvoiceDetails)
	details.CancelReason = reason
	invoice.InvoiceStatus = billingModel.InvoiceStatusCancelled
	invoice.InvoiceDetails = details.JSON()

	if err := db.WithContext(ctx).Model(&billingModel.Invoice{}).
		Where("invoice_id = ?", invoiceID).
		Updates(map[string]any{
			"invoice_status":  billingModel.InvoiceStatusCancelled,
			"invoice_details": invoice.InvoiceDetails,
		}).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

/* =========================================================
   UTILITY CONFIG (đơn giá hệ thống)
========================================================= */

func UpsertUtilityConfig(ctx context.Context, db *gorm.DB, utilityType string, pricePerUnit float64) (*billingModel.UtilityConfig, error) {
	if utilityType != billingModel.UtilityTypeElectricity && utilityType != billingModel.UtilityTypeWater {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Loại công tơ không hợp lệ")
	}
	if pricePerUnit <= 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Đơn giá phải lớn hơn 0")
	}

	var cfg billingModel.UtilityConfig
	err := db.WithContext(ctx).First(&cfg, "utility_config_type = ?", utilityType).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		cfg = billingModel.UtilityConfig{
			UtilityConfigType:         utilityType,
			UtilityConfigPricePerUnit: pricePerUnit,
		}
		if err := db.WithContext(ctx).Create(&cfg).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		cfg.UtilityConfigPricePerUnit = pricePerUnit
		if err := db.WithContext(ctx).Model(&billingModel.UtilityConfig{}).
			Where("utility_config_id = ?", cfg.UtilityConfigID).
			Update("utility_config_price_per_unit", pricePerUnit).Error; err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}
