// file: internals/features/finance/billing/service/finance_service_test.go
package service

import (
	"context"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	contractModel "ktx_backend/internals/features/dorm/contracts/model"
	contractService "ktx_backend/internals/features/dorm/contracts/service"
	inventoryModel "ktx_backend/internals/features/dorm/inventory/model"
	servicesModel "ktx_backend/internals/features/dorm/services/model"
	userModel "ktx_backend/internals/features/users/users/model"

	billingModel "ktx_backend/internals/features/finance/billing/model"
)

var testRates = StaticRateSource{
	billingModel.UtilityTypeElectricity: 3_500,
	billingModel.UtilityTypeWater:       15_000,
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&userModel.User{},
		&inventoryModel.Campus{},
		&inventoryModel.Building{},
		&inventoryModel.Room{},
		&inventoryModel.Bed{},
		&contractModel.Contract{},
		&servicesModel.ServicePackage{},
		&servicesModel.ServiceSubscription{},
		&billingModel.UtilityConfig{},
		&billingModel.UtilityReading{},
		&billingModel.Invoice{},
	))
	return db
}

func seedRoom(t *testing.T, db *gorm.DB, code string, price float64) *inventoryModel.Room {
	t.Helper()
	campus := inventoryModel.Campus{CampusName: "Cơ sở 1"}
	require.NoError(t, db.Create(&campus).Error)
	building := inventoryModel.Building{BuildingCampusID: campus.CampusID, BuildingCode: "B-" + code}
	require.NoError(t, db.Create(&building).Error)

	room := inventoryModel.Room{
		RoomBuildingID: building.BuildingID,
		RoomCode:       code,
		RoomGenderType: inventoryModel.RoomGenderMixed,
		RoomStatus:     inventoryModel.RoomStatusAvailable,
		RoomBasePrice:  price,
	}
	require.NoError(t, db.Create(&room).Error)
	return &room
}

func seedActiveContract(t *testing.T, db *gorm.DB, price float64) *contractModel.Contract {
	t.Helper()
	student := userModel.User{
		UserFullName: "SV Test",
		UserEmail:    uuid.NewString() + "@ktx.vn",
		UserRole:     userModel.UserRoleStudent,
	}
	require.NoError(t, db.Create(&student).Error)

	contract := contractModel.Contract{
		ContractStudentID:     student.UserID,
		ContractBedID:         uuid.New(),
		ContractStartDate:     time.Now().AddDate(0, -1, 0),
		ContractEndDate:       time.Now().AddDate(0, 5, 0),
		ContractPricePerMonth: price,
		ContractDepositAmount: price,
		ContractStatus:        contractModel.ContractStatusActive,
	}
	require.NoError(t, db.Create(&contract).Error)
	return &contract
}

func TestRecordUtilityBatch_SeedsPreviousFromLatestFinalized(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	room := seedRoom(t, db, "P201", 1_000_000)
	recorder := uuid.New()

	first, err := RecordUtilityBatch(ctx, db, recorder, 1, 2026, []UtilityReadingInput{
		{RoomID: room.RoomID, ElectricIndex: 120, WaterIndex: 40},
	})
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Equal(t, 0.0, first[0].UtilityReadingPrevElectricIndex)
	require.True(t, first[0].UtilityReadingIsFinalized)

	second, err := RecordUtilityBatch(ctx, db, recorder, 2, 2026, []UtilityReadingInput{
		{RoomID: room.RoomID, ElectricIndex: 175, WaterIndex: 52},
	})
	require.NoError(t, err)
	require.Equal(t, 120.0, second[0].UtilityReadingPrevElectricIndex)
	require.Equal(t, 40.0, second[0].UtilityReadingPrevWaterIndex)
	require.Equal(t, 55.0, second[0].ElectricUsage())
	require.Equal(t, 12.0, second[0].WaterUsage())
}

func TestRecordUtilityBatch_RejectsFinalizedPeriod(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	room := seedRoom(t, db, "P201", 1_000_000)
	recorder := uuid.New()

	_, err := RecordUtilityBatch(ctx, db, recorder, 1, 2026, []UtilityReadingInput{
		{RoomID: room.RoomID, ElectricIndex: 120, WaterIndex: 40},
	})
	require.NoError(t, err)

	_, err = RecordUtilityBatch(ctx, db, recorder, 1, 2026, []UtilityReadingInput{
		{RoomID: room.RoomID, ElectricIndex: 130, WaterIndex: 41},
	})
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	require.Equal(t, fiber.StatusConflict, fe.Code)
}

func TestRecordUtilityBatch_MeterResetClampsUsageToZero(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	room := seedRoom(t, db, "P201", 1_000_000)
	recorder := uuid.New()

	_, err := RecordUtilityBatch(ctx, db, recorder, 1, 2026, []UtilityReadingInput{
		{RoomID: room.RoomID, ElectricIndex: 500, WaterIndex: 100},
	})
	require.NoError(t, err)

	// công tơ bị thay, chỉ số mới thấp hơn chỉ số cũ
	second, err := RecordUtilityBatch(ctx, db, recorder, 2, 2026, []UtilityReadingInput{
		{RoomID: room.RoomID, ElectricIndex: 10, WaterIndex: 2},
	})
	require.NoError(t, err)
	require.Equal(t, 0.0, second[0].ElectricUsage())
	require.Equal(t, 0.0, second[0].WaterUsage())
}

func TestGenerateMonthlyInvoices_UtilityAndPersonal(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	room := seedRoom(t, db, "P305", 1_200_000)
	recorder := uuid.New()

	_, err := RecordUtilityBatch(ctx, db, recorder, 3, 2026, []UtilityReadingInput{
		{RoomID: room.RoomID, ElectricIndex: 100, WaterIndex: 20},
	})
	require.NoError(t, err)

	contract := seedActiveContract(t, db, 1_200_000)

	result, err := GenerateMonthlyInvoices(ctx, db, testRates, 3, 2026)
	require.NoError(t, err)
	require.Equal(t, 1, result.UtilityCreated)
	require.Equal(t, 1, result.PersonalCreated)
	require.Equal(t, 0, result.Skipped)

	var utilityInvoice billingModel.Invoice
	require.NoError(t, db.First(&utilityInvoice, "invoice_room_id = ?", room.RoomID).Error)
	require.Nil(t, utilityInvoice.InvoiceContractID)
	require.Equal(t, 100*3_500.0+20*15_000.0, utilityInvoice.InvoiceTotalAmount)
	require.Equal(t, "Hóa đơn Điện/Nước phòng P305 - T3/2026", *utilityInvoice.InvoiceTitle)

	details := billingModel.ParseInvoiceDetails(utilityInvoice.InvoiceDetails)
	require.Equal(t, billingModel.InvoiceKindUtility, details.Kind)
	require.Len(t, details.UtilityItems, 2)
	require.Equal(t, "Điện", details.UtilityItems[0].Name)

	var personalInvoice billingModel.Invoice
	require.NoError(t, db.First(&personalInvoice, "invoice_contract_id = ?", contract.ContractID).Error)
	require.Equal(t, 1_200_000.0, personalInvoice.InvoiceTotalAmount)
	require.Equal(t, "Hóa đơn Tiền phòng - T3/2026", *personalInvoice.InvoiceTitle)
}

func TestGenerateMonthlyInvoices_IdempotentRerun(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	room := seedRoom(t, db, "P305", 1_200_000)
	recorder := uuid.New()

	_, err := RecordUtilityBatch(ctx, db, recorder, 3, 2026, []UtilityReadingInput{
		{RoomID: room.RoomID, ElectricIndex: 100, WaterIndex: 20},
	})
	require.NoError(t, err)
	seedActiveContract(t, db, 1_000_000)

	_, err = GenerateMonthlyInvoices(ctx, db, testRates, 3, 2026)
	require.NoError(t, err)

	rerun, err := GenerateMonthlyInvoices(ctx, db, testRates, 3, 2026)
	require.NoError(t, err)
	require.Equal(t, 0, rerun.UtilityCreated)
	require.Equal(t, 0, rerun.PersonalCreated)
	require.Equal(t, 2, rerun.Skipped)

	var count int64
	require.NoError(t, db.Model(&billingModel.Invoice{}).Count(&count).Error)
	require.Equal(t, int64(2), count)
}

func TestGenerateMonthlyInvoices_ZeroUsageRoomSkipped(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	room := seedRoom(t, db, "P306", 1_000_000)
	recorder := uuid.New()

	_, err := RecordUtilityBatch(ctx, db, recorder, 3, 2026, []UtilityReadingInput{
		{RoomID: room.RoomID, ElectricIndex: 100, WaterIndex: 20},
	})
	require.NoError(t, err)

	// phòng trống cả tháng, chỉ số đứng yên
	_, err = RecordUtilityBatch(ctx, db, recorder, 4, 2026, []UtilityReadingInput{
		{RoomID: room.RoomID, ElectricIndex: 100, WaterIndex: 20},
	})
	require.NoError(t, err)

	result, err := GenerateMonthlyInvoices(ctx, db, testRates, 4, 2026)
	require.NoError(t, err)
	require.Equal(t, 0, result.UtilityCreated)

	var count int64
	require.NoError(t, db.Model(&billingModel.Invoice{}).
		Where("invoice_room_id = ?", room.RoomID).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestGenerateMonthlyInvoices_IncludesMonthlyServices(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	contract := seedActiveContract(t, db, 1_000_000)

	pkg := servicesModel.ServicePackage{
		ServicePackageName:         "Giữ xe máy",
		ServicePackageType:         servicesModel.ServiceTypeParking,
		ServicePackagePrice:        100_000,
		ServicePackageBillingCycle: servicesModel.BillingCycleMonthly,
		ServicePackageIsActive:     true,
	}
	require.NoError(t, db.Create(&pkg).Error)

	oneTime := servicesModel.ServicePackage{
		ServicePackageName:         "Dọn phòng",
		ServicePackageType:         servicesModel.ServiceTypeCleaning,
		ServicePackagePrice:        50_000,
		ServicePackageBillingCycle: servicesModel.BillingCycleOneTime,
		ServicePackageIsActive:     true,
	}
	require.NoError(t, db.Create(&oneTime).Error)

	for _, p := range []servicesModel.ServicePackage{pkg, oneTime} {
		sub := servicesModel.ServiceSubscription{
			ServiceSubscriptionUserID:    contract.ContractStudentID,
			ServiceSubscriptionServiceID: p.ServicePackageID,
			ServiceSubscriptionStartDate: time.Now().AddDate(0, -1, 0),
			ServiceSubscriptionIsActive:  true,
			ServiceSubscriptionQuantity:  1,
		}
		require.NoError(t, db.Create(&sub).Error)
	}

	_, err := GenerateMonthlyInvoices(ctx, db, testRates, 4, 2026)
	require.NoError(t, err)

	var invoice billingModel.Invoice
	require.NoError(t, db.First(&invoice, "invoice_contract_id = ?", contract.ContractID).Error)
	// tiền phòng + giữ xe; gói MOT_LAN không vào hóa đơn tháng
	require.Equal(t, 1_100_000.0, invoice.InvoiceTotalAmount)

	details := billingModel.ParseInvoiceDetails(invoice.InvoiceDetails)
	require.Len(t, details.PersonalItems, 2)
	require.Equal(t, "Giữ xe máy", details.PersonalItems[1].Name)
}

func TestGenerateMonthlyInvoices_MissingRateConfig(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := GenerateMonthlyInvoices(ctx, db, &ConfigRateSource{DB: db}, 3, 2026)
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	require.Equal(t, fiber.StatusInternalServerError, fe.Code)
}

func TestCancelInvoice(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	contract := seedActiveContract(t, db, 1_000_000)

	_, err := GenerateMonthlyInvoices(ctx, db, testRates, 5, 2026)
	require.NoError(t, err)

	var invoice billingModel.Invoice
	require.NoError(t, db.First(&invoice, "invoice_contract_id = ?", contract.ContractID).Error)

	got, err := CancelInvoice(ctx, db, invoice.InvoiceID, "Nhập sai kỳ")
	require.NoError(t, err)
	require.Equal(t, billingModel.InvoiceStatusCancelled, got.InvoiceStatus)

	details := billingModel.ParseInvoiceDetails(got.InvoiceDetails)
	require.Equal(t, "Nhập sai kỳ", details.CancelReason)

	_, err = CancelInvoice(ctx, db, invoice.InvoiceID, "lần hai")
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	require.Equal(t, fiber.StatusBadRequest, fe.Code)
}

func TestCancelInvoice_PaidInvoiceKeepsReceivedMoney(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	contract := seedActiveContract(t, db, 1_000_000)

	_, err := GenerateMonthlyInvoices(ctx, db, testRates, 5, 2026)
	require.NoError(t, err)

	var invoice billingModel.Invoice
	require.NoError(t, db.First(&invoice, "invoice_contract_id = ?", contract.ContractID).Error)
	require.NoError(t, db.Model(&billingModel.Invoice{}).
		Where("invoice_id = ?", invoice.InvoiceID).
		Updates(map[string]any{
			"invoice_paid_amount":      600_000,
			"invoice_remaining_amount": 400_000,
			"invoice_status":           billingModel.InvoiceStatusPartial,
		}).Error)

	// hủy được hóa đơn đã nhận tiền, nhưng tiền đã vào không đảo lại
	got, err := CancelInvoice(ctx, db, invoice.InvoiceID, "Thu sai đối tượng")
	require.NoError(t, err)
	require.Equal(t, billingModel.InvoiceStatusCancelled, got.InvoiceStatus)

	var kept billingModel.Invoice
	require.NoError(t, db.First(&kept, "invoice_id = ?", invoice.InvoiceID).Error)
	require.Equal(t, billingModel.InvoiceStatusCancelled, kept.InvoiceStatus)
	require.Equal(t, 600_000.0, kept.InvoicePaidAmount)
	require.Equal(t, 400_000.0, kept.InvoiceRemainingAmount)
}

func TestUpsertUtilityConfig(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	cfg, err := UpsertUtilityConfig(ctx, db, billingModel.UtilityTypeElectricity, 3_500)
	require.NoError(t, err)
	require.Equal(t, 3_500.0, cfg.UtilityConfigPricePerUnit)

	cfg, err = UpsertUtilityConfig(ctx, db, billingModel.UtilityTypeElectricity, 4_000)
	require.NoError(t, err)
	require.Equal(t, 4_000.0, cfg.UtilityConfigPricePerUnit)

	rates := &ConfigRateSource{DB: db}
	rate, err := rates.Rate(ctx, billingModel.UtilityTypeElectricity)
	require.NoError(t, err)
	require.Equal(t, 4_000.0, rate)

	var count int64
	require.NoError(t, db.Model(&billingModel.UtilityConfig{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	_, err = UpsertUtilityConfig(ctx, db, "GAS", 100)
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	require.Equal(t, fiber.StatusBadRequest, fe.Code)
}

// Luồng đầy đủ: đặt giường -> duyệt -> ghi chỉ số -> phát hành kỳ.
func TestEndToEnd_BookApproveReadingGenerate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	gender := userModel.UserGenderMale
	student := userModel.User{
		UserFullName: "Tran Van B",
		UserEmail:    "b@ktx.vn",
		UserGender:   &gender,
		UserRole:     userModel.UserRoleStudent,
	}
	require.NoError(t, db.Create(&student).Error)

	room := seedRoom(t, db, "P401", 1_500_000)
	bed := inventoryModel.Bed{BedRoomID: room.RoomID, BedLabel: "A1", BedStatus: inventoryModel.BedStatusAvailable}
	require.NoError(t, db.Create(&bed).Error)

	start := time.Now()
	contract, err := contractService.BookBed(ctx, db, student.UserID, bed.BedID, start.AddDate(0, 6, 0))
	require.NoError(t, err)

	_, err = contractService.UpdateStatus(ctx, db, contract.ContractID, contractModel.ContractStatusActive)
	require.NoError(t, err)

	_, err = RecordUtilityBatch(ctx, db, uuid.New(), 6, 2026, []UtilityReadingInput{
		{RoomID: room.RoomID, ElectricIndex: 80, WaterIndex: 10},
	})
	require.NoError(t, err)

	result, err := GenerateMonthlyInvoices(ctx, db, testRates, 6, 2026)
	require.NoError(t, err)
	require.Equal(t, 1, result.UtilityCreated)
	require.Equal(t, 1, result.PersonalCreated)

	// hóa đơn kỳ đầu (duyệt) + điện nước + tiền phòng tháng
	var count int64
	require.NoError(t, db.Model(&billingModel.Invoice{}).Count(&count).Error)
	require.Equal(t, int64(3), count)
}
