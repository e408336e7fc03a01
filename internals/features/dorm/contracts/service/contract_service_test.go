// file: internals/features/dorm/contracts/service/contract_service_test.go
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

	billingModel "ktx_backend/internals/features/finance/billing/model"

	contractModel "ktx_backend/internals/features/dorm/contracts/model"
	inventoryModel "ktx_backend/internals/features/dorm/inventory/model"
	userModel "ktx_backend/internals/features/users/users/model"
)

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
		&contractModel.LiquidationRecord{},
		&billingModel.Invoice{},
	))
	return db
}

func seedStudent(t *testing.T, db *gorm.DB, email, gender string) *userModel.User {
	t.Helper()
	g := gender
	u := userModel.User{
		UserFullName: "Nguyen Van A",
		UserEmail:    email,
		UserGender:   &g,
		UserRole:     userModel.UserRoleStudent,
	}
	require.NoError(t, db.Create(&u).Error)
	return &u
}

func seedRoomWithBed(t *testing.T, db *gorm.DB, code, genderType string, basePrice float64) (*inventoryModel.Room, *inventoryModel.Bed) {
	t.Helper()
	room := inventoryModel.Room{
		RoomBuildingID: seedBuilding(t, db, code),
		RoomCode:       code,
		RoomGenderType: genderType,
		RoomStatus:     inventoryModel.RoomStatusAvailable,
		RoomBasePrice:  basePrice,
	}
	require.NoError(t, db.Create(&room).Error)

	bed := inventoryModel.Bed{
		BedRoomID: room.RoomID,
		BedLabel:  "A1",
		BedStatus: inventoryModel.BedStatusAvailable,
	}
	require.NoError(t, db.Create(&bed).Error)
	return &room, &bed
}

func seedBuilding(t *testing.T, db *gorm.DB, tag string) uuid.UUID {
	t.Helper()
	campus := inventoryModel.Campus{CampusName: "Cơ sở 1"}
	require.NoError(t, db.Create(&campus).Error)

	b := inventoryModel.Building{
		BuildingCampusID: campus.CampusID,
		BuildingCode:     "B-" + tag,
	}
	require.NoError(t, db.Create(&b).Error)
	return b.BuildingID
}

func TestCalculateMonths(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.Equal(t, 1, CalculateMonths(base, base.AddDate(0, 0, 10)))
	require.Equal(t, 1, CalculateMonths(base, base.AddDate(0, 0, 30)))
	require.Equal(t, 2, CalculateMonths(base, base.AddDate(0, 0, 31)))
	require.Equal(t, 2, CalculateMonths(base, base.AddDate(0, 0, 45)))
	require.Equal(t, 6, CalculateMonths(base, base.AddDate(0, 0, 180)))
	// khoảng rỗng hoặc âm vẫn tính tối thiểu 1 tháng
	require.Equal(t, 1, CalculateMonths(base, base))
	require.Equal(t, 1, CalculateMonths(base, base.AddDate(0, 0, -5)))
}

func TestBookBed_HappyPath(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	student := seedStudent(t, db, "a@ktx.vn", userModel.UserGenderMale)
	_, bed := seedRoomWithBed(t, db, "P101", inventoryModel.RoomGenderMale, 1_200_000)

	start := time.Now()
	contract, err := BookBed(ctx, db, student.UserID, bed.BedID, start.AddDate(0, 6, 0))
	require.NoError(t, err)
	require.Equal(t, contractModel.ContractStatusPending, contract.ContractStatus)
	require.Equal(t, 1_200_000.0, contract.ContractPricePerMonth)
	require.Equal(t, 1_200_000.0, contract.ContractDepositAmount)
	// ngày bắt đầu do server chốt, không phải client gửi lên
	require.WithinDuration(t, time.Now().UTC(), contract.ContractStartDate, time.Minute)

	var gotBed inventoryModel.Bed
	require.NoError(t, db.First(&gotBed, "bed_id = ?", bed.BedID).Error)
	require.Equal(t, inventoryModel.BedStatusReserved, gotBed.BedStatus)
	require.True(t, gotBed.BedIsOccupied)
}

func TestBookBed_BedAlreadyTaken(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	s1 := seedStudent(t, db, "a@ktx.vn", userModel.UserGenderMale)
	s2 := seedStudent(t, db, "b@ktx.vn", userModel.UserGenderMale)
	_, bed := seedRoomWithBed(t, db, "P101", inventoryModel.RoomGenderMale, 1_000_000)

	start := time.Now()
	_, err := BookBed(ctx, db, s1.UserID, bed.BedID, start.AddDate(0, 6, 0))
	require.NoError(t, err)

	_, err = BookBed(ctx, db, s2.UserID, bed.BedID, start.AddDate(0, 6, 0))
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	require.Equal(t, fiber.StatusConflict, fe.Code)
}

func TestBookBed_GenderMismatch(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	student := seedStudent(t, db, "a@ktx.vn", userModel.UserGenderFemale)
	_, bed := seedRoomWithBed(t, db, "P101", inventoryModel.RoomGenderMale, 1_000_000)

	start := time.Now()
	_, err := BookBed(ctx, db, student.UserID, bed.BedID, start.AddDate(0, 6, 0))
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	require.Equal(t, fiber.StatusBadRequest, fe.Code)
}

func TestBookBed_MixedRoomAllowsUndeclaredGender(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	student := seedStudent(t, db, "a@ktx.vn", userModel.UserGenderFemale)
	student.UserGender = nil
	require.NoError(t, db.Model(&userModel.User{}).
		Where("user_id = ?", student.UserID).
		Update("user_gender", nil).Error)

	_, bed := seedRoomWithBed(t, db, "P101", inventoryModel.RoomGenderMixed, 1_000_000)

	start := time.Now()
	_, err := BookBed(ctx, db, student.UserID, bed.BedID, start.AddDate(0, 6, 0))
	require.NoError(t, err)
}

func TestBookBed_RejectsSecondOpenContract(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	student := seedStudent(t, db, "a@ktx.vn", userModel.UserGenderMale)
	_, bed1 := seedRoomWithBed(t, db, "P101", inventoryModel.RoomGenderMale, 1_000_000)
	_, bed2 := seedRoomWithBed(t, db, "P102", inventoryModel.RoomGenderMale, 1_000_000)

	start := time.Now()
	_, err := BookBed(ctx, db, student.UserID, bed1.BedID, start.AddDate(0, 6, 0))
	require.NoError(t, err)

	_, err = BookBed(ctx, db, student.UserID, bed2.BedID, start.AddDate(0, 6, 0))
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	require.Equal(t, fiber.StatusBadRequest, fe.Code)
}

func TestBookBed_RejectsEndDateNotAfterNow(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	student := seedStudent(t, db, "a@ktx.vn", userModel.UserGenderMale)
	_, bed := seedRoomWithBed(t, db, "P101", inventoryModel.RoomGenderMale, 1_000_000)

	var fe *fiber.Error

	// ngày kết thúc trong quá khứ
	_, err := BookBed(ctx, db, student.UserID, bed.BedID, time.Now().AddDate(0, 0, -1))
	require.ErrorAs(t, err, &fe)
	require.Equal(t, fiber.StatusBadRequest, fe.Code)

	// hợp đồng lùi hẳn về quá khứ cũng không qua được: start luôn là bây giờ
	_, err = BookBed(ctx, db, student.UserID, bed.BedID, time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC))
	require.ErrorAs(t, err, &fe)
	require.Equal(t, fiber.StatusBadRequest, fe.Code)

	// giường vẫn TRONG sau các lần đặt hỏng
	var gotBed inventoryModel.Bed
	require.NoError(t, db.First(&gotBed, "bed_id = ?", bed.BedID).Error)
	require.Equal(t, inventoryModel.BedStatusAvailable, gotBed.BedStatus)
}

func TestUpdateStatus_ApproveCreatesFirstInvoice(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	student := seedStudent(t, db, "a@ktx.vn", userModel.UserGenderMale)
	room, bed := seedRoomWithBed(t, db, "P101", inventoryModel.RoomGenderMale, 1_500_000)

	start := time.Now()
	contract, err := BookBed(ctx, db, student.UserID, bed.BedID, start.AddDate(0, 6, 0))
	require.NoError(t, err)

	got, err := UpdateStatus(ctx, db, contract.ContractID, contractModel.ContractStatusActive)
	require.NoError(t, err)
	require.Equal(t, contractModel.ContractStatusActive, got.ContractStatus)

	var gotBed inventoryModel.Bed
	require.NoError(t, db.First(&gotBed, "bed_id = ?", bed.BedID).Error)
	require.Equal(t, inventoryModel.BedStatusOccupied, gotBed.BedStatus)

	var gotRoom inventoryModel.Room
	require.NoError(t, db.First(&gotRoom, "room_id = ?", room.RoomID).Error)
	require.Equal(t, 1, gotRoom.RoomCurrentOccupancy)

	var invoice billingModel.Invoice
	require.NoError(t, db.First(&invoice, "invoice_contract_id = ?", contract.ContractID).Error)
	require.Equal(t, 3_000_000.0, invoice.InvoiceTotalAmount) // 1 tháng + cọc
	require.Equal(t, billingModel.InvoiceStatusUnpaid, invoice.InvoiceStatus)
	require.NotNil(t, invoice.InvoiceDueDate)

	details := billingModel.ParseInvoiceDetails(invoice.InvoiceDetails)
	require.Equal(t, billingModel.InvoiceKindFirstPayment, details.Kind)
	require.NotNil(t, details.FirstPayment)
	require.Equal(t, 1_500_000.0, details.FirstPayment.Deposit)
}

func TestUpdateStatus_TerminateFreesBedAndCancelsUnpaid(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	student := seedStudent(t, db, "a@ktx.vn", userModel.UserGenderMale)
	room, bed := seedRoomWithBed(t, db, "P101", inventoryModel.RoomGenderMale, 1_000_000)

	start := time.Now()
	contract, err := BookBed(ctx, db, student.UserID, bed.BedID, start.AddDate(0, 6, 0))
	require.NoError(t, err)
	_, err = UpdateStatus(ctx, db, contract.ContractID, contractModel.ContractStatusActive)
	require.NoError(t, err)

	_, err = UpdateStatus(ctx, db, contract.ContractID, contractModel.ContractStatusTerminated)
	require.NoError(t, err)

	var gotBed inventoryModel.Bed
	require.NoError(t, db.First(&gotBed, "bed_id = ?", bed.BedID).Error)
	require.Equal(t, inventoryModel.BedStatusAvailable, gotBed.BedStatus)
	require.False(t, gotBed.BedIsOccupied)

	var gotRoom inventoryModel.Room
	require.NoError(t, db.First(&gotRoom, "room_id = ?", room.RoomID).Error)
	require.Equal(t, 0, gotRoom.RoomCurrentOccupancy)

	var invoice billingModel.Invoice
	require.NoError(t, db.First(&invoice, "invoice_contract_id = ?", contract.ContractID).Error)
	require.Equal(t, billingModel.InvoiceStatusCancelled, invoice.InvoiceStatus)
	details := billingModel.ParseInvoiceDetails(invoice.InvoiceDetails)
	require.Equal(t, "Contract Terminated by Admin", details.CancelReason)
}

func TestUpdateStatus_ExpireFreesBedKeepsDebt(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	student := seedStudent(t, db, "a@ktx.vn", userModel.UserGenderMale)
	_, bed := seedRoomWithBed(t, db, "P101", inventoryModel.RoomGenderMale, 1_000_000)

	start := time.Now()
	contract, err := BookBed(ctx, db, student.UserID, bed.BedID, start.AddDate(0, 6, 0))
	require.NoError(t, err)
	_, err = UpdateStatus(ctx, db, contract.ContractID, contractModel.ContractStatusActive)
	require.NoError(t, err)

	_, err = UpdateStatus(ctx, db, contract.ContractID, contractModel.ContractStatusExpired)
	require.NoError(t, err)

	var gotBed inventoryModel.Bed
	require.NoError(t, db.First(&gotBed, "bed_id = ?", bed.BedID).Error)
	require.Equal(t, inventoryModel.BedStatusAvailable, gotBed.BedStatus)

	// hết hạn tự nhiên thì công nợ giữ nguyên để thu tiếp
	var invoice billingModel.Invoice
	require.NoError(t, db.First(&invoice, "invoice_contract_id = ?", contract.ContractID).Error)
	require.Equal(t, billingModel.InvoiceStatusUnpaid, invoice.InvoiceStatus)
}

func TestUpdateStatus_InvalidTransition(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	student := seedStudent(t, db, "a@ktx.vn", userModel.UserGenderMale)
	_, bed := seedRoomWithBed(t, db, "P101", inventoryModel.RoomGenderMale, 1_000_000)

	start := time.Now()
	contract, err := BookBed(ctx, db, student.UserID, bed.BedID, start.AddDate(0, 6, 0))
	require.NoError(t, err)

	// CHO_DUYET không nhảy thẳng sang HET_HAN được
	_, err = UpdateStatus(ctx, db, contract.ContractID, contractModel.ContractStatusExpired)
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	require.Equal(t, fiber.StatusBadRequest, fe.Code)
}

func TestCancelContract_OnlyOwnerAndOnlyPending(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	student := seedStudent(t, db, "a@ktx.vn", userModel.UserGenderMale)
	other := seedStudent(t, db, "b@ktx.vn", userModel.UserGenderMale)
	_, bed := seedRoomWithBed(t, db, "P101", inventoryModel.RoomGenderMale, 1_000_000)

	start := time.Now()
	contract, err := BookBed(ctx, db, student.UserID, bed.BedID, start.AddDate(0, 6, 0))
	require.NoError(t, err)

	_, err = CancelContract(ctx, db, contract.ContractID, other.UserID)
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	require.Equal(t, fiber.StatusForbidden, fe.Code)

	_, err = CancelContract(ctx, db, contract.ContractID, student.UserID)
	require.NoError(t, err)

	// hủy đơn chờ duyệt là xóa hẳn bản ghi, giường trả về TRONG
	var gone contractModel.Contract
	err = db.First(&gone, "contract_id = ?", contract.ContractID).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var gotBed inventoryModel.Bed
	require.NoError(t, db.First(&gotBed, "bed_id = ?", bed.BedID).Error)
	require.Equal(t, inventoryModel.BedStatusAvailable, gotBed.BedStatus)
	require.False(t, gotBed.BedIsOccupied)

	_, err = CancelContract(ctx, db, contract.ContractID, student.UserID)
	require.ErrorAs(t, err, &fe)
	require.Equal(t, fiber.StatusNotFound, fe.Code)
}

func TestCancelContract_BlockedWhenInvoicePaid(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	student := seedStudent(t, db, "a@ktx.vn", userModel.UserGenderMale)
	_, bed := seedRoomWithBed(t, db, "P101", inventoryModel.RoomGenderMale, 1_000_000)

	start := time.Now()
	contract, err := BookBed(ctx, db, student.UserID, bed.BedID, start.AddDate(0, 6, 0))
	require.NoError(t, err)

	invoice := billingModel.Invoice{
		InvoiceContractID:  &contract.ContractID,
		InvoiceTotalAmount: 2_000_000,
		InvoicePaidAmount:  2_000_000,
		InvoiceStatus:      billingModel.InvoiceStatusPaid,
	}
	require.NoError(t, db.Create(&invoice).Error)

	_, err = CancelContract(ctx, db, contract.ContractID, student.UserID)
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	require.Equal(t, fiber.StatusBadRequest, fe.Code)

	// hợp đồng và hóa đơn vẫn nguyên vẹn
	var kept contractModel.Contract
	require.NoError(t, db.First(&kept, "contract_id = ?", contract.ContractID).Error)
	require.Equal(t, contractModel.ContractStatusPending, kept.ContractStatus)
}

func TestGetByID_StudentCannotReadOthers(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	student := seedStudent(t, db, "a@ktx.vn", userModel.UserGenderMale)
	other := seedStudent(t, db, "b@ktx.vn", userModel.UserGenderMale)
	_, bed := seedRoomWithBed(t, db, "P101", inventoryModel.RoomGenderMale, 1_000_000)

	start := time.Now()
	contract, err := BookBed(ctx, db, student.UserID, bed.BedID, start.AddDate(0, 6, 0))
	require.NoError(t, err)

	_, err = GetByID(ctx, db, contract.ContractID, other.UserID, userModel.UserRoleStudent)
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	require.Equal(t, fiber.StatusForbidden, fe.Code)

	got, err := GetByID(ctx, db, contract.ContractID, other.UserID, userModel.UserRoleManager)
	require.NoError(t, err)
	require.Equal(t, contract.ContractID, got.ContractID)
}
