// file: internals/features/dorm/contracts/service/liquidation_service_test.go
package service

import (
	"context"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	billingModel "ktx_backend/internals/features/finance/billing/model"

	contractModel "ktx_backend/internals/features/dorm/contracts/model"
	inventoryModel "ktx_backend/internals/features/dorm/inventory/model"
	userModel "ktx_backend/internals/features/users/users/model"
)

func TestLiquidateContract_RefundAndRelease(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	student := seedStudent(t, db, "a@ktx.vn", userModel.UserGenderMale)
	admin := seedStudent(t, db, "admin@ktx.vn", userModel.UserGenderMale)
	_, bed := seedRoomWithBed(t, db, "P101", inventoryModel.RoomGenderMale, 2_000_000)

	start := time.Now()
	contract, err := BookBed(ctx, db, student.UserID, bed.BedID, start.AddDate(0, 6, 0))
	require.NoError(t, err)
	_, err = UpdateStatus(ctx, db, contract.ContractID, contractModel.ContractStatusActive)
	require.NoError(t, err)

	record, err := LiquidateContract(ctx, db, contract.ContractID, admin.UserID, 300_000, 200_000, nil)
	require.NoError(t, err)
	require.Equal(t, 2_000_000.0, record.LiquidationRefundDepositAmount)
	require.Equal(t, 1_500_000.0, record.LiquidationTotalRefundToStudent)

	var gotContract contractModel.Contract
	require.NoError(t, db.First(&gotContract, "contract_id = ?", contract.ContractID).Error)
	require.Equal(t, contractModel.ContractStatusTerminated, gotContract.ContractStatus)

	var gotBed inventoryModel.Bed
	require.NoError(t, db.First(&gotBed, "bed_id = ?", bed.BedID).Error)
	require.Equal(t, inventoryModel.BedStatusAvailable, gotBed.BedStatus)

	// thanh lý không đụng tới công nợ: hóa đơn kỳ đầu vẫn chưa thanh toán
	var invoice billingModel.Invoice
	require.NoError(t, db.First(&invoice, "invoice_contract_id = ?", contract.ContractID).Error)
	require.Equal(t, billingModel.InvoiceStatusUnpaid, invoice.InvoiceStatus)
}

func TestLiquidateContract_NegativeBalanceKeepsSign(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	student := seedStudent(t, db, "a@ktx.vn", userModel.UserGenderMale)
	admin := seedStudent(t, db, "admin@ktx.vn", userModel.UserGenderMale)
	_, bed := seedRoomWithBed(t, db, "P101", inventoryModel.RoomGenderMale, 1_000_000)

	start := time.Now()
	contract, err := BookBed(ctx, db, student.UserID, bed.BedID, start.AddDate(0, 6, 0))
	require.NoError(t, err)
	_, err = UpdateStatus(ctx, db, contract.ContractID, contractModel.ContractStatusActive)
	require.NoError(t, err)

	// phạt + hư hỏng vượt cọc -> số dư âm, không bị kẹp về 0
	record, err := LiquidateContract(ctx, db, contract.ContractID, admin.UserID, 800_000, 500_000, nil)
	require.NoError(t, err)
	require.Equal(t, -300_000.0, record.LiquidationTotalRefundToStudent)
}

func TestLiquidateContract_RejectsDoubleLiquidation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	student := seedStudent(t, db, "a@ktx.vn", userModel.UserGenderMale)
	admin := seedStudent(t, db, "admin@ktx.vn", userModel.UserGenderMale)
	_, bed := seedRoomWithBed(t, db, "P101", inventoryModel.RoomGenderMale, 1_000_000)

	start := time.Now()
	contract, err := BookBed(ctx, db, student.UserID, bed.BedID, start.AddDate(0, 6, 0))
	require.NoError(t, err)
	_, err = UpdateStatus(ctx, db, contract.ContractID, contractModel.ContractStatusActive)
	require.NoError(t, err)

	_, err = LiquidateContract(ctx, db, contract.ContractID, admin.UserID, 0, 0, nil)
	require.NoError(t, err)

	_, err = LiquidateContract(ctx, db, contract.ContractID, admin.UserID, 0, 0, nil)
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	require.Equal(t, fiber.StatusBadRequest, fe.Code) // đã CHAM_DUT nên fail từ check trạng thái
}

func TestLiquidateContract_RejectsPendingContract(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	student := seedStudent(t, db, "a@ktx.vn", userModel.UserGenderMale)
	admin := seedStudent(t, db, "admin@ktx.vn", userModel.UserGenderMale)
	_, bed := seedRoomWithBed(t, db, "P101", inventoryModel.RoomGenderMale, 1_000_000)

	start := time.Now()
	contract, err := BookBed(ctx, db, student.UserID, bed.BedID, start.AddDate(0, 6, 0))
	require.NoError(t, err)

	_, err = LiquidateContract(ctx, db, contract.ContractID, admin.UserID, 0, 0, nil)
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	require.Equal(t, fiber.StatusBadRequest, fe.Code)
}
