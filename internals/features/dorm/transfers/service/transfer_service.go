// file: internals/features/dorm/transfers/service/transfer_service.go
package service

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	billingModel "ktx_backend/internals/features/finance/billing/model"

	contractModel "ktx_backend/internals/features/dorm/contracts/model"
	inventoryModel "ktx_backend/internals/features/dorm/inventory/model"
	transferModel "ktx_backend/internals/features/dorm/transfers/model"
	userModel "ktx_backend/internals/features/users/users/model"
)

// nowFn cho phép test cố định "hôm nay" khi tính tiền hoàn theo ngày.
var nowFn = time.Now

/* =========================================================
   CREATE / REJECT
========================================================= */

// CreateTransferRequest: sinh viên đang ở mới được xin chuyển,
// mỗi người tối đa một yêu cầu CHO_DUYET.
func CreateTransferRequest(ctx context.Context, db *gorm.DB, studentID uuid.UUID, targetBedID *uuid.UUID, reason string) (*transferModel.TransferRequest, error) {
	var contract contractModel.Contract
	err := db.WithContext(ctx).
		Where("contract_student_id = ? AND contract_status = ?", studentID, contractModel.ContractStatusActive).
		First(&contract).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Bạn không có hợp đồng đang hiệu lực")
	}
	if err != nil {
		return nil, err
	}

	var pending int64
	if err := db.WithContext(ctx).Model(&transferModel.TransferRequest{}).
		Where("transfer_student_id = ? AND transfer_status = ?", studentID, transferModel.TransferStatusPending).
		Count(&pending).Error; err != nil {
		return nil, err
	}
	if pending > 0 {
		return nil, fiber.NewError(fiber.StatusConflict, "Bạn đang có yêu cầu chuyển phòng chờ duyệt")
	}

	transfer := transferModel.TransferRequest{
		TransferStudentID:   studentID,
		TransferContractID:  contract.ContractID,
		TransferTargetBedID: targetBedID,
		TransferReason:      reason,
		TransferStatus:      transferModel.TransferStatusPending,
	}
	if err := db.WithContext(ctx).Create(&transfer).Error; err != nil {
		return nil, err
	}
	return &transfer, nil
}

func RejectTransfer(ctx context.Context, db *gorm.DB, transferID uuid.UUID, adminResponse *string) (*transferModel.TransferRequest, error) {
	var transfer transferModel.TransferRequest
	if err := db.WithContext(ctx).First(&transfer, "transfer_id = ?", transferID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "Yêu cầu chuyển phòng không tồn tại")
		}
		return nil, err
	}
	if transfer.TransferStatus != transferModel.TransferStatusPending {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Yêu cầu đã được xử lý")
	}

	transfer.TransferStatus = transferModel.TransferStatusRejected
	transfer.TransferAdminResponse = adminResponse
	if err := db.WithContext(ctx).Model(&transferModel.TransferRequest{}).
		Where("transfer_id = ?", transferID).
		Updates(map[string]any{
			"transfer_status":         transferModel.TransferStatusRejected,
			"transfer_admin_response": adminResponse,
		}).Error; err != nil {
		return nil, err
	}
	return &transfer, nil
}

/* =========================================================
   APPROVE (reconciliation)
========================================================= */

type ApproveResult struct {
	Transfer          *transferModel.TransferRequest
	OldContract       *contractModel.Contract
	NewContract       *contractModel.Contract
	SettlementInvoice *billingModel.Invoice // nil khi tiền cũ bù đủ tiền mới
	RefundRentAmount  float64
}

// ApproveTransfer duyệt chuyển phòng trong MỘT transaction:
// giữ giường mới (CAS), chấm dứt hợp đồng cũ (trả giường, hủy hóa đơn
// chưa trả với lý do chuyển phòng), mở hợp đồng mới CHO_DUYET giữ ngày
// kết thúc gốc, rồi quyết toán chênh lệch:
//
//	phải thu = max(0, (tiền phòng mới + cọc mới) - (cọc cũ + tiền phòng hoàn))
//
// tiền phòng hoàn tính theo ngày chưa ở khi có hóa đơn đã trả với hạn
// nộp trong tháng hiện tại.
func ApproveTransfer(ctx context.Context, db *gorm.DB, transferID uuid.UUID, targetBedID *uuid.UUID, adminResponse *string) (*ApproveResult, error) {
	var transfer transferModel.TransferRequest
	if err := db.WithContext(ctx).First(&transfer, "transfer_id = ?", transferID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "Yêu cầu chuyển phòng không tồn tại")
		}
		return nil, err
	}
	if transfer.TransferStatus != transferModel.TransferStatusPending {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Yêu cầu đã được xử lý")
	}

	// admin có thể chỉ định giường khác với nguyện vọng
	bedID := transfer.TransferTargetBedID
	if targetBedID != nil {
		bedID = targetBedID
	}
	if bedID == nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Chưa chỉ định giường chuyển đến")
	}

	var oldContract contractModel.Contract
	if err := db.WithContext(ctx).First(&oldContract, "contract_id = ?", transfer.TransferContractID).Error; err != nil {
		return nil, err
	}
	if oldContract.ContractStatus != contractModel.ContractStatusActive {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Hợp đồng hiện tại không còn hiệu lực")
	}
	if *bedID == oldContract.ContractBedID {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Giường chuyển đến trùng giường hiện tại")
	}

	var newBed inventoryModel.Bed
	if err := db.WithContext(ctx).First(&newBed, "bed_id = ?", *bedID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "Giường chuyển đến không tồn tại")
		}
		return nil, err
	}

	var newRoom inventoryModel.Room
	if err := db.WithContext(ctx).First(&newRoom, "room_id = ?", newBed.BedRoomID).Error; err != nil {
		return nil, err
	}
	if newRoom.RoomStatus == inventoryModel.RoomStatusMaintenance {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Phòng chuyển đến đang bảo trì")
	}
	if newRoom.RoomGenderType != inventoryModel.RoomGenderMixed {
		var student userModel.User
		if err := db.WithContext(ctx).First(&student, "user_id = ?", transfer.TransferStudentID).Error; err != nil {
			return nil, err
		}
		if student.UserGender == nil || *student.UserGender != newRoom.RoomGenderType {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Giới tính không phù hợp với phòng chuyển đến")
		}
	}

	now := nowFn()
	result := &ApproveResult{Transfer: &transfer, OldContract: &oldContract}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// giữ giường mới bằng CAS như luồng đặt giường
		res := tx.Model(&inventoryModel.Bed{}).
			Where("bed_id = ? AND bed_status = ?", *bedID, inventoryModel.BedStatusAvailable).
			Updates(map[string]any{
				"bed_status":      inventoryModel.BedStatusReserved,
				"bed_is_occupied": true,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusConflict, "Giường chuyển đến đã có người ở hoặc đang được giữ chỗ")
		}

		// chấm dứt hợp đồng cũ: trả giường, trừ sĩ số, hủy hóa đơn chưa trả
		if err := releaseOldContract(tx, &oldContract); err != nil {
			return err
		}
		if err := tx.Model(&contractModel.Contract{}).
			Where("contract_id = ?", oldContract.ContractID).
			Update("contract_status", contractModel.ContractStatusTerminated).Error; err != nil {
			return err
		}

		// hợp đồng mới giữ ngày kết thúc gốc nếu còn ở tương lai
		endDate := oldContract.ContractEndDate
		if !endDate.After(now) {
			endDate = now.AddDate(0, 0, 180)
		}
		newContract := contractModel.Contract{
			ContractStudentID:     transfer.TransferStudentID,
			ContractBedID:         *bedID,
			ContractStartDate:     now,
			ContractEndDate:       endDate,
			ContractPricePerMonth: newRoom.RoomBasePrice,
			ContractDepositAmount: newRoom.RoomBasePrice,
			ContractStatus:        contractModel.ContractStatusPending,
		}
		if err := tx.Create(&newContract).Error; err != nil {
			return err
		}
		result.NewContract = &newContract

		refund, err := proratedRefund(tx, &oldContract, now)
		if err != nil {
			return err
		}
		result.RefundRentAmount = refund

		// quyết toán: tiền cũ (cọc + hoàn) bù vào đợt đầu hợp đồng mới
		originalTotal := newContract.ContractPricePerMonth + newContract.ContractDepositAmount
		credit := oldContract.ContractDepositAmount + refund
		settlement := originalTotal - credit
		if settlement < 0 {
			settlement = 0
		}
		if settlement > 0 {
			title := "Hóa đơn chuyển phòng (đã cấn trừ cọc cũ)"
			due := now.AddDate(0, 0, 3)
			details := billingModel.InvoiceDetails{
				Kind: billingModel.InvoiceKindTransferFee,
				Transfer: &billingModel.TransferFeeDetail{
					OldContractID:    oldContract.ContractID.String(),
					OldDepositCredit: oldContract.ContractDepositAmount,
					RefundRentAmount: refund,
					OriginalTotal:    originalTotal,
				},
			}
			invoice := billingModel.Invoice{
				InvoiceContractID:      &newContract.ContractID,
				InvoiceTitle:           &title,
				InvoiceTotalAmount:     settlement,
				InvoiceRemainingAmount: settlement,
				InvoiceStatus:          billingModel.InvoiceStatusUnpaid,
				InvoiceDueDate:         &due,
				InvoiceDetails:         details.JSON(),
			}
			if err := tx.Create(&invoice).Error; err != nil {
				return err
			}
			result.SettlementInvoice = &invoice
		}

		transfer.TransferStatus = transferModel.TransferStatusApproved
		transfer.TransferAdminResponse = adminResponse
		return tx.Model(&transferModel.TransferRequest{}).
			Where("transfer_id = ?", transfer.TransferID).
			Updates(map[string]any{
				"transfer_status":         transferModel.TransferStatusApproved,
				"transfer_admin_response": adminResponse,
				"transfer_target_bed_id":  *bedID,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func releaseOldContract(tx *gorm.DB, contract *contractModel.Contract) error {
	var bed inventoryModel.Bed
	if err := tx.First(&bed, "bed_id = ?", contract.ContractBedID).Error; err != nil {
		return err
	}
	if err := tx.Model(&inventoryModel.Bed{}).
		Where("bed_id = ?", contract.ContractBedID).
		Updates(map[string]any{
			"bed_status":      inventoryModel.BedStatusAvailable,
			"bed_is_occupied": false,
		}).Error; err != nil {
		return err
	}
	if bed.BedStatus == inventoryModel.BedStatusOccupied {
		if err := tx.Model(&inventoryModel.Room{}).
			Where("room_id = ? AND room_current_occupancy > 0", bed.BedRoomID).
			Update("room_current_occupancy", gorm.Expr("room_current_occupancy - 1")).Error; err != nil {
			return err
		}
	}

	var invoices []billingModel.Invoice
	if err := tx.
		Where("invoice_contract_id = ? AND invoice_status = ?", contract.ContractID, billingModel.InvoiceStatusUnpaid).
		Find(&invoices).Error; err != nil {
		return err
	}
	for i := range invoices {
		details := billingModel.ParseInvoiceDetails(invoices[i].InvoiceDetails)
		details.CancelReason = "Transferred to new room"
		if err := tx.Model(&billingModel.Invoice{}).
			Where("invoice_id = ?", invoices[i].InvoiceID).
			Updates(map[string]any{
				"invoice_status":  billingModel.InvoiceStatusCancelled,
				"invoice_details": details.JSON(),
			}).Error; err != nil {
			return err
		}
	}
	return nil
}

// proratedRefund: hợp đồng cũ có hóa đơn ĐÃ THANH TOÁN với hạn nộp rơi
// trong tháng hiện tại (tiền phòng tháng hoặc kỳ đầu) thì hoàn phần ngày
// chưa ở:
//
//	refund = tiền phòng / số ngày trong tháng × (số ngày trong tháng - hôm nay)
func proratedRefund(tx *gorm.DB, oldContract *contractModel.Contract, now time.Time) (float64, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	nextMonthStart := monthStart.AddDate(0, 1, 0)

	var paidThisMonth int64
	if err := tx.Model(&billingModel.Invoice{}).
		Where("invoice_contract_id = ? AND invoice_status = ? AND invoice_due_date >= ? AND invoice_due_date < ?",
			oldContract.ContractID, billingModel.InvoiceStatusPaid, monthStart, nextMonthStart).
		Count(&paidThisMonth).Error; err != nil {
		return 0, err
	}
	if paidThisMonth == 0 {
		return 0, nil
	}

	daysInMonth := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
	remainingDays := daysInMonth - now.Day()
	if remainingDays <= 0 {
		return 0, nil
	}
	return oldContract.ContractPricePerMonth / float64(daysInMonth) * float64(remainingDays), nil
}

/* =========================================================
   QUERIES
========================================================= */

func GetTransferByID(ctx context.Context, db *gorm.DB, transferID uuid.UUID) (*transferModel.TransferRequest, error) {
	var transfer transferModel.TransferRequest
	if err := db.WithContext(ctx).First(&transfer, "transfer_id = ?", transferID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "Yêu cầu chuyển phòng không tồn tại")
		}
		return nil, err
	}
	return &transfer, nil
}

func ListTransfersByStudent(ctx context.Context, db *gorm.DB, studentID uuid.UUID) ([]transferModel.TransferRequest, error) {
	var transfers []transferModel.TransferRequest
	err := db.WithContext(ctx).
		Where("transfer_student_id = ?", studentID).
		Order("transfer_created_at DESC").
		Find(&transfers).Error
	return transfers, err
}

func ListPendingTransfers(ctx context.Context, db *gorm.DB) ([]transferModel.TransferRequest, error) {
	var transfers []transferModel.TransferRequest
	err := db.WithContext(ctx).
		Where("transfer_status = ?", transferModel.TransferStatusPending).
		Order("transfer_created_at ASC").
		Find(&transfers).Error
	return transfers, err
}
