// file: internals/features/dorm/contracts/service/contract_service.go
package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	billingModel "ktx_backend/internals/features/finance/billing/model"

	contractModel "ktx_backend/internals/features/dorm/contracts/model"
	inventoryModel "ktx_backend/internals/features/dorm/inventory/model"
	userModel "ktx_backend/internals/features/users/users/model"
)

// CalculateMonths quy đổi khoảng ngày sang số tháng tính tiền:
// ceil(số ngày / 30), tối thiểu 1.
func CalculateMonths(start, end time.Time) int {
	days := end.Sub(start).Hours() / 24
	if days <= 0 {
		return 1
	}
	months := int(math.Ceil(days / 30))
	if months < 1 {
		return 1
	}
	return months
}

/* =========================================================
   BOOK BED
========================================================= */

// BookBed tạo hợp đồng CHO_DUYET và giữ giường. Ngày bắt đầu luôn là
// thời điểm đặt (server-side), client chỉ chọn ngày kết thúc.
// Giữ giường bằng CAS một câu UPDATE (TRONG -> DA_DAT): hai request
// cùng giường thì đúng một request thắng, request kia nhận 409.
func BookBed(ctx context.Context, db *gorm.DB, studentID, bedID uuid.UUID, endDate time.Time) (*contractModel.Contract, error) {
	startDate := time.Now().UTC()
	if !endDate.After(startDate) {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Ngày kết thúc hợp đồng phải sau ngày hiện tại")
	}

	var student userModel.User
	if err := db.WithContext(ctx).First(&student, "user_id = ?", studentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "Sinh viên không tồn tại")
		}
		return nil, err
	}
	if student.UserRole != userModel.UserRoleStudent {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Chỉ sinh viên mới được đặt giường")
	}

	var bed inventoryModel.Bed
	if err := db.WithContext(ctx).First(&bed, "bed_id = ?", bedID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "Giường không tồn tại")
		}
		return nil, err
	}

	var room inventoryModel.Room
	if err := db.WithContext(ctx).First(&room, "room_id = ?", bed.BedRoomID).Error; err != nil {
		return nil, err
	}
	if room.RoomStatus == inventoryModel.RoomStatusMaintenance {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Phòng đang bảo trì, không thể đặt")
	}

	// check giới tính: phòng không HON_HOP thì user phải khai báo và khớp
	if room.RoomGenderType != inventoryModel.RoomGenderMixed {
		if student.UserGender == nil || *student.UserGender != room.RoomGenderType {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Giới tính không phù hợp với phòng này")
		}
	}

	// mỗi sinh viên tối đa một hợp đồng đang mở
	var openCount int64
	if err := db.WithContext(ctx).Model(&contractModel.Contract{}).
		Where("contract_student_id = ? AND contract_status IN ?", studentID,
			[]string{contractModel.ContractStatusPending, contractModel.ContractStatusActive}).
		Count(&openCount).Error; err != nil {
		return nil, err
	}
	if openCount > 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Bạn đang có hợp đồng hiệu lực, không thể đặt thêm")
	}

	price := room.RoomBasePrice
	contract := contractModel.Contract{
		ContractStudentID:     studentID,
		ContractBedID:         bedID,
		ContractStartDate:     startDate,
		ContractEndDate:       endDate,
		ContractPricePerMonth: price,
		ContractDepositAmount: price, // đặt cọc = 1 tháng tiền phòng
		ContractStatus:        contractModel.ContractStatusPending,
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&inventoryModel.Bed{}).
			Where("bed_id = ? AND bed_status = ?", bedID, inventoryModel.BedStatusAvailable).
			Updates(map[string]any{
				"bed_status":      inventoryModel.BedStatusReserved,
				"bed_is_occupied": true,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusConflict, "Giường đã có người ở hoặc đang được giữ chỗ")
		}
		return tx.Create(&contract).Error
	})
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

/* =========================================================
   UPDATE STATUS (approve / expire / terminate)
========================================================= */

var allowedTransitions = map[string][]string{
	contractModel.ContractStatusPending: {contractModel.ContractStatusActive, contractModel.ContractStatusTerminated},
	contractModel.ContractStatusActive:  {contractModel.ContractStatusExpired, contractModel.ContractStatusTerminated},
}

func transitionAllowed(from, to string) bool {
	for _, t := range allowedTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// UpdateStatus chuyển trạng thái hợp đồng theo state machine.
// DANG_O: kích hoạt giường + phát hành hóa đơn kỳ đầu.
// CHAM_DUT / HET_HAN: trả giường + hủy hóa đơn chưa thanh toán.
func UpdateStatus(ctx context.Context, db *gorm.DB, contractID uuid.UUID, newStatus string) (*contractModel.Contract, error) {
	var contract contractModel.Contract
	if err := db.WithContext(ctx).First(&contract, "contract_id = ?", contractID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "Hợp đồng không tồn tại")
		}
		return nil, err
	}

	if contract.ContractStatus == newStatus {
		return &contract, nil
	}
	if !transitionAllowed(contract.ContractStatus, newStatus) {
		return nil, fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("Không thể chuyển trạng thái từ %s sang %s", contract.ContractStatus, newStatus))
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch newStatus {
		case contractModel.ContractStatusActive:
			if err := activateContract(tx, &contract); err != nil {
				return err
			}
		case contractModel.ContractStatusTerminated:
			if err := releaseContract(tx, &contract, "Contract Terminated by Admin"); err != nil {
				return err
			}
		case contractModel.ContractStatusExpired:
			// hết hạn tự nhiên: chỉ trả giường, hóa đơn còn nợ giữ nguyên để thu tiếp
			if err := releaseContract(tx, &contract, ""); err != nil {
				return err
			}
		}
		contract.ContractStatus = newStatus
		return tx.Model(&contractModel.Contract{}).
			Where("contract_id = ?", contract.ContractID).
			Update("contract_status", newStatus).Error
	})
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

// activateContract: giường DANG_O, phòng +1 chỗ, hóa đơn kỳ đầu
// (1 tháng tiền phòng + tiền cọc, hạn nộp +5 ngày).
func activateContract(tx *gorm.DB, contract *contractModel.Contract) error {
	if err := tx.Model(&inventoryModel.Bed{}).
		Where("bed_id = ?", contract.ContractBedID).
		Updates(map[string]any{
			"bed_status":      inventoryModel.BedStatusOccupied,
			"bed_is_occupied": true,
		}).Error; err != nil {
		return err
	}

	var bed inventoryModel.Bed
	if err := tx.First(&bed, "bed_id = ?", contract.ContractBedID).Error; err != nil {
		return err
	}
	if err := tx.Model(&inventoryModel.Room{}).
		Where("room_id = ?", bed.BedRoomID).
		Update("room_current_occupancy", gorm.Expr("room_current_occupancy + 1")).Error; err != nil {
		return err
	}

	total := contract.ContractPricePerMonth + contract.ContractDepositAmount
	due := time.Now().AddDate(0, 0, 5)
	title := "Hóa đơn thanh toán lần đầu (Tiền phòng + Cọc)"
	details := billingModel.InvoiceDetails{
		Kind: billingModel.InvoiceKindFirstPayment,
		FirstPayment: &billingModel.FirstPaymentDetail{
			RentMonths:    1,
			PricePerMonth: contract.ContractPricePerMonth,
			Deposit:       contract.ContractDepositAmount,
			StartDate:     contract.ContractStartDate.Format("2006-01-02"),
		},
		Note: "Vui lòng thanh toán để hoàn tất thủ tục nhận phòng",
	}

	invoice := billingModel.Invoice{
		InvoiceContractID:      &contract.ContractID,
		InvoiceTitle:           &title,
		InvoiceTotalAmount:     total,
		InvoiceRemainingAmount: total,
		InvoiceStatus:          billingModel.InvoiceStatusUnpaid,
		InvoiceDueDate:         &due,
		InvoiceDetails:         details.JSON(),
	}
	return tx.Create(&invoice).Error
}

// releaseContract: trả giường về TRONG, phòng -1 chỗ. cancelReason khác rỗng
// thì hủy luôn mọi hóa đơn CHUA_THANH_TOAN của hợp đồng với lý do đó.
func releaseContract(tx *gorm.DB, contract *contractModel.Contract, cancelReason string) error {
	var bed inventoryModel.Bed
	if err := tx.First(&bed, "bed_id = ?", contract.ContractBedID).Error; err != nil {
		return err
	}

	wasOccupied := bed.BedStatus == inventoryModel.BedStatusOccupied
	if err := tx.Model(&inventoryModel.Bed{}).
		Where("bed_id = ?", contract.ContractBedID).
		Updates(map[string]any{
			"bed_status":      inventoryModel.BedStatusAvailable,
			"bed_is_occupied": false,
		}).Error; err != nil {
		return err
	}
	if wasOccupied {
		if err := tx.Model(&inventoryModel.Room{}).
			Where("room_id = ? AND room_current_occupancy > 0", bed.BedRoomID).
			Update("room_current_occupancy", gorm.Expr("room_current_occupancy - 1")).Error; err != nil {
			return err
		}
	}
	if cancelReason == "" {
		return nil
	}
	return cancelUnpaidInvoices(tx, contract.ContractID, cancelReason)
}

// cancelUnpaidInvoices hủy từng hóa đơn CHUA_THANH_TOAN của hợp đồng,
// ghi lý do hủy vào invoice_details.
func cancelUnpaidInvoices(tx *gorm.DB, contractID uuid.UUID, reason string) error {
	var invoices []billingModel.Invoice
	if err := tx.
		Where("invoice_contract_id = ? AND invoice_status = ?", contractID, billingModel.InvoiceStatusUnpaid).
		Find(&invoices).Error; err != nil {
		return err
	}
	for i := range invoices {
		details := billingModel.ParseInvoiceDetails(invoices[i].InvoiceDetails)
		details.CancelReason = reason
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

/* =========================================================
   CANCEL (student tự hủy đơn chờ duyệt)
========================================================= */

// CancelContract: sinh viên rút lại đơn CHO_DUYET. Xóa hẳn hợp đồng và
// hóa đơn đi kèm (đơn chờ duyệt chưa có gì tham chiếu tới), trả giường.
// Đã có hóa đơn thanh toán (kể cả một phần) thì chặn, đi đường hoàn tiền qua admin.
func CancelContract(ctx context.Context, db *gorm.DB, contractID, studentID uuid.UUID) (*contractModel.Contract, error) {
	var contract contractModel.Contract
	if err := db.WithContext(ctx).First(&contract, "contract_id = ?", contractID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "Hợp đồng không tồn tại")
		}
		return nil, err
	}
	if contract.ContractStudentID != studentID {
		return nil, fiber.NewError(fiber.StatusForbidden, "Bạn không có quyền hủy hợp đồng này")
	}
	if contract.ContractStatus != contractModel.ContractStatusPending {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Chỉ hủy được hợp đồng đang chờ duyệt")
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var paidCount int64
		if err := tx.Model(&billingModel.Invoice{}).
			Where("invoice_contract_id = ? AND invoice_status IN ?", contract.ContractID,
				[]string{billingModel.InvoiceStatusPaid, billingModel.InvoiceStatusPartial}).
			Count(&paidCount).Error; err != nil {
			return err
		}
		if paidCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Hợp đồng đã có hóa đơn thanh toán, liên hệ quản lý để hoàn tiền")
		}

		if err := tx.Model(&inventoryModel.Bed{}).
			Where("bed_id = ?", contract.ContractBedID).
			Updates(map[string]any{
				"bed_status":      inventoryModel.BedStatusAvailable,
				"bed_is_occupied": false,
			}).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_contract_id = ?", contract.ContractID).
			Delete(&billingModel.Invoice{}).Error; err != nil {
			return err
		}
		return tx.Delete(&contractModel.Contract{}, "contract_id = ?", contract.ContractID).Error
	})
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

/* =========================================================
   QUERIES
========================================================= */

// GetByID: sinh viên chỉ xem được hợp đồng của mình.
func GetByID(ctx context.Context, db *gorm.DB, contractID, requesterID uuid.UUID, requesterRole string) (*contractModel.Contract, error) {
	var contract contractModel.Contract
	if err := db.WithContext(ctx).First(&contract, "contract_id = ?", contractID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "Hợp đồng không tồn tại")
		}
		return nil, err
	}
	if requesterRole == userModel.UserRoleStudent && contract.ContractStudentID != requesterID {
		return nil, fiber.NewError(fiber.StatusForbidden, "Bạn không có quyền xem hợp đồng này")
	}
	return &contract, nil
}

func ListByStudent(ctx context.Context, db *gorm.DB, studentID uuid.UUID) ([]contractModel.Contract, error) {
	var contracts []contractModel.Contract
	err := db.WithContext(ctx).
		Where("contract_student_id = ?", studentID).
		Order("contract_created_at DESC").
		Find(&contracts).Error
	return contracts, err
}

// FindOpenByStudent trả hợp đồng CHO_DUYET/DANG_O hiện tại (nil nếu không có).
func FindOpenByStudent(ctx context.Context, db *gorm.DB, studentID uuid.UUID) (*contractModel.Contract, error) {
	var contract contractModel.Contract
	err := db.WithContext(ctx).
		Where("contract_student_id = ? AND contract_status IN ?", studentID,
			[]string{contractModel.ContractStatusPending, contractModel.ContractStatusActive}).
		Order("contract_created_at DESC").
		First(&contract).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &contract, nil
}
