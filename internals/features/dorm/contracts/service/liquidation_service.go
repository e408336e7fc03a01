// file: internals/features/dorm/contracts/service/liquidation_service.go
package service

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	contractModel "ktx_backend/internals/features/dorm/contracts/model"
)

// LiquidateContract chấm dứt hợp đồng kèm quyết toán tiền cọc.
// total_refund = cọc - phạt - phí hư hỏng, giữ nguyên dấu: giá trị âm
// nghĩa là sinh viên còn nợ, hệ thống KHÔNG tự phát hành hóa đơn thu.
func LiquidateContract(ctx context.Context, db *gorm.DB, contractID, confirmedBy uuid.UUID, penaltyAmount, damageFee float64, notes *string) (*contractModel.LiquidationRecord, error) {
	if penaltyAmount < 0 || damageFee < 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Tiền phạt và phí hư hỏng không được âm")
	}

	var contract contractModel.Contract
	if err := db.WithContext(ctx).First(&contract, "contract_id = ?", contractID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "Hợp đồng không tồn tại")
		}
		return nil, err
	}
	if contract.ContractStatus != contractModel.ContractStatusActive &&
		contract.ContractStatus != contractModel.ContractStatusExpired {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Chỉ thanh lý được hợp đồng đang ở hoặc đã hết hạn")
	}

	var existing int64
	if err := db.WithContext(ctx).Model(&contractModel.LiquidationRecord{}).
		Where("liquidation_contract_id = ?", contractID).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, fiber.NewError(fiber.StatusConflict, "Hợp đồng này đã được thanh lý")
	}

	deposit := contract.ContractDepositAmount
	record := contractModel.LiquidationRecord{
		LiquidationContractID:           contractID,
		LiquidationDate:                 time.Now(),
		LiquidationRefundDepositAmount:  deposit,
		LiquidationPenaltyAmount:        penaltyAmount,
		LiquidationDamageFee:            damageFee,
		LiquidationTotalRefundToStudent: deposit - penaltyAmount - damageFee,
		LiquidationNotes:                notes,
		LiquidationConfirmedBy:          confirmedBy,
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if contract.ContractStatus == contractModel.ContractStatusActive {
			// chỉ trả giường; công nợ còn lại xử lý tay ngoài luồng thanh lý
			if err := releaseContract(tx, &contract, ""); err != nil {
				return err
			}
		}
		if err := tx.Model(&contractModel.Contract{}).
			Where("contract_id = ?", contractID).
			Update("contract_status", contractModel.ContractStatusTerminated).Error; err != nil {
			return err
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		if err == gorm.ErrDuplicatedKey {
			return nil, fiber.NewError(fiber.StatusConflict, "Hợp đồng này đã được thanh lý")
		}
		return nil, err
	}
	return &record, nil
}

// GetLiquidationByContract: sinh viên tra cứu kết quả thanh lý của mình.
func GetLiquidationByContract(ctx context.Context, db *gorm.DB, contractID uuid.UUID) (*contractModel.LiquidationRecord, error) {
	var record contractModel.LiquidationRecord
	if err := db.WithContext(ctx).First(&record, "liquidation_contract_id = ?", contractID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "Hợp đồng chưa có biên bản thanh lý")
		}
		return nil, err
	}
	return &record, nil
}
