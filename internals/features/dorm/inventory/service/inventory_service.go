// file: internals/features/dorm/inventory/service/inventory_service.go
package service

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	inventoryModel "ktx_backend/internals/features/dorm/inventory/model"
)

// SetBedStatus chuyển giường giữa TRONG và BAO_TRI.
// Giường đang có hợp đồng (DANG_O / DA_DAT) không đụng vào được —
// phải chấm dứt hợp đồng trước.
func SetBedStatus(ctx context.Context, db *gorm.DB, bedID uuid.UUID, newStatus string) (*inventoryModel.Bed, error) {
	if newStatus != inventoryModel.BedStatusAvailable && newStatus != inventoryModel.BedStatusMaintenance {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Chỉ chuyển được giữa TRONG và BAO_TRI")
	}

	var bed inventoryModel.Bed
	if err := db.WithContext(ctx).First(&bed, "bed_id = ?", bedID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "Giường không tồn tại")
		}
		return nil, err
	}

	if bed.BedStatus == inventoryModel.BedStatusOccupied || bed.BedStatus == inventoryModel.BedStatusReserved {
		return nil, fiber.NewError(fiber.StatusConflict, "Giường đang có hợp đồng, không thể đổi trạng thái")
	}
	if bed.BedStatus == newStatus {
		return &bed, nil
	}

	if err := db.WithContext(ctx).Model(&inventoryModel.Bed{}).
		Where("bed_id = ?", bedID).
		Update("bed_status", newStatus).Error; err != nil {
		return nil, err
	}
	bed.BedStatus = newStatus
	return &bed, nil
}

// ListAvailableBeds: giường TRONG của một phòng.
func ListAvailableBeds(ctx context.Context, db *gorm.DB, roomID uuid.UUID) ([]inventoryModel.Bed, error) {
	var beds []inventoryModel.Bed
	err := db.WithContext(ctx).
		Where("bed_room_id = ? AND bed_status = ?", roomID, inventoryModel.BedStatusAvailable).
		Order("bed_label ASC").
		Find(&beds).Error
	return beds, err
}

// RoomVacancy là view tổng hợp cho trang tìm phòng.
type RoomVacancy struct {
	Room          inventoryModel.Room `json:"room"`
	AvailableBeds int64               `json:"available_beds"`
}

// ListRoomsWithVacancy lọc phòng còn giường TRONG, tùy chọn theo tòa
// và giới tính.
func ListRoomsWithVacancy(ctx context.Context, db *gorm.DB, buildingID *uuid.UUID, genderType string) ([]RoomVacancy, error) {
	q := db.WithContext(ctx).Model(&inventoryModel.Room{}).
		Where("room_status <> ?", inventoryModel.RoomStatusMaintenance)
	if buildingID != nil {
		q = q.Where("room_building_id = ?", *buildingID)
	}
	if genderType != "" {
		q = q.Where("room_gender_type IN ?", []string{genderType, inventoryModel.RoomGenderMixed})
	}

	var rooms []inventoryModel.Room
	if err := q.Order("room_code ASC").Find(&rooms).Error; err != nil {
		return nil, err
	}

	out := make([]RoomVacancy, 0, len(rooms))
	for i := range rooms {
		var count int64
		if err := db.WithContext(ctx).Model(&inventoryModel.Bed{}).
			Where("bed_room_id = ? AND bed_status = ?", rooms[i].RoomID, inventoryModel.BedStatusAvailable).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			out = append(out, RoomVacancy{Room: rooms[i], AvailableBeds: count})
		}
	}
	return out, nil
}

// CreateRoomWithBeds tạo phòng kèm sẵn số giường đánh nhãn A1..An.
func CreateRoomWithBeds(ctx context.Context, db *gorm.DB, room *inventoryModel.Room, bedCount int) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			if err == gorm.ErrDuplicatedKey {
				return fiber.NewError(fiber.StatusConflict, "Mã phòng đã tồn tại")
			}
			return err
		}
		for i := 1; i <= bedCount; i++ {
			bed := inventoryModel.Bed{
				BedRoomID: room.RoomID,
				BedLabel:  fmt.Sprintf("A%d", i),
				BedStatus: inventoryModel.BedStatusAvailable,
			}
			if err := tx.Create(&bed).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
