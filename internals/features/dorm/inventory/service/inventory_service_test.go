// file: internals/features/dorm/inventory/service/inventory_service_test.go
package service

import (
	"context"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	inventoryModel "ktx_backend/internals/features/dorm/inventory/model"
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
		&inventoryModel.Campus{},
		&inventoryModel.Building{},
		&inventoryModel.Room{},
		&inventoryModel.Bed{},
	))
	return db
}

func seedBuilding(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	campus := inventoryModel.Campus{CampusName: "Cơ sở 1"}
	require.NoError(t, db.Create(&campus).Error)
	building := inventoryModel.Building{BuildingCampusID: campus.CampusID, BuildingCode: "B-" + uuid.NewString()[:8]}
	require.NoError(t, db.Create(&building).Error)
	return building.BuildingID
}

func TestCreateRoomWithBeds(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	room := inventoryModel.Room{
		RoomBuildingID: seedBuilding(t, db),
		RoomCode:       "P501",
		RoomGenderType: inventoryModel.RoomGenderMale,
		RoomStatus:     inventoryModel.RoomStatusAvailable,
		RoomBasePrice:  1_000_000,
	}
	require.NoError(t, CreateRoomWithBeds(ctx, db, &room, 4))

	beds, err := ListAvailableBeds(ctx, db, room.RoomID)
	require.NoError(t, err)
	require.Len(t, beds, 4)
	require.Equal(t, "A1", beds[0].BedLabel)

	dup := inventoryModel.Room{
		RoomBuildingID: room.RoomBuildingID,
		RoomCode:       "P501",
		RoomGenderType: inventoryModel.RoomGenderMale,
	}
	err = CreateRoomWithBeds(ctx, db, &dup, 2)
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	require.Equal(t, fiber.StatusConflict, fe.Code)
}

func TestSetBedStatus(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	room := inventoryModel.Room{
		RoomBuildingID: seedBuilding(t, db),
		RoomCode:       "P502",
		RoomGenderType: inventoryModel.RoomGenderMixed,
	}
	require.NoError(t, CreateRoomWithBeds(ctx, db, &room, 1))
	beds, err := ListAvailableBeds(ctx, db, room.RoomID)
	require.NoError(t, err)
	bed := beds[0]

	got, err := SetBedStatus(ctx, db, bed.BedID, inventoryModel.BedStatusMaintenance)
	require.NoError(t, err)
	require.Equal(t, inventoryModel.BedStatusMaintenance, got.BedStatus)

	got, err = SetBedStatus(ctx, db, bed.BedID, inventoryModel.BedStatusAvailable)
	require.NoError(t, err)
	require.Equal(t, inventoryModel.BedStatusAvailable, got.BedStatus)

	// không set thẳng sang DANG_O qua API này
	_, err = SetBedStatus(ctx, db, bed.BedID, inventoryModel.BedStatusOccupied)
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	require.Equal(t, fiber.StatusBadRequest, fe.Code)

	// giường đang giữ chỗ thì khóa
	require.NoError(t, db.Model(&inventoryModel.Bed{}).
		Where("bed_id = ?", bed.BedID).
		Update("bed_status", inventoryModel.BedStatusReserved).Error)
	_, err = SetBedStatus(ctx, db, bed.BedID, inventoryModel.BedStatusMaintenance)
	require.ErrorAs(t, err, &fe)
	require.Equal(t, fiber.StatusConflict, fe.Code)
}

func TestListRoomsWithVacancy(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	buildingID := seedBuilding(t, db)

	maleRoom := inventoryModel.Room{
		RoomBuildingID: buildingID,
		RoomCode:       "NAM-01",
		RoomGenderType: inventoryModel.RoomGenderMale,
	}
	require.NoError(t, CreateRoomWithBeds(ctx, db, &maleRoom, 2))

	femaleRoom := inventoryModel.Room{
		RoomBuildingID: buildingID,
		RoomCode:       "NU-01",
		RoomGenderType: inventoryModel.RoomGenderFemale,
	}
	require.NoError(t, CreateRoomWithBeds(ctx, db, &femaleRoom, 2))

	mixedRoom := inventoryModel.Room{
		RoomBuildingID: buildingID,
		RoomCode:       "HH-01",
		RoomGenderType: inventoryModel.RoomGenderMixed,
	}
	require.NoError(t, CreateRoomWithBeds(ctx, db, &mixedRoom, 1))

	fullRoom := inventoryModel.Room{
		RoomBuildingID: buildingID,
		RoomCode:       "FULL-01",
		RoomGenderType: inventoryModel.RoomGenderMale,
	}
	require.NoError(t, CreateRoomWithBeds(ctx, db, &fullRoom, 0))

	// nữ thấy phòng NU + HON_HOP, không thấy phòng NAM hay phòng hết giường
	vacancies, err := ListRoomsWithVacancy(ctx, db, &buildingID, inventoryModel.RoomGenderFemale)
	require.NoError(t, err)
	require.Len(t, vacancies, 2)

	codes := []string{vacancies[0].Room.RoomCode, vacancies[1].Room.RoomCode}
	require.Contains(t, codes, "NU-01")
	require.Contains(t, codes, "HH-01")

	all, err := ListRoomsWithVacancy(ctx, db, nil, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
}
