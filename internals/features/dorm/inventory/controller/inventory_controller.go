// file: internals/features/dorm/inventory/controller/inventory_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"ktx_backend/internals/features/dorm/inventory/dto"
	inventoryModel "ktx_backend/internals/features/dorm/inventory/model"
	"ktx_backend/internals/features/dorm/inventory/service"
	helper "ktx_backend/internals/helpers"
)

type InventoryController struct {
	DB *gorm.DB
}

func NewInventoryController(db *gorm.DB) *InventoryController {
	return &InventoryController{DB: db}
}

/* =========================================================
   PUBLIC / STUDENT (đọc)
========================================================= */

// GET /api/public/campuses
func (ctrl *InventoryController) ListCampuses(c *fiber.Ctx) error {
	var campuses []inventoryModel.Campus
	if err := ctrl.DB.WithContext(c.Context()).Order("campus_name ASC").Find(&campuses).Error; err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "", campuses)
}

// GET /api/public/campuses/:id/buildings
func (ctrl *InventoryController) ListBuildings(c *fiber.Ctx) error {
	campusID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID cơ sở không hợp lệ")
	}
	var buildings []inventoryModel.Building
	if err := ctrl.DB.WithContext(c.Context()).
		Where("building_campus_id = ?", campusID).
		Order("building_code ASC").
		Find(&buildings).Error; err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "", buildings)
}

// GET /api/public/rooms/vacancy?building_id=&gender=
func (ctrl *InventoryController) ListVacancy(c *fiber.Ctx) error {
	var buildingID *uuid.UUID
	if raw := c.Query("building_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "building_id không hợp lệ")
		}
		buildingID = &id
	}

	vacancies, err := service.ListRoomsWithVacancy(c.Context(), ctrl.DB, buildingID, c.Query("gender"))
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "", vacancies)
}

// GET /api/u/rooms/:id/beds — giường trống của phòng
func (ctrl *InventoryController) ListAvailableBeds(c *fiber.Ctx) error {
	roomID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID phòng không hợp lệ")
	}
	beds, err := service.ListAvailableBeds(c.Context(), ctrl.DB, roomID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "", beds)
}

/* =========================================================
   ADMIN
========================================================= */

// POST /api/a/campuses
func (ctrl *InventoryController) CreateCampus(c *fiber.Ctx) error {
	var body dto.CreateCampusRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload không hợp lệ")
	}
	if fieldErrs := helper.ValidateStruct(body); fieldErrs != nil {
		return helper.JsonValidationError(c, fieldErrs)
	}

	campus := inventoryModel.Campus{
		CampusName:        body.Name,
		CampusAddress:     body.Address,
		CampusDescription: body.Description,
	}
	if err := ctrl.DB.WithContext(c.Context()).Create(&campus).Error; err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "Đã tạo cơ sở", campus)
}

// POST /api/a/buildings
func (ctrl *InventoryController) CreateBuilding(c *fiber.Ctx) error {
	var body dto.CreateBuildingRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload không hợp lệ")
	}
	if fieldErrs := helper.ValidateStruct(body); fieldErrs != nil {
		return helper.JsonValidationError(c, fieldErrs)
	}

	totalFloors := body.TotalFloors
	if totalFloors < 1 {
		totalFloors = 1
	}
	building := inventoryModel.Building{
		BuildingCampusID:      body.CampusID,
		BuildingCode:          body.Code,
		BuildingName:          body.Name,
		BuildingTotalFloors:   totalFloors,
		BuildingUtilityConfig: body.Utility,
	}
	if err := ctrl.DB.WithContext(c.Context()).Create(&building).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			return helper.JsonError(c, fiber.StatusConflict, "Mã tòa đã tồn tại")
		}
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "Đã tạo tòa nhà", building)
}

// POST /api/a/rooms — tạo phòng kèm giường
func (ctrl *InventoryController) CreateRoom(c *fiber.Ctx) error {
	var body dto.CreateRoomRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload không hợp lệ")
	}
	if fieldErrs := helper.ValidateStruct(body); fieldErrs != nil {
		return helper.JsonValidationError(c, fieldErrs)
	}

	floor := body.Floor
	if floor < 1 {
		floor = 1
	}
	room := inventoryModel.Room{
		RoomBuildingID: body.BuildingID,
		RoomTypeID:     body.RoomTypeID,
		RoomCode:       body.Code,
		RoomFloor:      floor,
		RoomGenderType: body.GenderType,
		RoomStatus:     inventoryModel.RoomStatusAvailable,
		RoomBasePrice:  body.BasePrice,
		RoomAreaM2:     body.AreaM2,
	}
	if err := service.CreateRoomWithBeds(c.Context(), ctrl.DB, &room, body.BedCount); err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "Đã tạo phòng", room)
}

// PATCH /api/a/beds/:id/status — đưa giường vào / ra bảo trì
func (ctrl *InventoryController) SetBedStatus(c *fiber.Ctx) error {
	bedID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID giường không hợp lệ")
	}

	var body dto.SetBedStatusRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload không hợp lệ")
	}
	if fieldErrs := helper.ValidateStruct(body); fieldErrs != nil {
		return helper.JsonValidationError(c, fieldErrs)
	}

	bed, err := service.SetBedStatus(c.Context(), ctrl.DB, bedID, body.Status)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonUpdated(c, "Đã cập nhật trạng thái giường", bed)
}
