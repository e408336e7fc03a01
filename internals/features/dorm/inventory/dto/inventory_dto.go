// file: internals/features/dorm/inventory/dto/inventory_dto.go
package dto

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

/* ===================== Requests ===================== */

type CreateCampusRequest struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Address     *string `json:"address" validate:"omitempty,max=255"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}

type CreateBuildingRequest struct {
	CampusID    uuid.UUID      `json:"campus_id" validate:"required"`
	Code        string         `json:"code" validate:"required,max=20"`
	Name        *string        `json:"name" validate:"omitempty,max=120"`
	TotalFloors int            `json:"total_floors" validate:"min=1"`
	Utility     datatypes.JSON `json:"utility_config" validate:"omitempty"`
}

type CreateRoomRequest struct {
	BuildingID uuid.UUID  `json:"building_id" validate:"required"`
	RoomTypeID *uuid.UUID `json:"room_type_id" validate:"omitempty"`
	Code       string     `json:"code" validate:"required,max=20"`
	Floor      int        `json:"floor" validate:"min=1"`
	GenderType string     `json:"gender_type" validate:"required,oneof=NAM NU HON_HOP"`
	BasePrice  float64    `json:"base_price" validate:"gte=0"`
	AreaM2     *float64   `json:"area_m2" validate:"omitempty,gt=0"`
	BedCount   int        `json:"bed_count" validate:"min=0,max=12"`
}

type SetBedStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=TRONG BAO_TRI"`
}
