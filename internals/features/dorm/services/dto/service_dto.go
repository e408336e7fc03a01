// file: internals/features/dorm/services/dto/service_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

/* ===================== Requests ===================== */

type CreateServicePackageRequest struct {
	Name         string  `json:"name" validate:"required,max=120"`
	Description  *string `json:"description" validate:"omitempty,max=255"`
	Type         string  `json:"type" validate:"required,oneof=GIU_XE GIAT_LA DON_DEP GIAO_NUOC INTERNET KHAC"`
	Price        float64 `json:"price" validate:"required,gt=0"`
	BillingCycle string  `json:"billing_cycle" validate:"required,oneof=MOT_LAN HANG_THANG HOC_KY"`
}

type SubscribeRequest struct {
	ServiceID uuid.UUID  `json:"service_id" validate:"required"`
	Quantity  int        `json:"quantity" validate:"min=1,max=10"`
	EndDate   *time.Time `json:"end_date" validate:"omitempty"`
	Note      *string    `json:"note" validate:"omitempty,max=255"`
}
