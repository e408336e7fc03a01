// file: internals/route/index.go
package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ktx_backend/internals/constants"
	"ktx_backend/internals/middlewares/auth"

	contractRoute "ktx_backend/internals/features/dorm/contracts/route"
	inventoryRoute "ktx_backend/internals/features/dorm/inventory/route"
	serviceRoute "ktx_backend/internals/features/dorm/services/route"
	transferRoute "ktx_backend/internals/features/dorm/transfers/route"
	billingRoute "ktx_backend/internals/features/finance/billing/route"
	paymentRoute "ktx_backend/internals/features/finance/payments/route"
	userRoute "ktx_backend/internals/features/users/users/route"
)

// SetupRoutes gắn toàn bộ route theo 3 tầng quyền:
//
//	/api/public — không cần đăng nhập (tra cứu phòng, callback gateway)
//	/api/u      — cần JWT (sinh viên + admin)
//	/api/a      — JWT + role ADMIN / QUAN_LY_TOA
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	api := app.Group("/api")

	// ===== PUBLIC =====
	public := api.Group("/public")
	inventoryRoute.InventoryPublicRoutes(public, db)

	// callback gateway mount thẳng dưới /api để khớp URL đăng ký với cổng
	paymentRoute.PaymentPublicRoutes(api, db)

	// ===== USER (đăng nhập) =====
	user := api.Group("/u", auth.AuthMiddleware())
	userRoute.UserRoutes(user, db)
	inventoryRoute.InventoryUserRoutes(user, db)
	contractRoute.ContractUserRoutes(user, db)
	transferRoute.TransferUserRoutes(user, db)
	serviceRoute.ServiceUserRoutes(user, db)
	billingRoute.BillingUserRoutes(user, db)
	paymentRoute.PaymentUserRoutes(user, db)

	// ===== ADMIN / QUẢN LÝ TÒA =====
	admin := api.Group("/a",
		auth.AuthMiddleware(),
		auth.OnlyRoles(constants.ErrOnlyManagersCanAccess, constants.ManagerAndAbove...),
	)
	inventoryRoute.InventoryAdminRoutes(admin, db)
	contractRoute.ContractAdminRoutes(admin, db)
	transferRoute.TransferAdminRoutes(admin, db)
	serviceRoute.ServiceAdminRoutes(admin, db)
	billingRoute.BillingAdminRoutes(admin, db)
	paymentRoute.PaymentAdminRoutes(admin, db)
}
