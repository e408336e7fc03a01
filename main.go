// file: main.go
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"ktx_backend/internals/configs"
	database "ktx_backend/internals/databases"
	paymentService "ktx_backend/internals/features/finance/payments/service"
	"ktx_backend/internals/middlewares"
	routes "ktx_backend/internals/route"
	"ktx_backend/internals/seeds"
)

func main() {
	configs.LoadEnv()

	database.ConnectDB()
	database.TunePool()
	database.Migrate()
	seeds.Run(database.DB)

	paymentService.InitMidtrans()

	app := fiber.New(fiber.Config{
		AppName:     "KTX Backend",
		JSONEncoder: sonic.Marshal,
		JSONDecoder: sonic.Unmarshal,
		// service trả *fiber.Error, handler mặc định render đúng status
	})

	app.Use(middlewares.RecoveryMiddleware())
	app.Use(middlewares.CorsMiddleware())
	app.Use(requestid.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	routes.SetupRoutes(app, database.DB)

	// graceful shutdown: đợi request đang chạy xong rồi mới thoát
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("🛑 Nhận tín hiệu dừng, đang shutdown...")
		if err := app.Shutdown(); err != nil {
			log.Printf("shutdown err: %v", err)
		}
	}()

	port := configs.GetEnv("PORT", "8080")
	log.Printf("🚀 KTX Backend chạy tại cổng %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("❌ Server dừng: %v", err)
	}
}
