// file: internals/features/finance/payments/service/midtrans.go
package service

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"gorm.io/gorm"

	billingModel "ktx_backend/internals/features/finance/billing/model"
	paymentModel "ktx_backend/internals/features/finance/payments/model"
)

const midtransOrderPrefix = "KTX-"

var snapClient snap.Client

// InitMidtrans khởi tạo Snap client từ env. Gọi một lần lúc bootstrap.
func InitMidtrans() {
	serverKey := os.Getenv("MIDTRANS_SERVER_KEY")
	if serverKey == "" {
		log.Println("[WARNING] MIDTRANS_SERVER_KEY chưa cấu hình, kênh Midtrans tắt")
		return
	}
	env := midtrans.Sandbox
	if strings.EqualFold(os.Getenv("MIDTRANS_ENV"), "production") {
		env = midtrans.Production
	}
	snapClient.New(serverKey, env)
	log.Println("✅ Midtrans Snap client sẵn sàng")
}

// GenerateSnapToken tạo Snap transaction cho hóa đơn còn nợ,
// order_id = "KTX-<invoice_id>" để notification map ngược về hóa đơn.
func GenerateSnapToken(ctx context.Context, db *gorm.DB, invoiceID uuid.UUID, payerName, payerEmail string) (string, string, error) {
	var invoice billingModel.Invoice
	if err := db.WithContext(ctx).First(&invoice, "invoice_id = ?", invoiceID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", "", fiber.NewError(fiber.StatusNotFound, "Hóa đơn không tồn tại")
		}
		return "", "", err
	}
	if invoice.InvoiceStatus == billingModel.InvoiceStatusCancelled {
		return "", "", fiber.NewError(fiber.StatusBadRequest, "Hóa đơn đã bị hủy")
	}
	if invoice.InvoiceRemainingAmount <= 0 {
		return "", "", fiber.NewError(fiber.StatusBadRequest, "Hóa đơn đã thanh toán đủ")
	}

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  midtransOrderPrefix + invoice.InvoiceID.String(),
			GrossAmt: int64(invoice.InvoiceRemainingAmount),
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: payerName,
			Email: payerEmail,
		},
	}

	resp, err := snapClient.CreateTransaction(req)
	if err != nil {
		return "", "", fiber.NewError(fiber.StatusBadGateway, "Không tạo được giao dịch Midtrans")
	}
	return resp.Token, resp.RedirectURL, nil
}

// VerifyMidtransSignature: sha512(order_id + status_code + gross_amount + server_key).
func VerifyMidtransSignature(orderID, statusCode, grossAmount, signatureKey string) bool {
	serverKey := os.Getenv("MIDTRANS_SERVER_KEY")
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:]) == strings.ToLower(signatureKey)
}

// HandleMidtransNotification xử lý HTTP notification của Midtrans.
// capture/settlement ghi tiền qua ProcessPayment (idempotent theo order_id);
// trạng thái khác chỉ ack.
func HandleMidtransNotification(ctx context.Context, db *gorm.DB, payload map[string]any) error {
	params := NormalizeParams(payload)

	orderID := params["order_id"]
	if !VerifyMidtransSignature(orderID, params["status_code"], params["gross_amount"], params["signature_key"]) {
		return fiber.NewError(fiber.StatusUnauthorized, "Chữ ký Midtrans không hợp lệ")
	}

	status := params["transaction_status"]
	if status != "capture" && status != "settlement" {
		return nil
	}

	invoiceID, err := uuid.Parse(strings.TrimPrefix(orderID, midtransOrderPrefix))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "order_id không hợp lệ")
	}

	amount, err := parseMidtransAmount(params["gross_amount"])
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "gross_amount không hợp lệ")
	}

	_, err = ProcessPayment(ctx, db, invoiceID, amount, paymentModel.PaymentMethodOnline, &orderID)
	return err
}

// gross_amount Midtrans trả dạng "150000.00"
func parseMidtransAmount(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
