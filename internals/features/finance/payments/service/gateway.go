// file: internals/features/finance/payments/service/gateway.go
package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	billingModel "ktx_backend/internals/features/finance/billing/model"
	paymentModel "ktx_backend/internals/features/finance/payments/model"
)

// signedKeys: whitelist các field tham gia chữ ký. Field lạ do bên thứ ba
// thêm vào (mã khuyến mãi, tracking...) không làm hỏng chữ ký hai phía.
var signedKeys = []string{
	"orderId",
	"amount",
	"ipAddr",
	"createDate",
	"orderDesc",
	"billingName",
	"studentInfo",
}

// GatewayService ký và xác minh giao dịch với cổng thanh toán ngân hàng ảo.
type GatewayService struct {
	Secret    string
	PayURL    string // trang thanh toán của cổng
	ReturnURL string // redirect về sau khi thanh toán
}

/* =========================================================
   SIGNING
========================================================= */

// Sign: sort key tăng dần, nối "k=urlencode(v)" bằng "&" (bỏ value rỗng
// và key ngoài whitelist), HMAC-SHA256 ra hex thường.
func (g *GatewayService) Sign(params map[string]string) string {
	keys := make([]string, 0, len(signedKeys))
	for _, k := range signedKeys {
		if v, ok := params[k]; ok && v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+url.QueryEscape(params[k]))
	}
	data := strings.Join(parts, "&")

	mac := hmac.New(sha256.New, []byte(g.Secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature so sánh chữ ký bằng hmac.Equal (constant time).
func (g *GatewayService) VerifySignature(params map[string]string) bool {
	got, ok := params["signature"]
	if !ok || got == "" {
		return false
	}
	want := g.Sign(params)
	return hmac.Equal([]byte(strings.ToLower(got)), []byte(want))
}

// NormalizeParams ép payload JSON về map[string]string trước khi verify.
// float64 format bằng FormatFloat 'f' để không rơi vào scientific notation
// (12000000 chứ không phải 1.2e+07).
func NormalizeParams(raw map[string]any) map[string]string {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case string:
			out[k] = t
		case float64:
			out[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(t)
		case nil:
			// bỏ qua
		default:
			out[k] = fmt.Sprint(t)
		}
	}
	return out
}

/* =========================================================
   CREATE PAYMENT URL
========================================================= */

// CreatePaymentURL dựng URL thanh toán đã ký cho một hóa đơn còn nợ.
func (g *GatewayService) CreatePaymentURL(ctx context.Context, db *gorm.DB, invoiceID uuid.UUID, ipAddr, billingName string) (string, error) {
	var invoice billingModel.Invoice
	if err := db.WithContext(ctx).First(&invoice, "invoice_id = ?", invoiceID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", fiber.NewError(fiber.StatusNotFound, "Hóa đơn không tồn tại")
		}
		return "", err
	}
	if invoice.InvoiceStatus == billingModel.InvoiceStatusCancelled {
		return "", fiber.NewError(fiber.StatusBadRequest, "Hóa đơn đã bị hủy")
	}
	if invoice.InvoiceRemainingAmount <= 0 {
		return "", fiber.NewError(fiber.StatusBadRequest, "Hóa đơn đã thanh toán đủ")
	}

	orderDesc := "Thanh toan hoa don KTX"
	if invoice.InvoiceTitle != nil {
		orderDesc = *invoice.InvoiceTitle
	}

	params := map[string]string{
		"orderId":     invoice.InvoiceID.String(),
		"amount":      strconv.FormatFloat(invoice.InvoiceRemainingAmount, 'f', -1, 64),
		"ipAddr":      ipAddr,
		"createDate":  time.Now().Format("20060102150405"),
		"orderDesc":   orderDesc,
		"billingName": billingName,
		"studentInfo": invoice.InvoiceID.String(),
	}
	params["signature"] = g.Sign(params)

	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	if g.ReturnURL != "" {
		q.Set("returnUrl", g.ReturnURL)
	}
	return g.PayURL + "?" + q.Encode(), nil
}

/* =========================================================
   IPN
========================================================= */

// IPNAck là body trả cho cổng: cổng sẽ retry đến khi nhận RspCode 00.
type IPNAck struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}

// ProcessIPN xử lý notify server-to-server của cổng.
// 97: sai chữ ký. 00: đã xử lý xong (kể cả giao dịch bị từ chối — vẫn
// ack để cổng ngừng retry). 99: lỗi phía mình, cổng cứ retry tiếp.
func (g *GatewayService) ProcessIPN(ctx context.Context, db *gorm.DB, params map[string]string) IPNAck {
	if !g.VerifySignature(params) {
		return IPNAck{RspCode: "97", Message: "Invalid signature"}
	}

	invoiceID, err := uuid.Parse(params["orderId"])
	if err != nil {
		return IPNAck{RspCode: "99", Message: "Invalid order id"}
	}

	if params["responseCode"] != "00" {
		// giao dịch fail phía cổng: không ghi gì, ack cho ngừng retry
		return IPNAck{RspCode: "00", Message: "Confirm success"}
	}

	amount, err := strconv.ParseFloat(params["amount"], 64)
	if err != nil || amount <= 0 {
		return IPNAck{RspCode: "99", Message: "Invalid amount"}
	}

	method := paymentModel.PaymentMethodOnline
	txID := params["transactionNo"]
	if txID == "" {
		// cổng ảo không trả mã giao dịch: tự sinh để vẫn giữ idempotency
		txID = fmt.Sprintf("VIRTUAL_%d", time.Now().UnixNano())
		method = paymentModel.PaymentMethodVirtualBank
	}

	if _, err := ProcessPayment(ctx, db, invoiceID, amount, method, &txID); err != nil {
		return IPNAck{RspCode: "99", Message: "Unable to record payment"}
	}
	return IPNAck{RspCode: "00", Message: "Confirm success"}
}
