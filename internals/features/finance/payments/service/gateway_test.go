// file: internals/features/finance/payments/service/gateway_test.go
package service

import (
	"context"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	billingModel "ktx_backend/internals/features/finance/billing/model"
	paymentModel "ktx_backend/internals/features/finance/payments/model"
)

func testGateway() *GatewayService {
	return &GatewayService{
		Secret:    "super-secret-key",
		PayURL:    "https://pay.example.vn/checkout",
		ReturnURL: "https://ktx.example.vn/payment/return",
	}
}

func signedParams(g *GatewayService, invoiceID uuid.UUID, amount float64, responseCode string) map[string]string {
	params := map[string]string{
		"orderId":      invoiceID.String(),
		"amount":       strconv.FormatFloat(amount, 'f', -1, 64),
		"ipAddr":       "10.0.0.1",
		"createDate":   "20260830120000",
		"orderDesc":    "Thanh toan hoa don KTX",
		"billingName":  "Nguyen Van A",
		"studentInfo":  invoiceID.String(),
		"responseCode": responseCode,
	}
	params["signature"] = g.Sign(params)
	return params
}

func TestGateway_SignAndVerify(t *testing.T) {
	g := testGateway()
	params := signedParams(g, uuid.New(), 1_200_000, "00")
	require.True(t, g.VerifySignature(params))
}

func TestGateway_VerifyRejectsTamperedAmount(t *testing.T) {
	g := testGateway()
	params := signedParams(g, uuid.New(), 1_200_000, "00")
	params["amount"] = "1"
	require.False(t, g.VerifySignature(params))
}

func TestGateway_VerifyIgnoresUnsignedExtraKeys(t *testing.T) {
	g := testGateway()
	params := signedParams(g, uuid.New(), 1_200_000, "00")
	// cổng chèn thêm field tracking ngoài whitelist: chữ ký vẫn đúng
	params["promoCode"] = "TET2026"
	params["gatewayTraceId"] = "abc-123"
	require.True(t, g.VerifySignature(params))
}

func TestGateway_VerifyRejectsMissingSignature(t *testing.T) {
	g := testGateway()
	params := signedParams(g, uuid.New(), 1_200_000, "00")
	delete(params, "signature")
	require.False(t, g.VerifySignature(params))
}

func TestNormalizeParams_FloatFormatting(t *testing.T) {
	raw := map[string]any{
		"amount":  12_000_000.0, // JSON số luôn decode ra float64
		"orderId": "abc",
		"retry":   true,
		"empty":   nil,
	}
	got := NormalizeParams(raw)
	require.Equal(t, "12000000", got["amount"]) // không được ra "1.2e+07"
	require.Equal(t, "abc", got["orderId"])
	require.Equal(t, "true", got["retry"])
	_, ok := got["empty"]
	require.False(t, ok)
}

func TestCreatePaymentURL(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	g := testGateway()
	invoice := seedInvoice(t, db, 1_500_000)

	u, err := g.CreatePaymentURL(ctx, db, invoice.InvoiceID, "10.0.0.1", "Nguyen Van A")
	require.NoError(t, err)
	require.Contains(t, u, g.PayURL)
	require.Contains(t, u, "signature=")
	require.Contains(t, u, invoice.InvoiceID.String())
}

func TestCreatePaymentURL_RejectsSettledInvoice(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	g := testGateway()
	invoice := seedInvoice(t, db, 1_000_000)

	_, err := ProcessPayment(ctx, db, invoice.InvoiceID, 1_000_000, paymentModel.PaymentMethodCash, nil)
	require.NoError(t, err)

	_, err = g.CreatePaymentURL(ctx, db, invoice.InvoiceID, "10.0.0.1", "A")
	require.Error(t, err)
}

func TestProcessIPN_BadSignature(t *testing.T) {
	db := newTestDB(t)
	g := testGateway()
	params := signedParams(g, uuid.New(), 100, "00")
	params["signature"] = "deadbeef"

	ack := g.ProcessIPN(context.Background(), db, params)
	require.Equal(t, "97", ack.RspCode)
}

func TestProcessIPN_SuccessRecordsPayment(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	g := testGateway()
	invoice := seedInvoice(t, db, 1_000_000)

	params := signedParams(g, invoice.InvoiceID, 1_000_000, "00")
	params["transactionNo"] = "GW-889900"

	ack := g.ProcessIPN(ctx, db, params)
	require.Equal(t, "00", ack.RspCode)

	var got billingModel.Invoice
	require.NoError(t, db.First(&got, "invoice_id = ?", invoice.InvoiceID).Error)
	require.Equal(t, billingModel.InvoiceStatusPaid, got.InvoiceStatus)

	var payment paymentModel.Payment
	require.NoError(t, db.First(&payment, "payment_invoice_id = ?", invoice.InvoiceID).Error)
	require.Equal(t, paymentModel.PaymentMethodOnline, payment.PaymentMethod)
	require.Equal(t, "GW-889900", *payment.PaymentTransactionID)
}

func TestProcessIPN_ReplayedNotifyAcksWithoutDoubleCharge(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	g := testGateway()
	invoice := seedInvoice(t, db, 1_000_000)

	params := signedParams(g, invoice.InvoiceID, 1_000_000, "00")
	params["transactionNo"] = "GW-889900"

	require.Equal(t, "00", g.ProcessIPN(ctx, db, params).RspCode)
	require.Equal(t, "00", g.ProcessIPN(ctx, db, params).RspCode)

	var paymentCount int64
	require.NoError(t, db.Model(&paymentModel.Payment{}).Count(&paymentCount).Error)
	require.Equal(t, int64(1), paymentCount)
}

func TestProcessIPN_DeclinedTransactionAcksWithoutRecording(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	g := testGateway()
	invoice := seedInvoice(t, db, 1_000_000)

	params := signedParams(g, invoice.InvoiceID, 1_000_000, "24") // user hủy
	ack := g.ProcessIPN(ctx, db, params)
	require.Equal(t, "00", ack.RspCode)

	var paymentCount int64
	require.NoError(t, db.Model(&paymentModel.Payment{}).Count(&paymentCount).Error)
	require.Equal(t, int64(0), paymentCount)

	var got billingModel.Invoice
	require.NoError(t, db.First(&got, "invoice_id = ?", invoice.InvoiceID).Error)
	require.Equal(t, billingModel.InvoiceStatusUnpaid, got.InvoiceStatus)
}

func TestProcessIPN_MissingTransactionNoFallsBackToVirtual(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	g := testGateway()
	invoice := seedInvoice(t, db, 500_000)

	params := signedParams(g, invoice.InvoiceID, 500_000, "00")
	ack := g.ProcessIPN(ctx, db, params)
	require.Equal(t, "00", ack.RspCode)

	var payment paymentModel.Payment
	require.NoError(t, db.First(&payment, "payment_invoice_id = ?", invoice.InvoiceID).Error)
	require.Equal(t, paymentModel.PaymentMethodVirtualBank, payment.PaymentMethod)
	require.Contains(t, *payment.PaymentTransactionID, "VIRTUAL_")
}

func TestProcessIPN_UnknownInvoiceReturns99(t *testing.T) {
	db := newTestDB(t)
	g := testGateway()

	params := signedParams(g, uuid.New(), 100, "00")
	params["transactionNo"] = "GW-1"
	ack := g.ProcessIPN(context.Background(), db, params)
	require.Equal(t, "99", ack.RspCode)
}
