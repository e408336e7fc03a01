package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/* ===================== Enums (string) ===================== */

const (
	InvoiceStatusUnpaid    = "CHUA_THANH_TOAN"
	InvoiceStatusPartial   = "TRA_MOT_PHAN"
	InvoiceStatusPaid      = "DA_THANH_TOAN"
	InvoiceStatusOverdue   = "QUA_HAN" // chuyển bởi cron ngoài, core không tự set
	InvoiceStatusCancelled = "DA_HUY"
)

// Loại hóa đơn (discriminator của invoice_details)
const (
	InvoiceKindUtility      = "UTILITY"
	InvoiceKindPersonal     = "PERSONAL"
	InvoiceKindTransferFee  = "TRANSFER_FEE"
	InvoiceKindFirstPayment = "FIRST_PAYMENT"
)

/* ===================== Invoice ===================== */

// Invoice hoặc gắn phòng (điện/nước chung, contract_id NULL) hoặc gắn
// hợp đồng (tiền phòng/dịch vụ/chuyển phòng).
type Invoice struct {
	InvoiceID uuid.UUID `gorm:"column:invoice_id;type:uuid;primaryKey" json:"invoice_id"`

	InvoiceContractID *uuid.UUID `gorm:"column:invoice_contract_id;type:uuid;index" json:"invoice_contract_id,omitempty"`
	InvoiceRoomID     *uuid.UUID `gorm:"column:invoice_room_id;type:uuid;index" json:"invoice_room_id,omitempty"`

	InvoiceTitle *string `gorm:"column:invoice_title;type:varchar(255)" json:"invoice_title,omitempty"`

	InvoiceTotalAmount     float64 `gorm:"column:invoice_total_amount;not null" json:"invoice_total_amount"`
	InvoicePaidAmount      float64 `gorm:"column:invoice_paid_amount;not null;default:0" json:"invoice_paid_amount"`
	InvoiceRemainingAmount float64 `gorm:"column:invoice_remaining_amount;not null;default:0" json:"invoice_remaining_amount"`

	InvoiceStatus  string     `gorm:"column:invoice_status;type:varchar(20);not null;default:'CHUA_THANH_TOAN'" json:"invoice_status"`
	InvoiceDueDate *time.Time `gorm:"column:invoice_due_date" json:"invoice_due_date,omitempty"`

	InvoiceDetails datatypes.JSON `gorm:"column:invoice_details;type:jsonb" json:"invoice_details,omitempty"`

	// Khóa idempotency của đợt phát hành hàng loạt:
	// "UTILITY:<room>:<yyyy>-<mm>" / "PERSONAL:<contract>:<yyyy>-<mm>".
	// NULL cho hóa đơn phát sinh đơn lẻ (first payment, transfer).
	InvoicePeriodKey *string `gorm:"column:invoice_period_key;type:varchar(80);uniqueIndex" json:"invoice_period_key,omitempty"`

	CreatedAt time.Time `gorm:"column:invoice_created_at;autoCreateTime" json:"invoice_created_at"`
	UpdatedAt time.Time `gorm:"column:invoice_updated_at;autoUpdateTime" json:"invoice_updated_at"`
}

func (Invoice) TableName() string { return "invoices" }

func (m *Invoice) BeforeCreate(tx *gorm.DB) error {
	if m.InvoiceID == uuid.Nil {
		m.InvoiceID = uuid.New()
	}
	return nil
}

func (m *Invoice) IsSettled() bool {
	return m.InvoiceStatus == InvoiceStatusPaid
}

/* ===================== Invoice details (tagged variant) ===================== */

// Mỗi loại hóa đơn có line item typed riêng; cùng serialize về một JSONB.

type UtilityLine struct {
	Name   string  `json:"name"` // "Điện" | "Nước"
	Usage  float64 `json:"usage"`
	Rate   float64 `json:"rate"`
	Amount float64 `json:"amount"`
}

type PersonalLine struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity,omitempty"`
	Price    float64 `json:"price,omitempty"`
	Amount   float64 `json:"amount"`
}

type TransferFeeDetail struct {
	OldContractID    string  `json:"old_contract_id"`
	OldDepositCredit float64 `json:"old_deposit_credit"`
	RefundRentAmount float64 `json:"refund_rent_amount"`
	OriginalTotal    float64 `json:"original_total"`
}

type FirstPaymentDetail struct {
	RentMonths    int     `json:"rent_months"`
	PricePerMonth float64 `json:"price_per_month"`
	Deposit       float64 `json:"deposit"`
	StartDate     string  `json:"start_date"`
}

type InvoiceDetails struct {
	Kind  string `json:"type,omitempty"`
	Month int    `json:"month,omitempty"`
	Year  int    `json:"year,omitempty"`

	UtilityItems  []UtilityLine  `json:"utility_items,omitempty"`
	PersonalItems []PersonalLine `json:"personal_items,omitempty"`

	Transfer     *TransferFeeDetail  `json:"transfer,omitempty"`
	FirstPayment *FirstPaymentDetail `json:"first_payment,omitempty"`

	Note         string `json:"note,omitempty"`
	CancelReason string `json:"cancel_reason,omitempty"`
}

func (d InvoiceDetails) JSON() datatypes.JSON {
	b, _ := json.Marshal(d)
	return datatypes.JSON(b)
}

// ParseInvoiceDetails đọc lại variant từ JSONB; input rỗng -> zero value.
func ParseInvoiceDetails(j datatypes.JSON) InvoiceDetails {
	var d InvoiceDetails
	if len(j) > 0 {
		_ = json.Unmarshal(j, &d)
	}
	return d
}
