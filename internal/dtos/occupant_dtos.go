package dtos

import (
	"time"

	"github.com/poofware/housing-service/internal/models"
)

type RegisterOccupantRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=100"`
	Phone      string `json:"phone" validate:"required,phone"`
	NationalID string `json:"national_id" validate:"required,numeric,len=12"`
	Email      string `json:"email" validate:"required,email,max=254"`
	Password   string `json:"password" validate:"required,min=6,max=128"`
	BlockNo    string `json:"block_no" validate:"required,max=8"`
	FlatNo     string `json:"flat_no" validate:"required,max=10"`
}

type OccupantResponse struct {
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	Phone         string     `json:"phone"`
	BlockNo       string     `json:"block_no"`
	FlatNo        string     `json:"flat_no"`
	Category      int        `json:"category"`
	BillingStatus string     `json:"billing_status"`
	PendingDues   int64      `json:"pending_dues"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	LastPaymentAt *time.Time `json:"last_payment_at,omitempty"`
}

func NewOccupantResponse(o *models.Occupant) OccupantResponse {
	return OccupantResponse{
		Email:         o.Email,
		Name:          o.Name,
		Phone:         o.Phone,
		BlockNo:       o.BlockNo,
		FlatNo:        o.FlatNo,
		Category:      int(o.Category),
		BillingStatus: string(o.BillingStatus),
		PendingDues:   o.PendingDues,
		DueDate:       o.DueDate,
		LastPaymentAt: o.LastPaymentAt,
	}
}

type AmountResponse struct {
	AmountToPay   int64      `json:"amount_to_pay"`
	BillingStatus string     `json:"billing_status"`
	DueDate       *time.Time `json:"due_date,omitempty"`
}

type PaymentReceiptResponse struct {
	AmountPaid    int64     `json:"amount_paid"`
	PendingDues   int64     `json:"pending_dues"`
	BillingStatus string    `json:"billing_status"`
	PaidAt        time.Time `json:"paid_at"`
}

type PaymentRecordResponse struct {
	Email  string    `json:"email"`
	Amount int64     `json:"amount"`
	PaidAt time.Time `json:"paid_at"`
}

type PaymentsResponse struct {
	Payments []PaymentRecordResponse `json:"payments"`
}

func NewPaymentsResponse(records []*models.PaymentRecord) PaymentsResponse {
	out := PaymentsResponse{Payments: make([]PaymentRecordResponse, 0, len(records))}
	for _, p := range records {
		out.Payments = append(out.Payments, PaymentRecordResponse{
			Email:  p.Email,
			Amount: p.Amount,
			PaidAt: p.PaidAt,
		})
	}
	return out
}

type OccupantsResponse struct {
	Occupants []OccupantResponse `json:"occupants"`
}

type BillingRunResponse struct {
	Rebilled int `json:"rebilled"`
}
