package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentRecord is one immutable ledger entry.
type PaymentRecord struct {
	ID     uuid.UUID `json:"id"`
	Email  string    `json:"email"`
	Amount int64     `json:"amount"`
	PaidAt time.Time `json:"paid_at"`
}

// PaymentEvent is what observers receive after a bill is settled.
type PaymentEvent struct {
	Email   string
	Name    string
	Phone   string
	BlockNo string
	FlatNo  string
	Amount  int64
	Pending int64
	PaidAt  time.Time
}

type PaymentObserver interface {
	PaymentMade(ev PaymentEvent)
}

// PaymentObserverFunc adapts a function to PaymentObserver.
type PaymentObserverFunc func(ev PaymentEvent)

func (f PaymentObserverFunc) PaymentMade(ev PaymentEvent) { f(ev) }
