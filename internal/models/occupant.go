package models

import (
	"strings"
	"time"
)

// Occupant is a resident bound to exactly one flat. PendingDues is zero
// whenever BillingStatus is PAID. BilledPeriod is the last period whose cycle
// amount has been issued.
type Occupant struct {
	Versioned
	Email         string        `json:"email"`
	Name          string        `json:"name"`
	Phone         string        `json:"phone"`
	NationalID    string        `json:"national_id"`
	PasswordHash  string        `json:"-"`
	BlockNo       string        `json:"block_no"`
	FlatNo        string        `json:"flat_no"`
	Category      FlatCategory  `json:"category"`
	BillingStatus BillingStatus `json:"billing_status"`
	PendingDues   int64         `json:"pending_dues"`
	BilledPeriod  string        `json:"billed_period"`
	DueDate       *time.Time    `json:"due_date,omitempty"`
	LastPaymentAt *time.Time    `json:"last_payment_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	observers []PaymentObserver
}

func (o *Occupant) GetID() string { return o.Email }

// OccupantIdentity is the personal data collected at registration.
type OccupantIdentity struct {
	Name         string
	Phone        string
	NationalID   string
	Email        string
	PasswordHash string
}

// NewOccupant creates an UNPAID occupant for a flat of the given category,
// owing the strategy's initial amount. The flat binding is made by Flat.Occupy.
func NewOccupant(id OccupantIdentity, category FlatCategory, now time.Time) (*Occupant, error) {
	strategy, ok := StrategyForCategory(category)
	if !ok {
		return nil, ErrNoPaymentStrategy
	}
	return &Occupant{
		Email:         strings.ToLower(strings.TrimSpace(id.Email)),
		Name:          strings.TrimSpace(id.Name),
		Phone:         strings.TrimSpace(id.Phone),
		NationalID:    strings.TrimSpace(id.NationalID),
		PasswordHash:  id.PasswordHash,
		Category:      category,
		BillingStatus: BillingUnpaid,
		PendingDues:   strategy.InitialAmount(),
		BilledPeriod:  BillingPeriodOf(now),
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Amount is the balance currently owed.
func (o *Occupant) Amount() int64 {
	return o.PendingDues
}

func (o *Occupant) Strategy() (PaymentStrategy, bool) {
	return StrategyForCategory(o.Category)
}

// Subscribe registers an observer for this occupant's payments. Observers are
// not persisted.
func (o *Occupant) Subscribe(obs PaymentObserver) {
	o.observers = append(o.observers, obs)
}

// RecordFunc appends a settled amount to the payment ledger.
type RecordFunc func(amount int64, at time.Time) error

// PayBill settles the balance owed. In order it reads the amount, runs the
// billing transition, records the amount, settles the balance and notifies
// observers. The caller persists the occupant.
//
// The strategy's in-call increment is discarded when settling. If the call
// lands on the start of a period not yet billed, the transition issues that
// period's cycle and it stays owed. A period is billed at most once, whether
// by the boundary job, by registration or here. On a record error the
// occupant is restored.
func (o *Occupant) PayBill(now time.Time, record RecordFunc) (int64, error) {
	amount := o.Amount()
	if amount <= 0 {
		return 0, ErrNoPendingDues
	}
	strategy, ok := o.Strategy()
	if !ok {
		return 0, ErrNoPaymentStrategy
	}

	prevStatus, prevDues, prevPeriod := o.BillingStatus, o.PendingDues, o.BilledPeriod
	BillingStateFor(o.BillingStatus, strategy).Pay(o, now)

	if record != nil {
		if err := record(amount, now); err != nil {
			o.BillingStatus, o.PendingDues, o.BilledPeriod = prevStatus, prevDues, prevPeriod
			return 0, err
		}
	}

	remaining := o.PendingDues - amount - strategy.InitialAmount()
	if remaining < 0 {
		remaining = 0
	}
	o.PendingDues = remaining
	if remaining == 0 {
		o.DueDate = nil
	}
	paidAt := now
	o.LastPaymentAt = &paidAt
	o.UpdatedAt = now

	o.notify(PaymentEvent{
		Email:   o.Email,
		Name:    o.Name,
		Phone:   o.Phone,
		BlockNo: o.BlockNo,
		FlatNo:  o.FlatNo,
		Amount:  amount,
		Pending: o.PendingDues,
		PaidAt:  now,
	})
	return amount, nil
}

// StartBillingPeriod applies the period-start check. It reports whether the
// occupant moved back to UNPAID, in which case dueDate is recorded.
func (o *Occupant) StartBillingPeriod(now, dueDate time.Time) bool {
	strategy, ok := o.Strategy()
	if !ok {
		return false
	}
	before := o.BillingStatus
	BillingStateFor(o.BillingStatus, strategy).CheckTransition(o, now)
	if o.BillingStatus == before {
		return false
	}
	o.DueDate = &dueDate
	o.UpdatedAt = now
	return true
}

// VacateFlat checks that the occupant may leave: nothing may be owed.
func (o *Occupant) VacateFlat() error {
	if o.PendingDues != 0 {
		return ErrPendingDues
	}
	return nil
}

func (o *Occupant) notify(ev PaymentEvent) {
	for _, obs := range o.observers {
		obs.PaymentMade(ev)
	}
}

// Clone copies the persisted fields. Observers are not carried over.
func (o *Occupant) Clone() *Occupant {
	cp := *o
	cp.observers = nil
	if o.DueDate != nil {
		d := *o.DueDate
		cp.DueDate = &d
	}
	if o.LastPaymentAt != nil {
		p := *o.LastPaymentAt
		cp.LastPaymentAt = &p
	}
	return &cp
}
