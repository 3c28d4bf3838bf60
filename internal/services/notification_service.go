package services

import (
	"context"
	"sync"

	"github.com/poofware/housing-service/internal/constants"
	"github.com/poofware/housing-service/internal/models"
	"github.com/poofware/housing-service/internal/utils"
)

// ReceiptSender delivers one payment receipt over one channel.
type ReceiptSender interface {
	Name() string
	SendReceipt(ctx context.Context, ev models.PaymentEvent) error
}

// NotificationService fans settled payments out to the receipt senders on a
// single background worker. The queue is bounded: when it is full the event
// is dropped with a warning and the paying request is never blocked.
type NotificationService struct {
	senders []ReceiptSender
	events  chan models.PaymentEvent
	done    chan struct{}

	mu      sync.RWMutex
	closed  bool
	started bool
}

func NewNotificationService(queueSize int, senders ...ReceiptSender) *NotificationService {
	if queueSize < 1 {
		queueSize = 256
	}
	return &NotificationService{
		senders: senders,
		events:  make(chan models.PaymentEvent, queueSize),
		done:    make(chan struct{}),
	}
}

// Enqueue reports whether the event was accepted.
func (s *NotificationService) Enqueue(ev models.PaymentEvent) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false
	}
	select {
	case s.events <- ev:
		return true
	default:
		utils.Logger.WithField("email", ev.Email).Warn("Receipt queue full; dropping payment receipt")
		return false
	}
}

// Start launches the worker. ctx bounds every delivery.
func (s *NotificationService) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		for ev := range s.events {
			s.dispatch(ctx, ev)
		}
	}()
}

// Stop closes the queue and waits for queued receipts to drain.
func (s *NotificationService) Stop() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.events)
	started := s.started
	s.mu.Unlock()

	if started {
		<-s.done
	}
}

func (s *NotificationService) dispatch(ctx context.Context, ev models.PaymentEvent) {
	for _, sender := range s.senders {
		sendCtx, cancel := context.WithTimeout(ctx, constants.ReceiptSendTimeout)
		err := sender.SendReceipt(sendCtx, ev)
		cancel()
		if err != nil {
			utils.Logger.WithError(err).
				WithField("channel", sender.Name()).
				WithField("email", ev.Email).
				Error("Failed to deliver payment receipt")
		}
	}
}

/* ---------- payment observers ---------- */

// logObserver records every settled payment in the service log.
type logObserver struct{}

func (logObserver) PaymentMade(ev models.PaymentEvent) {
	utils.Logger.WithField("email", ev.Email).
		WithField("block", ev.BlockNo).
		WithField("flat", ev.FlatNo).
		WithField("amount", ev.Amount).
		WithField("pending", ev.Pending).
		Info("Payment settled")
}

// stagedObserver holds events until the payment transaction has committed.
type stagedObserver struct {
	events []models.PaymentEvent
}

func (o *stagedObserver) PaymentMade(ev models.PaymentEvent) {
	o.events = append(o.events, ev)
}

func (o *stagedObserver) flush(n *NotificationService) {
	if n == nil {
		return
	}
	for _, ev := range o.events {
		n.Enqueue(ev)
	}
	o.events = nil
}
