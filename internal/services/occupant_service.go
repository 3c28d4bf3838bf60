package services

import (
	"context"
	"errors"
	"time"

	"github.com/poofware/housing-service/internal/dtos"
	"github.com/poofware/housing-service/internal/models"
	"github.com/poofware/housing-service/internal/repositories"
	"github.com/poofware/housing-service/internal/utils"
)

// PaymentResult describes one settled bill.
type PaymentResult struct {
	Amount   int64
	PaidAt   time.Time
	Occupant *models.Occupant
}

type OccupantService struct {
	community *CommunityService
	occupants repositories.OccupantRepository
	payments  repositories.PaymentRepository
	billing   *BillingService
	notifier  *NotificationService
	now       Clock
}

func NewOccupantService(
	community *CommunityService,
	occupants repositories.OccupantRepository,
	payments repositories.PaymentRepository,
	billing *BillingService,
	notifier *NotificationService,
	now Clock,
) *OccupantService {
	return &OccupantService{
		community: community,
		occupants: occupants,
		payments:  payments,
		billing:   billing,
		notifier:  notifier,
		now:       now,
	}
}

// Register turns a registration request into an UNPAID occupant of an
// unoccupied flat. The occupant row is written first so the email is claimed
// before the flat; if occupying the flat then fails the row is removed.
func (s *OccupantService) Register(ctx context.Context, req dtos.RegisterOccupantRequest) (*models.Occupant, error) {
	logger := utils.Logger.WithField("email", req.Email)

	flat, err := s.community.GetFlatByDetails(ctx, req.BlockNo, req.FlatNo)
	if err != nil {
		return nil, err
	}
	if flat == nil {
		return nil, models.ErrFlatNotFound
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	now := s.now()
	o, err := models.NewOccupant(models.OccupantIdentity{
		Name:         req.Name,
		Phone:        req.Phone,
		NationalID:   req.NationalID,
		Email:        req.Email,
		PasswordHash: hash,
	}, flat.Category, now)
	if err != nil {
		return nil, err
	}

	// Dry run on a copy binds the occupant's block and flat and rejects an
	// occupied flat before anything is written.
	if err := flat.Clone().Occupy(o); err != nil {
		return nil, err
	}
	due := s.billing.DueDateFor(now)
	o.DueDate = &due

	if err := s.occupants.Create(ctx, o); err != nil {
		return nil, err
	}
	if err := s.community.OccupyFlat(ctx, o.BlockNo, o.FlatNo, o); err != nil {
		if delErr := s.occupants.Delete(ctx, o.Email); delErr != nil {
			logger.WithError(delErr).Error("Failed to remove occupant after flat occupy failure")
		}
		return nil, err
	}

	logger.WithField("block", o.BlockNo).
		WithField("flat", o.FlatNo).
		WithField("pending_dues", o.PendingDues).
		Info("Occupant registered")
	return o, nil
}

func (s *OccupantService) Get(ctx context.Context, email string) (*models.Occupant, error) {
	o, err := s.occupants.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, models.ErrOccupantNotFound
	}
	return o, nil
}

// GetAmount returns the balance currently owed.
func (s *OccupantService) GetAmount(ctx context.Context, email string) (int64, error) {
	o, err := s.Get(ctx, email)
	if err != nil {
		return 0, err
	}
	return o.Amount(), nil
}

// PayBill settles the occupant's balance. The billing transition, ledger
// append and occupant update commit together; receipts are queued only after
// the commit.
func (s *OccupantService) PayBill(ctx context.Context, email string) (*PaymentResult, error) {
	now := s.now()
	staged := &stagedObserver{}
	var amount int64

	o, err := s.occupants.SettleAtomic(ctx, email, func(o *models.Occupant, record models.RecordFunc) error {
		staged.events = nil
		o.Subscribe(logObserver{})
		o.Subscribe(staged)

		paid, err := o.PayBill(now, record)
		if err != nil {
			return err
		}
		amount = paid
		if o.PendingDues > 0 && o.DueDate == nil {
			due := s.billing.DueDateFor(now)
			o.DueDate = &due
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	staged.flush(s.notifier)
	return &PaymentResult{Amount: amount, PaidAt: now, Occupant: o}, nil
}

// GetPaymentHistory lists the occupant's ledger entries, oldest first.
func (s *OccupantService) GetPaymentHistory(ctx context.Context, email string) ([]*models.PaymentRecord, error) {
	return s.payments.ListByEmail(ctx, email)
}

// GetPayments lists the whole ledger, oldest first.
func (s *OccupantService) GetPayments(ctx context.Context) ([]*models.PaymentRecord, error) {
	return s.payments.ListAll(ctx)
}

func (s *OccupantService) List(ctx context.Context) ([]*models.Occupant, error) {
	return s.occupants.List(ctx)
}

// Vacate releases the occupant's flat and removes the occupant. Nothing may
// be owed.
func (s *OccupantService) Vacate(ctx context.Context, email string) error {
	o, err := s.Get(ctx, email)
	if err != nil {
		return err
	}
	if err := o.VacateFlat(); err != nil {
		return err
	}

	if err := s.occupants.DeleteIfVersion(ctx, o.Email, o.RowVersion); err != nil {
		return err
	}
	if err := s.community.ReleaseFlat(ctx, o.BlockNo, o.FlatNo); err != nil {
		if errors.Is(err, models.ErrFlatNotOccupied) {
			utils.Logger.WithField("email", o.Email).Warn("Flat was already released")
			return nil
		}
		// put the occupant back so the flat and occupant stay consistent
		if restoreErr := s.occupants.Create(ctx, o); restoreErr != nil {
			utils.Logger.WithError(restoreErr).WithField("email", o.Email).Error("Failed to restore occupant after release failure")
		}
		return err
	}

	utils.Logger.WithField("email", o.Email).
		WithField("block", o.BlockNo).
		WithField("flat", o.FlatNo).
		Info("Occupant vacated flat")
	return nil
}
