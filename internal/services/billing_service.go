package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"

	"github.com/poofware/housing-service/internal/models"
	"github.com/poofware/housing-service/internal/repositories"
	"github.com/poofware/housing-service/internal/utils"
)

var errNoTransition = errors.New("no_transition")

// BillingService runs the billing-period boundary: on the first day of a
// period every PAID occupant goes back to UNPAID owing the next cycle.
type BillingService struct {
	occupants     repositories.OccupantRepository
	now           Clock
	graceWorkdays int
}

func NewBillingService(occupants repositories.OccupantRepository, now Clock, graceWorkdays int) *BillingService {
	return &BillingService{occupants: occupants, now: now, graceWorkdays: graceWorkdays}
}

// DueDateFor is the end of the grace period for dues issued at t, counted in
// office working days.
func (s *BillingService) DueDateFor(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return utils.AddWorkdays(day, s.graceWorkdays)
}

// RunPeriodBoundary applies the period-start check to every occupant and
// returns how many were re-billed. Running it twice on the same day re-bills
// nobody the second time. On any other day it is a no-op.
func (s *BillingService) RunPeriodBoundary(ctx context.Context) (int, error) {
	now := s.now()
	logger := utils.Logger.WithField("period_start", now.Format("2006-01-02"))
	if !models.IsBillingPeriodStart(now) {
		logger.Debug("Not a billing period start; nothing to do")
		return 0, nil
	}

	occupants, err := s.occupants.List(ctx)
	if err != nil {
		return 0, err
	}
	due := s.DueDateFor(now)

	var (
		rebilled int
		errs     []error
	)
	for _, o := range occupants {
		err := s.occupants.UpdateWithRetry(ctx, o.Email, func(cur *models.Occupant) error {
			if !cur.StartBillingPeriod(now, due) {
				return errNoTransition
			}
			return nil
		})
		switch {
		case err == nil:
			rebilled++
		case errors.Is(err, errNoTransition):
		case errors.Is(err, pgx.ErrNoRows):
			// vacated since List
			logger.WithField("email", o.Email).Debug("Occupant gone before billing period start")
		default:
			logger.WithError(err).WithField("email", o.Email).Error("Failed to start billing period for occupant")
			errs = append(errs, err)
		}
	}

	logger.WithField("rebilled", rebilled).Info("Billing period started")
	return rebilled, errors.Join(errs...)
}
