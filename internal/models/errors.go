package models

import "errors"

// Rule violations raised by the occupancy and billing engine.
var (
	ErrAlreadyOccupied   = errors.New("flat_already_occupied")
	ErrFlatNotOccupied   = errors.New("flat_not_occupied")
	ErrDuplicateBlock    = errors.New("duplicate_block")
	ErrUnknownBlock      = errors.New("unknown_block")
	ErrDuplicateFlat     = errors.New("duplicate_flat")
	ErrFlatNotFound      = errors.New("flat_not_found")
	ErrPendingDues       = errors.New("pending_dues")
	ErrNoPendingDues     = errors.New("no_pending_dues")
	ErrNoPaymentStrategy = errors.New("no_payment_strategy")
	ErrOccupantNotFound  = errors.New("occupant_not_found")

	ErrCommunityAlreadyEstablished = errors.New("community_already_established")
	ErrCommunityNotEstablished     = errors.New("community_not_established")
)
