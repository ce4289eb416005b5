package carrier

import (
	"errors"
	"fmt"

	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/pkg/errs"
	"handoff/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

// ErrCarrierIsNotConstructed is returned when a Carrier instance was not created
// through NewCarrier or RestoreCarrier.
var ErrCarrierIsNotConstructed = errors.New("Carrier must be created via NewCarrier constructor")

// averagePlaces is the precision of the stored average rating.
const averagePlaces = 2

// Carrier holds the delivery statistics of one carrier. Identity and profile
// data live with the identity provider; this aggregate only counts.
type Carrier struct {
	id                  kernel.UUID
	completedDeliveries int
	ratingCount         int
	ratingSum           int
	averageRating       decimal.Decimal
	version             int64
	guard               guard.ConstructorGuard
}

// Snapshot is the flat persisted shape of a Carrier.
type Snapshot struct {
	ID                  kernel.UUID
	CompletedDeliveries int
	RatingCount         int
	RatingSum           int
	AverageRating       decimal.Decimal
	Version             int64
}

// NewCarrier creates empty statistics for id.
func NewCarrier(id kernel.UUID) (*Carrier, error) {
	if err := id.Validate(); err != nil {
		return nil, errs.NewValueIsRequiredErrorWithCause("id", err)
	}
	return &Carrier{
		id:            id,
		averageRating: decimal.Zero,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

// RestoreCarrier rehydrates statistics from persistence.
func RestoreCarrier(s Snapshot) (*Carrier, error) {
	if err := s.ID.Validate(); err != nil {
		return nil, errs.NewValueIsRequiredErrorWithCause("id", err)
	}

	var countErr error
	switch {
	case s.CompletedDeliveries < 0 || s.RatingCount < 0:
		countErr = errs.NewValueIsInvalidErrorWithCause("carrier stats", fmt.Errorf("negative counters for %s", s.ID))
	case s.RatingCount > s.CompletedDeliveries:
		countErr = errs.NewValueIsInvalidErrorWithCause(
			"carrier stats",
			fmt.Errorf("%d ratings exceed %d deliveries", s.RatingCount, s.CompletedDeliveries),
		)
	}
	if countErr != nil {
		return nil, countErr
	}

	return &Carrier{
		id:                  s.ID,
		completedDeliveries: s.CompletedDeliveries,
		ratingCount:         s.RatingCount,
		ratingSum:           s.RatingSum,
		averageRating:       s.AverageRating,
		version:             s.Version,
		guard:               guard.NewConstructorGuard(),
	}, nil
}

func (c *Carrier) Validate() error {
	if c == nil {
		return ErrCarrierIsNotConstructed
	}
	return c.guard.Validate(ErrCarrierIsNotConstructed)
}

func (c *Carrier) ID() kernel.UUID                { return c.id }
func (c *Carrier) CompletedDeliveries() int       { return c.completedDeliveries }
func (c *Carrier) RatingCount() int               { return c.ratingCount }
func (c *Carrier) AverageRating() decimal.Decimal { return c.averageRating }
func (c *Carrier) Version() int64                 { return c.version }

// RecordDelivery counts a resolved delivery and folds in the vendor's rating
// when one was given. Auto-confirmed deliveries carry no rating.
func (c *Carrier) RecordDelivery(rating *kernel.Rating) error {
	if rating != nil {
		if err := rating.Validate(); err != nil {
			return err
		}
	}

	c.completedDeliveries++
	if rating == nil {
		return nil
	}

	c.ratingCount++
	c.ratingSum += rating.Int()
	c.averageRating = decimal.NewFromInt(int64(c.ratingSum)).
		DivRound(decimal.NewFromInt(int64(c.ratingCount)), averagePlaces)
	return nil
}

func (c *Carrier) Snapshot() Snapshot {
	return Snapshot{
		ID:                  c.id,
		CompletedDeliveries: c.completedDeliveries,
		RatingCount:         c.ratingCount,
		RatingSum:           c.ratingSum,
		AverageRating:       c.averageRating,
		Version:             c.version,
	}
}
