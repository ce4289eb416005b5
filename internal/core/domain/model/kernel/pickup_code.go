package kernel

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"regexp"

	"handoff/internal/pkg/errs"
)

const PickupCodeLength = 6

var (
	pickupCodePattern = regexp.MustCompile(`^[0-9]{6}$`)
	pickupCodeSpace   = big.NewInt(1_000_000)
)

// PickupCode is the zero-padded 6-digit secret shown to the vendor and
// checked when the carrier collects the parcel.
type PickupCode struct {
	value string
}

// GeneratePickupCode draws a uniform code from crypto/rand.
func GeneratePickupCode() (PickupCode, error) {
	n, err := rand.Int(rand.Reader, pickupCodeSpace)
	if err != nil {
		return PickupCode{}, fmt.Errorf("generate pickup code: %w", err)
	}
	return PickupCode{value: fmt.Sprintf("%06d", n.Int64())}, nil
}

// NewPickupCode parses a stored or submitted code.
func NewPickupCode(value string) (PickupCode, error) {
	if value == "" {
		return PickupCode{}, errs.NewValueIsRequiredError("pickupCode")
	}
	if !pickupCodePattern.MatchString(value) {
		return PickupCode{}, errs.NewValueIsInvalidErrorWithCause(
			"pickupCode", fmt.Errorf("must be exactly %d digits", PickupCodeLength))
	}
	return PickupCode{value: value}, nil
}

func (c PickupCode) String() string {
	return c.value
}

func (c PickupCode) Validate() error {
	if c.value == "" {
		return errs.NewValueIsRequiredError("pickupCode")
	}
	return nil
}

// Matches compares the submitted string in constant time.
func (c PickupCode) Matches(submitted string) bool {
	if c.value == "" || len(submitted) != len(c.value) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c.value), []byte(submitted)) == 1
}
