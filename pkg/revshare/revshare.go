// Package revshare computes the three-way split of a gross sale amount
// between creator, platform, and brand. The split is deterministic: creator
// and platform amounts round down and the brand absorbs the remainder, so the
// three parts always sum to the gross exactly.
package revshare

import (
	"errors"
	"fmt"
	"math"
)

// Default rates applied when a product does not configure its own
const (
	DefaultCreatorRate  = 0.25
	DefaultPlatformRate = 0.15
)

var (
	// ErrInvalidGross is returned when the gross amount is not positive
	ErrInvalidGross = errors.New("gross amount must be positive")

	// ErrInvalidRate is returned when a rate falls outside [0, 1]
	ErrInvalidRate = errors.New("rate must be between 0 and 1")
)

// Breakdown is the result of splitting one gross amount. All amounts are in
// the smallest currency unit.
type Breakdown struct {
	GrossAmount    int64 `json:"gross_amount"`
	CreatorAmount  int64 `json:"creator_amount"`
	PlatformAmount int64 `json:"platform_amount"`
	BrandAmount    int64 `json:"brand_amount"`
}

// Split divides gross between creator, platform, and brand.
// creatorRate and platformRate are fractions in [0,1]; their sum may not
// exceed 1, otherwise the brand share would go negative.
func Split(gross int64, creatorRate, platformRate float64) (Breakdown, error) {
	if gross <= 0 {
		return Breakdown{}, fmt.Errorf("%w: got %d", ErrInvalidGross, gross)
	}
	if creatorRate < 0 || creatorRate > 1 {
		return Breakdown{}, fmt.Errorf("%w: creator rate %v", ErrInvalidRate, creatorRate)
	}
	if platformRate < 0 || platformRate > 1 {
		return Breakdown{}, fmt.Errorf("%w: platform rate %v", ErrInvalidRate, platformRate)
	}

	brandRate := 1 - creatorRate - platformRate
	if brandRate < 0 || brandRate > 1 {
		return Breakdown{}, fmt.Errorf("%w: effective brand rate %v", ErrInvalidRate, brandRate)
	}

	creatorAmount := int64(math.Floor(float64(gross) * creatorRate))
	platformAmount := int64(math.Floor(float64(gross) * platformRate))

	// The brand takes whatever rounding left over, so the parts conserve
	// the gross exactly.
	brandAmount := gross - creatorAmount - platformAmount

	return Breakdown{
		GrossAmount:    gross,
		CreatorAmount:  creatorAmount,
		PlatformAmount: platformAmount,
		BrandAmount:    brandAmount,
	}, nil
}

// SplitWithDefaults behaves like Split but substitutes the platform default
// for any nil rate. Products that never configured rates settle at
// 0.25 / 0.15.
func SplitWithDefaults(gross int64, creatorRate, platformRate *float64) (Breakdown, error) {
	cr := DefaultCreatorRate
	if creatorRate != nil {
		cr = *creatorRate
	}

	pr := DefaultPlatformRate
	if platformRate != nil {
		pr = *platformRate
	}

	return Split(gross, cr, pr)
}
