package health

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrRejected wraps every validation failure of an authority-side request.
	ErrRejected = errors.New("health: request rejected")

	// ErrNotAuthority is returned by authority-only operations called on a proxy.
	ErrNotAuthority = errors.New("health: not authoritative")

	// ErrInvalidMaxHealth is returned for a non-positive or non-finite ceiling.
	ErrInvalidMaxHealth = errors.New("health: max health must be positive and finite")
)

// Rules are the game rules checked by the authority before applying a
// forwarded request.
type Rules struct {
	// AllowSetWhileDead lets forwarded SetHealth requests change the health of a
	// dead entity. The entity stays dead either way; only BringToLife revives.
	AllowSetWhileDead bool `yaml:"allow_set_while_dead" env:"ALLOW_SET_WHILE_DEAD"`
}

// DefaultRules forbid mutating a dead entity through SetHealth requests.
func DefaultRules() Rules {
	return Rules{}
}

// ValidateSetHealth checks a forwarded SetHealth request.
func (r Rules) ValidateSetHealth(dead bool, value float64) error {
	if err := validateFinite(value); err != nil {
		return err
	}
	if dead && !r.AllowSetWhileDead {
		return fmt.Errorf("%w: entity is dead", ErrRejected)
	}
	return nil
}

// ValidateBringToLife checks a forwarded BringToLife request.
func (r Rules) ValidateBringToLife(value float64) error {
	return validateFinite(value)
}

func validateFinite(value float64) error {
	if math.IsNaN(value) {
		return fmt.Errorf("%w: value is NaN", ErrRejected)
	}
	if math.IsInf(value, 0) {
		return fmt.Errorf("%w: value is infinite", ErrRejected)
	}
	return nil
}

// clamp limits v to [0, maxValue].
func clamp(v, maxValue float64) float64 {
	return min(max(v, 0), maxValue)
}
