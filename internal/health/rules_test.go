package health

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRules_ValidateSetHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rules   Rules
		dead    bool
		value   float64
		wantErr bool
	}{
		{"alive regular", DefaultRules(), false, 40, false},
		{"alive negative is clamped later", DefaultRules(), false, -10, false},
		{"NaN", DefaultRules(), false, math.NaN(), true},
		{"+Inf", DefaultRules(), false, math.Inf(1), true},
		{"-Inf", DefaultRules(), false, math.Inf(-1), true},
		{"dead forbidden", DefaultRules(), true, 50, true},
		{"dead allowed", Rules{AllowSetWhileDead: true}, true, 50, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.rules.ValidateSetHealth(tt.dead, tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrRejected)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRules_ValidateBringToLife(t *testing.T) {
	r := DefaultRules()
	assert.NoError(t, r.ValidateBringToLife(0))
	assert.NoError(t, r.ValidateBringToLife(500))
	assert.ErrorIs(t, r.ValidateBringToLife(math.NaN()), ErrRejected)
	assert.ErrorIs(t, r.ValidateBringToLife(math.Inf(1)), ErrRejected)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, clamp(-5, 100))
	assert.Equal(t, 100.0, clamp(150, 100))
	assert.Equal(t, 42.5, clamp(42.5, 100))
	assert.Equal(t, 100.0, clamp(math.Inf(1), 100))
	assert.Equal(t, 0.0, clamp(math.Inf(-1), 100))
}
