package replication

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestField_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		field Field
		want  string
		valid bool
	}{
		{FieldHealth, "Health", true},
		{FieldMaxHealth, "MaxHealth", true},
		{FieldIsDead, "IsDead", true},
		{Field(0), "Field(0)", false},
		{Field(9), "Field(9)", false},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.field.String())
			assert.Equal(t, tt.valid, tt.field.Valid())
		})
	}
}

func TestUpdate_Bool(t *testing.T) {
	assert.True(t, Update{Value: BoolValue(true)}.Bool())
	assert.False(t, Update{Value: BoolValue(false)}.Bool())
}

func TestPublisherFunc(t *testing.T) {
	var got []Update
	p := PublisherFunc(func(u Update) { got = append(got, u) })

	p.Publish(Update{EntityID: 1, Field: FieldHealth, Seq: 1, Value: 10})
	Discard.Publish(Update{EntityID: 2})

	assert.Equal(t, []Update{{EntityID: 1, Field: FieldHealth, Seq: 1, Value: 10}}, got)
}
