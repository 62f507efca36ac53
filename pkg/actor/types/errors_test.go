package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesOnKindOnly(t *testing.T) {
	a := NewError(NoNodeKind, fmt.Errorf("dial tcp: no route"))
	assert.True(t, errors.Is(a, ErrNoNode))
	assert.False(t, errors.Is(a, ErrTimeout))
}

func TestError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := NewError(GenericKind, cause)
	assert.True(t, errors.Is(err, cause))
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, OK},
		{"typed", ErrNoSlots, NoSlotsKind},
		{"wrapped", fmt.Errorf("ctx: %w", ErrNetwork), NetworkKind},
		{"foreign", fmt.Errorf("plain"), GenericKind},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, KindOf(c.err), c.name)
	}
}
