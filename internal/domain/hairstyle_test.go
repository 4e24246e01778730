package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockHairstyles(t *testing.T) {
	t.Parallel()

	assert.Len(t, MockHairstyles(6), 6)
	assert.Len(t, MockHairstyles(3), 3)
	assert.Len(t, MockHairstyles(100), CatalogSize)
	assert.Empty(t, MockHairstyles(-1))

	// Returned slices are copies.
	styles := MockHairstyles(1)
	styles[0].Name = "changed"
	assert.NotEqual(t, "changed", MockHairstyles(1)[0].Name)
}

func TestFindHairstyle(t *testing.T) {
	t.Parallel()

	h, err := FindHairstyle("2")
	require.NoError(t, err)
	assert.Equal(t, "Korean Short Cut", h.Name)

	_, err = FindHairstyle("42")
	assert.ErrorIs(t, err, ErrHairstyleNotFound)
}

func TestPreferencesIsEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, Preferences{}.IsEmpty())
	assert.True(t, Preferences{Style: "  "}.IsEmpty())
	assert.False(t, Preferences{Length: "short"}.IsEmpty())
}
