package utils

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"The Bullseye Bar":       "the-bullseye-bar",
		"  Joe's Darts & Grill ": "joes-darts-grill",
		"Tip--Top___Pub":         "tip-top___pub",
		"Oche_Club  North":       "oche_club-north",
		"!!!":                    "",
		"Café 180":               "caf-180",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestUniqueSlug(t *testing.T) {
	taken := map[string]bool{"the-oche": true, "the-oche-1": true}
	exists := func(_ context.Context, s string) (bool, error) { return taken[s], nil }

	slug, err := UniqueSlug(context.Background(), "The Oche", exists)
	require.NoError(t, err)
	assert.Equal(t, "the-oche-2", slug)

	slug, err = UniqueSlug(context.Background(), "???", exists)
	require.NoError(t, err)
	assert.Equal(t, "listing", slug)

	boom := errors.New("db down")
	_, err = UniqueSlug(context.Background(), "x", func(context.Context, string) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)
}
