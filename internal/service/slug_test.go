package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Rrens/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Shoes", "shoes"},
		{"  Running Shoes  ", "running-shoes"},
		{"Bags & Accessories", "bags-and-accessories"},
		{"T-Shirt (XL)", "t-shirt-xl"},
		{"Café Crème", "cafe-creme"},
		{"---", ""},
		{"2024 Collection!", "2024-collection"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestSlugify_TruncatesLongNames(t *testing.T) {
	got := Slugify(strings.Repeat("canvas tote ", 40))

	assert.LessOrEqual(t, len(got), maxSlugLength)
	assert.NotEmpty(t, got)
	assert.False(t, strings.HasSuffix(got, "-"))
}

func stubSlugSuffix(t *testing.T, suffixes ...string) {
	t.Helper()
	original := slugSuffix
	i := 0
	slugSuffix = func() string {
		s := suffixes[i%len(suffixes)]
		i++
		return s
	}
	t.Cleanup(func() { slugSuffix = original })
}

func TestUniqueSlug_FreeBase(t *testing.T) {
	slug, err := uniqueSlug(context.Background(), "Summer Hats", func(context.Context, string) (bool, error) {
		return false, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "summer-hats", slug)
}

func TestUniqueSlug_RetriesWithSuffix(t *testing.T) {
	stubSlugSuffix(t, "a1b2c3", "d4e5f6")

	var tried []string
	slug, err := uniqueSlug(context.Background(), "Hats", func(_ context.Context, s string) (bool, error) {
		tried = append(tried, s)
		return s != "hats-d4e5f6", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "hats-d4e5f6", slug)
	assert.Equal(t, []string{"hats", "hats-a1b2c3", "hats-d4e5f6"}, tried)
}

func TestUniqueSlug_Exhausted(t *testing.T) {
	stubSlugSuffix(t, "aaaaaa")

	calls := 0
	_, err := uniqueSlug(context.Background(), "Hats", func(context.Context, string) (bool, error) {
		calls++
		return true, nil
	})

	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, maxSlugAttempts, calls)
}

func TestUniqueSlug_EmptyName(t *testing.T) {
	_, err := uniqueSlug(context.Background(), "!!!", func(context.Context, string) (bool, error) {
		t.Fatal("exists must not be called")
		return false, nil
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUniqueSlug_LookupError(t *testing.T) {
	boom := errors.New("db down")
	_, err := uniqueSlug(context.Background(), "Hats", func(context.Context, string) (bool, error) {
		return false, boom
	})

	assert.ErrorIs(t, err, boom)
}
