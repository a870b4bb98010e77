package service

import (
	"context"
	"strings"

	"github.com/Rrens/storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const (
	maxSlugAttempts = 5
	// leaves room for the collision suffix within the 120 character columns
	maxSlugLength = 100
)

func init() {
	slug.MaxLength = maxSlugLength
}

// slugSuffix returns the random tail appended after a slug collision
var slugSuffix = func() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

// Slugify transliterates s to ASCII and joins its words with hyphens
func Slugify(s string) string {
	return slug.Make(s)
}

// uniqueSlug tries base, then base with a random suffix, checking each
// candidate with exists. It gives up with a Conflict after maxSlugAttempts.
func uniqueSlug(ctx context.Context, name string, exists func(context.Context, string) (bool, error)) (string, error) {
	base := Slugify(name)
	if base == "" {
		return "", domain.Validation("name must contain letters or digits")
	}

	candidate := base
	for range maxSlugAttempts {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + slugSuffix()
	}

	return "", domain.Conflict("could not generate a unique slug for " + name)
}
