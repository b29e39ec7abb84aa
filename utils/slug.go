package utils

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var (
	nonWord   = regexp.MustCompile(`[^\w\s-]`)
	spaces    = regexp.MustCompile(`\s+`)
	hyphenRun = regexp.MustCompile(`-+`)
)

// Slugify lower-cases s, drops non-word characters and joins words with hyphens.
// Underscores count as word characters and are kept.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonWord.ReplaceAllString(s, "")
	s = spaces.ReplaceAllString(s, "-")
	s = hyphenRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// UniqueSlug slugifies name and appends -1, -2, ... until exists reports a free slug.
func UniqueSlug(ctx context.Context, name string, exists func(context.Context, string) (bool, error)) (string, error) {
	base := Slugify(name)
	if base == "" {
		base = "listing"
	}
	slug := base
	for i := 1; ; i++ {
		taken, err := exists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}
