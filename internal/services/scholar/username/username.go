// Package username derives, allocates and canonicalizes profile usernames.
package username

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	apperrors "github.com/louisbranch/scholarflow/internal/platform/errors"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// Fallback is used when a name folds to nothing usable.
	Fallback = "scholar"
	// MaxAttempts bounds Allocate.
	MaxAttempts = 1000

	maxBaseLength = 48
	maxLength     = 64
)

var canonicalPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Base builds "{first}-{last}" lowercased with whitespace runs replaced by a
// hyphen. Diacritics are folded to ASCII, other characters outside
// [a-z0-9-] are dropped and repeated hyphens collapse.
func Base(first, last string) string {
	raw := strings.ToLower(strings.Join(strings.Fields(first+" "+last), "-"))
	if raw == "" {
		return Fallback
	}

	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), raw)
	if err != nil {
		folded = raw
	}

	var builder strings.Builder
	builder.Grow(len(folded))
	lastHyphen := true
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			builder.WriteRune(r)
			lastHyphen = false
		case r == '-':
			if !lastHyphen {
				builder.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	base := strings.Trim(builder.String(), "-")
	if len(base) > maxBaseLength {
		base = strings.TrimRight(base[:maxBaseLength], "-")
	}
	if base == "" {
		return Fallback
	}
	return base
}

// ExistsFunc reports whether a username is already taken.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

// Allocate returns base when free, otherwise the first free "base-N" for
// N = 1, 2, ...
func Allocate(ctx context.Context, base string, exists ExistsFunc) (string, error) {
	if exists == nil {
		return "", fmt.Errorf("username existence check is required")
	}
	base = strings.TrimSpace(base)
	if base == "" {
		base = Fallback
	}

	candidate := base
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check username %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, attempt)
	}
	return "", apperrors.WithMetadata(apperrors.CodeUsernameExhausted,
		"Could not allocate a unique username",
		map[string]string{"base": base},
	)
}

// Canonicalize normalizes a username to lowercase ASCII and validates policy.
func Canonicalize(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", apperrors.New(apperrors.CodeUsernameInvalid, "username is required")
	}

	var builder strings.Builder
	builder.Grow(len(input))
	for i := 0; i < len(input); i++ {
		ch := input[i]
		if ch > 0x7f {
			return "", apperrors.New(apperrors.CodeUsernameInvalid, "username must be ASCII")
		}
		if ch >= 'A' && ch <= 'Z' {
			ch = ch - 'A' + 'a'
		}
		builder.WriteByte(ch)
	}

	canonical := builder.String()
	if len(canonical) > maxLength || !canonicalPattern.MatchString(canonical) {
		return "", apperrors.New(apperrors.CodeUsernameInvalid, "username does not match required format")
	}
	return canonical, nil
}
