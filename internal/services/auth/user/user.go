package user

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/scholarflow/internal/platform/errors"
	"github.com/louisbranch/scholarflow/internal/platform/id"
	"github.com/louisbranch/scholarflow/internal/services/scholar/orcidid"
)

// ErrInvalidORCID indicates a sign-in without a well formed ORCID iD.
var ErrInvalidORCID = apperrors.New(apperrors.CodeInvalidORCID, "Invalid ORCID iD")

// User represents an authenticated identity record.
type User struct {
	ID             string
	ORCIDID        string
	Name           string
	Email          string
	AccessToken    string
	RefreshToken   string
	TokenExpiresAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SignIn is the identity returned by a completed ORCID token exchange.
type SignIn struct {
	ORCIDID      string
	Name         string
	Email        string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// NormalizeSignIn trims input and formats the ORCID iD.
func NormalizeSignIn(in SignIn) (SignIn, error) {
	in.ORCIDID = orcidid.Format(strings.TrimSpace(in.ORCIDID))
	if !orcidid.IsValid(in.ORCIDID) {
		return SignIn{}, ErrInvalidORCID
	}
	in.Name = strings.Join(strings.Fields(in.Name), " ")
	in.Email = strings.TrimSpace(in.Email)
	in.AccessToken = strings.TrimSpace(in.AccessToken)
	in.RefreshToken = strings.TrimSpace(in.RefreshToken)
	return in, nil
}

// FromSignIn applies a sign-in to existing, or builds a new user when
// existing is nil.
func FromSignIn(existing *User, in SignIn, now func() time.Time, idGenerator func() (string, error)) (User, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	normalized, err := NormalizeSignIn(in)
	if err != nil {
		return User{}, err
	}

	at := now().UTC()
	var u User
	if existing != nil {
		u = *existing
	} else {
		userID, err := idGenerator()
		if err != nil {
			return User{}, fmt.Errorf("generate user id: %w", err)
		}
		u = User{ID: userID, CreatedAt: at}
	}

	u.ORCIDID = normalized.ORCIDID
	if normalized.Name != "" {
		u.Name = normalized.Name
	}
	if normalized.Email != "" {
		u.Email = normalized.Email
	}
	u.AccessToken = normalized.AccessToken
	if normalized.RefreshToken != "" {
		u.RefreshToken = normalized.RefreshToken
	}
	u.TokenExpiresAt = nil
	if !normalized.ExpiresAt.IsZero() {
		expires := normalized.ExpiresAt.UTC()
		u.TokenExpiresAt = &expires
	}
	u.UpdatedAt = at
	return u, nil
}

// SplitName splits a display name into a first name and the rest, used to
// prefill the profile form.
func SplitName(name string) (first, rest string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}
