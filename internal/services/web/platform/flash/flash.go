// Package flash carries one-time page notices across a redirect.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/louisbranch/scholarflow/internal/services/web/platform/requestmeta"
)

// CookieName holds the pending notice.
const CookieName = "scholarflow_flash"

// Kind classifies how a notice is shown.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notice keys understood by Message.
const (
	ProfileSaved  = "profile.saved"
	PhotoUploaded = "photo.uploaded"
	ORCIDSynced   = "orcid.synced"
)

var messages = map[string]string{
	ProfileSaved:  "Profile saved.",
	PhotoUploaded: "Profile photo updated.",
	ORCIDSynced:   "Publications synced from ORCID.",
}

// Notice is one pending message.
type Notice struct {
	Kind Kind   `json:"kind"`
	Key  string `json:"key"`
}

// Success builds a success notice for key.
func Success(key string) Notice {
	return Notice{Kind: KindSuccess, Key: key}
}

// Message returns the display text, or "" for unknown keys.
func (n Notice) Message() string {
	return messages[n.Key]
}

// Writer stores and reads notices with a fixed scheme policy.
type Writer struct {
	Policy requestmeta.SchemePolicy
}

// Write stores notice for the next page render. Unknown notices are dropped.
func (f Writer) Write(w http.ResponseWriter, r *http.Request, notice Notice) {
	normalized, ok := normalize(notice)
	if !ok || w == nil {
		return
	}
	payload, err := json.Marshal(normalized)
	if err != nil {
		return
	}
	http.SetCookie(w, f.cookie(r, base64.RawURLEncoding.EncodeToString(payload), 0))
}

// ReadAndClear returns the pending notice and expires the cookie.
func (f Writer) ReadAndClear(w http.ResponseWriter, r *http.Request) (Notice, bool) {
	if r == nil {
		return Notice{}, false
	}
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return Notice{}, false
	}
	if w != nil {
		http.SetCookie(w, f.cookie(r, "", -1))
	}
	return decode(cookie.Value)
}

func (f Writer) cookie(r *http.Request, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   f.Policy.Scheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}

func decode(raw string) (Notice, bool) {
	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(raw))
	if err != nil || len(decoded) == 0 {
		return Notice{}, false
	}
	var notice Notice
	if err := json.Unmarshal(decoded, &notice); err != nil {
		return Notice{}, false
	}
	return normalize(notice)
}

func normalize(notice Notice) (Notice, bool) {
	notice.Key = strings.TrimSpace(notice.Key)
	if _, ok := messages[notice.Key]; !ok {
		return Notice{}, false
	}
	notice.Kind = Kind(strings.ToLower(strings.TrimSpace(string(notice.Kind))))
	switch notice.Kind {
	case KindSuccess, KindError:
		return notice, true
	default:
		return Notice{}, false
	}
}
