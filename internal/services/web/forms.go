package web

import (
	"net/http"
	"strings"

	apperrors "github.com/louisbranch/scholarflow/internal/platform/errors"
	"github.com/louisbranch/scholarflow/internal/services/scholar/profile"
)

// maxFormBytes caps urlencoded profile forms.
const maxFormBytes = 64 << 10

var scalarFields = []string{
	"firstName", "lastName", "displayName", "email", "bio",
	"currentPosition", "currentInstitution", "currentDepartment", "website",
}

func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "Invalid form submission", err)
	}
	return nil
}

// profileFromForm reads the create form. Enum fields accept wire or storage
// forms; empty values fall back to the profile defaults.
func profileFromForm(w http.ResponseWriter, r *http.Request) (profile.Profile, error) {
	if err := parseForm(w, r); err != nil {
		return profile.Profile{}, err
	}
	form := r.PostForm
	p := profile.Profile{
		FirstName:          strings.TrimSpace(form.Get("firstName")),
		LastName:           strings.TrimSpace(form.Get("lastName")),
		DisplayName:        strings.TrimSpace(form.Get("displayName")),
		Email:              strings.TrimSpace(form.Get("email")),
		Bio:                strings.TrimSpace(form.Get("bio")),
		CurrentPosition:    strings.TrimSpace(form.Get("currentPosition")),
		CurrentInstitution: strings.TrimSpace(form.Get("currentInstitution")),
		CurrentDepartment:  strings.TrimSpace(form.Get("currentDepartment")),
		Website:            strings.TrimSpace(form.Get("website")),
	}
	var err error
	if p.Template, err = formTemplate(form.Get("template")); err != nil {
		return p, err
	}
	if p.Visibility, err = formVisibility(form.Get("visibility")); err != nil {
		return p, err
	}
	return p, nil
}

// patchFromForm reads the edit form. Only submitted fields are patched and
// collections are left untouched.
func patchFromForm(w http.ResponseWriter, r *http.Request) (profile.Patch, error) {
	var patch profile.Patch
	if err := parseForm(w, r); err != nil {
		return patch, err
	}
	form := r.PostForm
	targets := map[string]**string{
		"firstName":          &patch.FirstName,
		"lastName":           &patch.LastName,
		"displayName":        &patch.DisplayName,
		"email":              &patch.Email,
		"bio":                &patch.Bio,
		"currentPosition":    &patch.CurrentPosition,
		"currentInstitution": &patch.CurrentInstitution,
		"currentDepartment":  &patch.CurrentDepartment,
		"website":            &patch.Website,
	}
	for _, field := range scalarFields {
		if _, ok := form[field]; !ok {
			continue
		}
		value := strings.TrimSpace(form.Get(field))
		*targets[field] = &value
	}
	if raw := form.Get("template"); raw != "" {
		t, err := formTemplate(raw)
		if err != nil {
			return patch, err
		}
		patch.Template = &t
	}
	if raw := form.Get("visibility"); raw != "" {
		v, err := formVisibility(raw)
		if err != nil {
			return patch, err
		}
		patch.Visibility = &v
	}
	return patch, nil
}

func formTemplate(raw string) (profile.Template, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	return profile.ParseTemplate(raw)
}

func formVisibility(raw string) (profile.Visibility, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	return profile.ParseVisibility(raw)
}
