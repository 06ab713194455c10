package profile

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/scholarflow/internal/platform/errors"
)

// Template selects the layout used to render a published profile.
type Template string

const (
	TemplateMinimal          Template = "minimal"
	TemplateResearchFocused  Template = "research-focused"
	TemplateTeachingOriented Template = "teaching-oriented"
	TemplateIndustryHybrid   Template = "industry-hybrid"
)

// Templates lists templates in catalog order.
var Templates = []Template{TemplateMinimal, TemplateResearchFocused, TemplateTeachingOriented, TemplateIndustryHybrid}

// Visibility controls who can read a profile.
type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityUnlisted Visibility = "unlisted"
	VisibilityPrivate  Visibility = "private"
)

// PublicationType classifies a publication.
type PublicationType string

const (
	PublicationJournalArticle  PublicationType = "journal-article"
	PublicationBook            PublicationType = "book"
	PublicationBookChapter     PublicationType = "book-chapter"
	PublicationConferencePaper PublicationType = "conference-paper"
	PublicationPreprint        PublicationType = "preprint"
	PublicationOther           PublicationType = "other"
)

// GrantRole is the holder's role on a grant.
type GrantRole string

const (
	GrantRolePI    GrantRole = "PI"
	GrantRoleCoPI  GrantRole = "Co-PI"
	GrantRoleCoI   GrantRole = "Co-I"
	GrantRoleOther GrantRole = "Other"
)

// GrantStatus is the funding state of a grant.
type GrantStatus string

const (
	GrantActive    GrantStatus = "Active"
	GrantCompleted GrantStatus = "Completed"
	GrantPending   GrantStatus = "Pending"
)

// FileType classifies an uploaded file.
type FileType string

const (
	FileProfilePhoto FileType = "PROFILE_PHOTO"
	FileCV           FileType = "CV"
	FileOther        FileType = "OTHER"
)

var (
	templateValues        = enumValues(TemplateMinimal, TemplateResearchFocused, TemplateTeachingOriented, TemplateIndustryHybrid)
	visibilityValues      = enumValues(VisibilityPublic, VisibilityUnlisted, VisibilityPrivate)
	publicationTypeValues = enumValues(PublicationJournalArticle, PublicationBook, PublicationBookChapter, PublicationConferencePaper, PublicationPreprint, PublicationOther)
	grantRoleValues       = enumValues(GrantRolePI, GrantRoleCoPI, GrantRoleCoI, GrantRoleOther)
	grantStatusValues     = enumValues(GrantActive, GrantCompleted, GrantPending)
	fileTypeValues        = enumValues(FileProfilePhoto, FileCV, FileOther)
)

// enumValues indexes wire values by their folded wire and storage forms.
func enumValues[T ~string](values ...T) map[string]T {
	index := make(map[string]T, len(values)*2)
	for _, value := range values {
		index[fold(string(value))] = value
		index[fold(storageForm(string(value)))] = value
	}
	return index
}

// storageForm converts "research-focused" or "Co-PI" to "RESEARCH_FOCUSED"
// or "CO_PI".
func storageForm(value string) string {
	return strings.ToUpper(strings.ReplaceAll(value, "-", "_"))
}

func fold(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func parseEnum[T ~string](kind string, index map[string]T, value string) (T, error) {
	if found, ok := index[fold(value)]; ok {
		return found, nil
	}
	var zero T
	return zero, apperrors.WithMetadata(apperrors.CodeInvalidEnum,
		fmt.Sprintf("Invalid %s: %q", kind, value),
		map[string]string{"kind": kind, "value": value},
	)
}

func unmarshalEnum[T ~string](data []byte, kind string, index map[string]T, target *T) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%s must be a string: %w", kind, err)
	}
	if strings.TrimSpace(raw) == "" {
		*target = ""
		return nil
	}
	parsed, err := parseEnum(kind, index, raw)
	if err != nil {
		return err
	}
	*target = parsed
	return nil
}

// ParseTemplate accepts wire or storage forms case-insensitively.
func ParseTemplate(value string) (Template, error) {
	return parseEnum("template", templateValues, value)
}

// Storage returns the upper snake case storage form.
func (t Template) Storage() string { return storageForm(string(t)) }

// UnmarshalJSON accepts wire or storage forms; empty means unset.
func (t *Template) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "template", templateValues, t)
}

// ParseVisibility accepts wire or storage forms case-insensitively.
func ParseVisibility(value string) (Visibility, error) {
	return parseEnum("visibility", visibilityValues, value)
}

// Storage returns the upper case storage form.
func (v Visibility) Storage() string { return storageForm(string(v)) }

// Listed reports whether the profile may be served by username.
func (v Visibility) Listed() bool {
	return v == VisibilityPublic || v == VisibilityUnlisted
}

// UnmarshalJSON accepts wire or storage forms; empty means unset.
func (v *Visibility) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "visibility", visibilityValues, v)
}

// ParsePublicationType accepts wire or storage forms case-insensitively.
func ParsePublicationType(value string) (PublicationType, error) {
	return parseEnum("publication type", publicationTypeValues, value)
}

// Storage returns the upper snake case storage form.
func (p PublicationType) Storage() string { return storageForm(string(p)) }

// Label is the human readable form used on rendered pages.
func (p PublicationType) Label() string {
	return strings.ReplaceAll(string(p), "-", " ")
}

// UnmarshalJSON accepts wire or storage forms; empty means unset.
func (p *PublicationType) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "publication type", publicationTypeValues, p)
}

// ParseGrantRole accepts wire or storage forms case-insensitively.
func ParseGrantRole(value string) (GrantRole, error) {
	return parseEnum("grant role", grantRoleValues, value)
}

// Storage returns the upper snake case storage form.
func (r GrantRole) Storage() string { return storageForm(string(r)) }

// UnmarshalJSON accepts wire or storage forms; empty means unset.
func (r *GrantRole) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "grant role", grantRoleValues, r)
}

// ParseGrantStatus accepts wire or storage forms case-insensitively.
func ParseGrantStatus(value string) (GrantStatus, error) {
	return parseEnum("grant status", grantStatusValues, value)
}

// Storage returns the upper case storage form.
func (s GrantStatus) Storage() string { return storageForm(string(s)) }

// UnmarshalJSON accepts wire or storage forms; empty means unset.
func (s *GrantStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "grant status", grantStatusValues, s)
}

// ParseFileType accepts any case.
func ParseFileType(value string) (FileType, error) {
	return parseEnum("file type", fileTypeValues, value)
}
