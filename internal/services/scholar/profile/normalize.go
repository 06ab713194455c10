package profile

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	apperrors "github.com/louisbranch/scholarflow/internal/platform/errors"
	"github.com/louisbranch/scholarflow/internal/services/scholar/orcidid"
)

const (
	maxNameLength  = 64
	maxBioLength   = 5000
	maxTitleLength = 500
	maxURLLength   = 2048
)

// Normalize trims user-supplied values, validates required fields and URLs,
// and fills enum defaults. It does not touch ids, ownership or timestamps.
func Normalize(p Profile) (Profile, error) {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	if p.FirstName == "" || p.LastName == "" {
		return Profile{}, apperrors.New(apperrors.CodeNameRequired, "First name and last name are required")
	}
	if utf8.RuneCountInString(p.FirstName) > maxNameLength || utf8.RuneCountInString(p.LastName) > maxNameLength {
		return Profile{}, invalid(fmt.Sprintf("Names must be at most %d characters", maxNameLength))
	}
	p.DisplayName = strings.TrimSpace(p.DisplayName)
	if utf8.RuneCountInString(p.DisplayName) > maxNameLength*2 {
		return Profile{}, invalid(fmt.Sprintf("Display name must be at most %d characters", maxNameLength*2))
	}

	p.Email = strings.TrimSpace(p.Email)
	p.Bio = strings.TrimSpace(p.Bio)
	if utf8.RuneCountInString(p.Bio) > maxBioLength {
		return Profile{}, invalid(fmt.Sprintf("Bio must be at most %d characters", maxBioLength))
	}
	p.ProfilePhoto = strings.TrimSpace(p.ProfilePhoto)
	p.CurrentPosition = strings.TrimSpace(p.CurrentPosition)
	p.CurrentInstitution = strings.TrimSpace(p.CurrentInstitution)
	p.CurrentDepartment = strings.TrimSpace(p.CurrentDepartment)
	p.CustomDomain = strings.ToLower(strings.TrimSpace(p.CustomDomain))

	p.ORCIDID = strings.TrimSpace(p.ORCIDID)
	if p.ORCIDID != "" {
		p.ORCIDID = orcidid.Format(p.ORCIDID)
		if !orcidid.IsValid(p.ORCIDID) {
			return Profile{}, apperrors.New(apperrors.CodeInvalidORCID, "Invalid ORCID iD")
		}
	}

	var err error
	if p.Website, err = normalizeURL("website", p.Website); err != nil {
		return Profile{}, err
	}

	if p.Template == "" {
		p.Template = TemplateMinimal
	}
	if p.Visibility == "" {
		p.Visibility = VisibilityPublic
	}

	if p.Publications, err = normalizePublications(p.Publications); err != nil {
		return Profile{}, err
	}
	if p.Education, err = normalizeEducation(p.Education); err != nil {
		return Profile{}, err
	}
	if p.Positions, err = normalizePositions(p.Positions); err != nil {
		return Profile{}, err
	}
	if p.Awards, err = normalizeAwards(p.Awards); err != nil {
		return Profile{}, err
	}
	if p.Grants, err = normalizeGrants(p.Grants); err != nil {
		return Profile{}, err
	}
	if p.SocialLinks, err = normalizeSocialLinks(p.SocialLinks); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// NormalizeImported normalizes works fetched from ORCID one at a time. A
// work with an unusable URL keeps its other fields; a work that still fails
// is left out and counted in skipped.
func NormalizeImported(pubs []Publication) (kept []Publication, skipped int) {
	kept = make([]Publication, 0, len(pubs))
	for _, pub := range pubs {
		one, err := normalizePublications([]Publication{pub})
		if apperrors.HasCode(err, apperrors.CodeInvalidURL) {
			pub.URL = ""
			one, err = normalizePublications([]Publication{pub})
		}
		if err != nil {
			skipped++
			continue
		}
		kept = append(kept, one[0])
	}
	return kept, skipped
}

func normalizePublications(pubs []Publication) ([]Publication, error) {
	for i := range pubs {
		pub := &pubs[i]
		pub.Title = strings.TrimSpace(pub.Title)
		if pub.Title == "" {
			return nil, invalid(fmt.Sprintf("Publication %d: title is required", i+1))
		}
		if utf8.RuneCountInString(pub.Title) > maxTitleLength {
			return nil, invalid(fmt.Sprintf("Publication %d: title must be at most %d characters", i+1, maxTitleLength))
		}
		pub.Authors = compactStrings(pub.Authors)
		pub.Keywords = compactStrings(pub.Keywords)
		pub.Journal = strings.TrimSpace(pub.Journal)
		pub.DOI = strings.TrimSpace(pub.DOI)
		pub.Abstract = strings.TrimSpace(pub.Abstract)
		pub.ORCIDWorkID = strings.TrimSpace(pub.ORCIDWorkID)
		if pub.Type == "" {
			pub.Type = PublicationJournalArticle
		}
		if pub.CitationCount != nil && *pub.CitationCount < 0 {
			return nil, invalid(fmt.Sprintf("Publication %d: citation count cannot be negative", i+1))
		}
		var err error
		if pub.URL, err = normalizeURL("publication url", pub.URL); err != nil {
			return nil, err
		}
	}
	return pubs, nil
}

func normalizeEducation(items []Education) ([]Education, error) {
	for i := range items {
		item := &items[i]
		item.Institution = strings.TrimSpace(item.Institution)
		item.Degree = strings.TrimSpace(item.Degree)
		item.Field = strings.TrimSpace(item.Field)
		item.Description = strings.TrimSpace(item.Description)
		if item.Institution == "" {
			return nil, invalid(fmt.Sprintf("Education %d: institution is required", i+1))
		}
		if err := checkYears("Education", i, item.StartYear, item.EndYear); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func normalizePositions(items []Position) ([]Position, error) {
	for i := range items {
		item := &items[i]
		item.Title = strings.TrimSpace(item.Title)
		item.Institution = strings.TrimSpace(item.Institution)
		item.Department = strings.TrimSpace(item.Department)
		item.Description = strings.TrimSpace(item.Description)
		if item.Title == "" || item.Institution == "" {
			return nil, invalid(fmt.Sprintf("Position %d: title and institution are required", i+1))
		}
		if err := checkYears("Position", i, item.StartYear, item.EndYear); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func normalizeAwards(items []Award) ([]Award, error) {
	for i := range items {
		item := &items[i]
		item.Title = strings.TrimSpace(item.Title)
		item.Organization = strings.TrimSpace(item.Organization)
		item.Description = strings.TrimSpace(item.Description)
		item.Amount = strings.TrimSpace(item.Amount)
		if item.Title == "" {
			return nil, invalid(fmt.Sprintf("Award %d: title is required", i+1))
		}
	}
	return items, nil
}

func normalizeGrants(items []Grant) ([]Grant, error) {
	for i := range items {
		item := &items[i]
		item.Title = strings.TrimSpace(item.Title)
		item.Agency = strings.TrimSpace(item.Agency)
		item.Amount = strings.TrimSpace(item.Amount)
		item.Description = strings.TrimSpace(item.Description)
		if item.Title == "" {
			return nil, invalid(fmt.Sprintf("Grant %d: title is required", i+1))
		}
		if item.Role == "" {
			item.Role = GrantRoleOther
		}
		if item.Status == "" {
			item.Status = GrantActive
		}
		if err := checkYears("Grant", i, item.StartYear, item.EndYear); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func normalizeSocialLinks(items []SocialLink) ([]SocialLink, error) {
	for i := range items {
		item := &items[i]
		item.Platform = strings.TrimSpace(item.Platform)
		item.DisplayName = strings.TrimSpace(item.DisplayName)
		if item.Platform == "" {
			return nil, invalid(fmt.Sprintf("Social link %d: platform is required", i+1))
		}
		normalized, err := normalizeURL("social link url", item.URL)
		if err != nil {
			return nil, err
		}
		if normalized == "" {
			return nil, invalid(fmt.Sprintf("Social link %d: url is required", i+1))
		}
		item.URL = normalized
	}
	return items, nil
}

func checkYears(kind string, index int, start int, end *int) error {
	if end != nil && *end != 0 && start != 0 && *end < start {
		return invalid(fmt.Sprintf("%s %d: end year precedes start year", kind, index+1))
	}
	return nil
}

// normalizeURL trims value and requires an absolute http or https URL.
func normalizeURL(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	if len(value) > maxURLLength {
		return "", apperrors.New(apperrors.CodeInvalidURL, fmt.Sprintf("Invalid %s", field))
	}
	parsed, err := url.Parse(value)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", apperrors.New(apperrors.CodeInvalidURL, fmt.Sprintf("Invalid %s", field))
	}
	return value, nil
}

func compactStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, value)
		}
	}
	return out
}

func invalid(message string) error {
	return apperrors.New(apperrors.CodeInvalidInput, message)
}
