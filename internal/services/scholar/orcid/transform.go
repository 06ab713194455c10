package orcid

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/louisbranch/scholarflow/internal/services/scholar/orcidid"
	"github.com/louisbranch/scholarflow/internal/services/scholar/profile"
)

// IsValidID reports whether id is a hyphenated ORCID iD.
func IsValidID(id string) bool { return orcidid.IsValid(id) }

// FormatID regroups a 16 character iD into hyphenated blocks.
func FormatID(id string) string { return orcidid.Format(id) }

// TransformWork converts an ORCID work detail into a Publication.
func TransformWork(work Work) profile.Publication {
	return transformWork(work, time.Now().Year())
}

func transformWork(work Work, currentYear int) profile.Publication {
	title := ""
	if work.Title != nil {
		title = strings.TrimSpace(work.Title.Title.String())
	}
	if title == "" {
		title = "Untitled"
	}

	year := currentYear
	if work.PublicationDate != nil {
		if parsed, ok := parseYear(work.PublicationDate.Year.String()); ok {
			year = parsed
		}
	}

	var doi, link string
	if work.ExternalIDs != nil {
		for _, ext := range work.ExternalIDs.ExternalID {
			if ext.Type != "doi" {
				continue
			}
			doi = strings.TrimSpace(ext.Value)
			link = strings.TrimSpace(ext.URL.String())
			if !isWebURL(link) {
				link = ""
				if doi != "" {
					link = "https://doi.org/" + doi
				}
			}
			break
		}
	}

	authors := []string{}
	if work.Contributors != nil {
		for _, contributor := range work.Contributors.Contributor {
			if name := contributor.CreditName.String(); name != "" {
				authors = append(authors, name)
			}
		}
	}

	putCode := strconv.FormatInt(work.PutCode, 10)
	return profile.Publication{
		ID:          "orcid-" + putCode,
		Title:       title,
		Authors:     authors,
		Journal:     work.JournalTitle.String(),
		Year:        year,
		DOI:         doi,
		URL:         link,
		Type:        MapWorkType(work.Type),
		Abstract:    strings.TrimSpace(work.ShortDescription),
		Keywords:    []string{},
		ORCIDWorkID: putCode,
	}
}

// isWebURL reports whether value is an absolute http(s) URL. ORCID records
// often carry bare hosts such as "doi.org/10.1/x".
func isWebURL(value string) bool {
	parsed, err := url.Parse(value)
	return err == nil && parsed.Host != "" && (parsed.Scheme == "http" || parsed.Scheme == "https")
}

// MapWorkType maps ORCID work types onto publication types.
func MapWorkType(orcidType string) profile.PublicationType {
	switch orcidType {
	case "journal-article":
		return profile.PublicationJournalArticle
	case "book":
		return profile.PublicationBook
	case "book-chapter":
		return profile.PublicationBookChapter
	case "conference-paper":
		return profile.PublicationConferencePaper
	case "working-paper", "preprint":
		return profile.PublicationPreprint
	default:
		return profile.PublicationOther
	}
}

// ToEducation converts an education summary.
func ToEducation(a Affiliation) profile.Education {
	start, _ := parseYear(yearOf(a.StartDate))
	edu := profile.Education{
		Institution: organizationName(a),
		Degree:      strings.TrimSpace(a.RoleTitle),
		Field:       strings.TrimSpace(a.DepartmentName),
		StartYear:   start,
		Current:     a.EndDate == nil,
	}
	if end, ok := parseYear(yearOf(a.EndDate)); ok {
		edu.EndYear = &end
	}
	return edu
}

// ToPosition converts an employment summary.
func ToPosition(a Affiliation) profile.Position {
	start, _ := parseYear(yearOf(a.StartDate))
	pos := profile.Position{
		Title:       strings.TrimSpace(a.RoleTitle),
		Institution: organizationName(a),
		Department:  strings.TrimSpace(a.DepartmentName),
		StartYear:   start,
		Current:     a.EndDate == nil,
	}
	if end, ok := parseYear(yearOf(a.EndDate)); ok {
		pos.EndYear = &end
	}
	return pos
}

func organizationName(a Affiliation) string {
	if a.Organization == nil {
		return ""
	}
	return strings.TrimSpace(a.Organization.Name)
}

func yearOf(d *dateField) string {
	if d == nil {
		return ""
	}
	return d.Year.String()
}

func parseYear(value string) (int, bool) {
	year, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || year <= 0 {
		return 0, false
	}
	return year, true
}
