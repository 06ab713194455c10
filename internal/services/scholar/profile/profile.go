// Package profile models academic profiles and validates profile input.
package profile

import (
	"sort"
	"strings"
	"time"
)

// Profile is an academic's published page and its collections.
type Profile struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"userId"`
	Username           string     `json:"username"`
	FirstName          string     `json:"firstName"`
	LastName           string     `json:"lastName"`
	DisplayName        string     `json:"displayName,omitempty"`
	Email              string     `json:"email,omitempty"`
	Bio                string     `json:"bio"`
	ProfilePhoto       string     `json:"profilePhoto,omitempty"`
	CurrentPosition    string     `json:"currentPosition,omitempty"`
	CurrentInstitution string     `json:"currentInstitution,omitempty"`
	CurrentDepartment  string     `json:"currentDepartment,omitempty"`
	ORCIDID            string     `json:"orcidId,omitempty"`
	LastORCIDSync      *time.Time `json:"lastOrcidSync,omitempty"`
	Website            string     `json:"website,omitempty"`
	Template           Template   `json:"template"`
	Visibility         Visibility `json:"visibility"`
	CustomDomain       string     `json:"customDomain,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
	PublishedAt        *time.Time `json:"publishedAt"`

	Publications []Publication `json:"publications"`
	Education    []Education   `json:"education"`
	Positions    []Position    `json:"positions"`
	Awards       []Award       `json:"awards"`
	Grants       []Grant       `json:"grants"`
	SocialLinks  []SocialLink  `json:"socialLinks"`
}

// Publication is one scholarly work.
type Publication struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Authors       []string        `json:"authors"`
	Journal       string          `json:"journal,omitempty"`
	Year          int             `json:"year"`
	DOI           string          `json:"doi,omitempty"`
	URL           string          `json:"url,omitempty"`
	CitationCount *int            `json:"citationCount,omitempty"`
	Type          PublicationType `json:"type"`
	Abstract      string          `json:"abstract,omitempty"`
	Keywords      []string        `json:"keywords"`
	ORCIDWorkID   string          `json:"orcidWorkId,omitempty"`
}

// Education is a degree or course of study.
type Education struct {
	ID          string `json:"id"`
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	StartYear   int    `json:"startYear"`
	EndYear     *int   `json:"endYear,omitempty"`
	Current     bool   `json:"current"`
	Description string `json:"description,omitempty"`
}

// Position is an appointment held at an institution.
type Position struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Institution string `json:"institution"`
	Department  string `json:"department,omitempty"`
	StartYear   int    `json:"startYear"`
	EndYear     *int   `json:"endYear,omitempty"`
	Current     bool   `json:"current"`
	Description string `json:"description,omitempty"`
}

// Award is an honor or prize.
type Award struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Organization string `json:"organization"`
	Year         int    `json:"year"`
	Description  string `json:"description,omitempty"`
	Amount       string `json:"amount,omitempty"`
}

// Grant is a funded project.
type Grant struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Agency      string      `json:"agency"`
	Role        GrantRole   `json:"role"`
	StartYear   int         `json:"startYear"`
	EndYear     *int        `json:"endYear,omitempty"`
	Amount      string      `json:"amount,omitempty"`
	Status      GrantStatus `json:"status"`
	Description string      `json:"description,omitempty"`
}

// SocialLink points at the academic elsewhere on the web.
type SocialLink struct {
	ID          string `json:"id"`
	Platform    string `json:"platform"`
	URL         string `json:"url"`
	DisplayName string `json:"displayName,omitempty"`
}

// Label returns the display name, else the platform.
func (l SocialLink) Label() string {
	if l.DisplayName != "" {
		return l.DisplayName
	}
	return l.Platform
}

// File is an uploaded asset owned by a profile.
type File struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"profileId"`
	Filename  string    `json:"filename"`
	Mimetype  string    `json:"mimetype"`
	Size      int64     `json:"size"`
	URL       string    `json:"url"`
	Type      FileType  `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// DisplayNameOrFull returns the display name, else "First Last".
func (p Profile) DisplayNameOrFull() string {
	if name := strings.TrimSpace(p.DisplayName); name != "" {
		return name
	}
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// TotalCitations sums citation counts across publications.
func (p Profile) TotalCitations() int {
	total := 0
	for _, pub := range p.Publications {
		if pub.CitationCount != nil {
			total += *pub.CitationCount
		}
	}
	return total
}

// ActiveGrants counts grants with Active status.
func (p Profile) ActiveGrants() int {
	count := 0
	for _, grant := range p.Grants {
		if grant.Status == GrantActive {
			count++
		}
	}
	return count
}

// SortCollections orders collections for display: publications and awards by
// year, education, positions and grants by start year, newest first. Ties
// keep their stored order.
func SortCollections(p *Profile) {
	if p == nil {
		return
	}
	sort.SliceStable(p.Publications, func(i, j int) bool { return p.Publications[i].Year > p.Publications[j].Year })
	sort.SliceStable(p.Education, func(i, j int) bool { return p.Education[i].StartYear > p.Education[j].StartYear })
	sort.SliceStable(p.Positions, func(i, j int) bool { return p.Positions[i].StartYear > p.Positions[j].StartYear })
	sort.SliceStable(p.Awards, func(i, j int) bool { return p.Awards[i].Year > p.Awards[j].Year })
	sort.SliceStable(p.Grants, func(i, j int) bool { return p.Grants[i].StartYear > p.Grants[j].StartYear })
}

// EnsureCollections replaces nil collections with empty slices so JSON
// renders arrays.
func EnsureCollections(p *Profile) {
	if p == nil {
		return
	}
	if p.Publications == nil {
		p.Publications = []Publication{}
	}
	if p.Education == nil {
		p.Education = []Education{}
	}
	if p.Positions == nil {
		p.Positions = []Position{}
	}
	if p.Awards == nil {
		p.Awards = []Award{}
	}
	if p.Grants == nil {
		p.Grants = []Grant{}
	}
	if p.SocialLinks == nil {
		p.SocialLinks = []SocialLink{}
	}
	for i := range p.Publications {
		if p.Publications[i].Authors == nil {
			p.Publications[i].Authors = []string{}
		}
		if p.Publications[i].Keywords == nil {
			p.Publications[i].Keywords = []string{}
		}
	}
}
