package orcid

// valueField is ORCID's {"value": "..."} wrapper.
type valueField struct {
	Value string `json:"value"`
}

func (v *valueField) String() string {
	if v == nil {
		return ""
	}
	return v.Value
}

type dateField struct {
	Year  *valueField `json:"year"`
	Month *valueField `json:"month"`
	Day   *valueField `json:"day"`
}

// ExternalID is a work identifier such as a DOI.
type ExternalID struct {
	Type  string      `json:"external-id-type"`
	Value string      `json:"external-id-value"`
	URL   *valueField `json:"external-id-url"`
}

// Work is the work detail returned by GET /{id}/work/{put-code}. Work
// summaries share the same shape minus contributors.
type Work struct {
	PutCode int64 `json:"put-code"`
	Title   *struct {
		Title *valueField `json:"title"`
	} `json:"title"`
	JournalTitle     *valueField `json:"journal-title"`
	ShortDescription string      `json:"short-description"`
	PublicationDate  *dateField  `json:"publication-date"`
	ExternalIDs      *struct {
		ExternalID []ExternalID `json:"external-id"`
	} `json:"external-ids"`
	Type         string      `json:"type"`
	URL          *valueField `json:"url"`
	Contributors *struct {
		Contributor []struct {
			CreditName *valueField `json:"credit-name"`
		} `json:"contributor"`
	} `json:"contributors"`
}

type workGroup struct {
	WorkSummary []Work `json:"work-summary"`
}

// worksResponse accepts the v3.0 shape ({"group": [...]}) and the nested
// {"works": {"group": [...]}} shape found in record responses.
type worksResponse struct {
	Group []workGroup `json:"group"`
	Works *struct {
		Group []workGroup `json:"group"`
	} `json:"works"`
}

func (r worksResponse) groups() []workGroup {
	if len(r.Group) > 0 {
		return r.Group
	}
	if r.Works != nil {
		return r.Works.Group
	}
	return nil
}

// Person is the subset of GET /{id}/person used to prefill profiles.
type Person struct {
	GivenNames string
	FamilyName string
	CreditName string
	Biography  string
	Emails     []string
	Websites   []Website
}

// Website is a researcher URL listed on an ORCID record.
type Website struct {
	Name string
	URL  string
}

type personResponse struct {
	Name *struct {
		GivenNames *valueField `json:"given-names"`
		FamilyName *valueField `json:"family-name"`
		CreditName *valueField `json:"credit-name"`
	} `json:"name"`
	Biography *struct {
		Content string `json:"content"`
	} `json:"biography"`
	Emails *struct {
		Email []struct {
			Email string `json:"email"`
		} `json:"email"`
	} `json:"emails"`
	ResearcherURLs *struct {
		ResearcherURL []struct {
			URLName string      `json:"url-name"`
			URL     *valueField `json:"url"`
		} `json:"researcher-url"`
	} `json:"researcher-urls"`
}

// Affiliation is an education or employment summary.
type Affiliation struct {
	DepartmentName string     `json:"department-name"`
	RoleTitle      string     `json:"role-title"`
	StartDate      *dateField `json:"start-date"`
	EndDate        *dateField `json:"end-date"`
	Organization   *struct {
		Name string `json:"name"`
	} `json:"organization"`
}

// affiliationsResponse accepts both the flat "<kind>-summary" list and the
// v3.0 "affiliation-group" nesting.
type affiliationsResponse struct {
	EducationSummary  []Affiliation `json:"education-summary"`
	EmploymentSummary []Affiliation `json:"employment-summary"`
	AffiliationGroup  []struct {
		Summaries []struct {
			EducationSummary  *Affiliation `json:"education-summary"`
			EmploymentSummary *Affiliation `json:"employment-summary"`
		} `json:"summaries"`
	} `json:"affiliation-group"`
}

func (r affiliationsResponse) educations() []Affiliation {
	out := append([]Affiliation(nil), r.EducationSummary...)
	for _, group := range r.AffiliationGroup {
		for _, summary := range group.Summaries {
			if summary.EducationSummary != nil {
				out = append(out, *summary.EducationSummary)
			}
		}
	}
	return out
}

func (r affiliationsResponse) employments() []Affiliation {
	out := append([]Affiliation(nil), r.EmploymentSummary...)
	for _, group := range r.AffiliationGroup {
		for _, summary := range group.Summaries {
			if summary.EmploymentSummary != nil {
				out = append(out, *summary.EmploymentSummary)
			}
		}
	}
	return out
}
