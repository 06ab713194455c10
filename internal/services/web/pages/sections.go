package pages

import (
	"context"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/louisbranch/scholarflow/internal/services/scholar/profile"
)

const (
	collapsedPublications = 5
	listedAuthors         = 3
	abstractLimit         = 200
	listedKeywords        = 5
)

// PublicationOptions controls how a publication list renders.
type PublicationOptions struct {
	ShowAll  bool
	Detailed bool
	Compact  bool
	Dark     bool
	// AllURL is where the "view all" link points when the list is cut.
	AllURL string
}

// PublicationList renders publications, cutting to the first five unless
// ShowAll is set.
func PublicationList(pubs []profile.Publication, opts PublicationOptions) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		shown := pubs
		if !opts.ShowAll && len(shown) > collapsedPublications {
			shown = shown[:collapsedPublications]
		}
		class := "publications"
		if opts.Compact {
			class += " compact"
		}
		if opts.Dark {
			class += " dark"
		}
		h.raw("<div")
		h.attr("class", class)
		h.raw(">")
		for _, pub := range shown {
			writePublication(h, pub, opts.Detailed)
		}
		if !opts.ShowAll && len(pubs) > collapsedPublications {
			allURL := opts.AllURL
			if allURL == "" {
				allURL = "?all=1"
			}
			h.raw(`<div class="view-all"><a`)
			h.href(allURL)
			h.raw(">View all ")
			h.int(len(pubs))
			h.raw(" publications &rarr;</a></div>")
		}
		h.raw("</div>")
	})
}

// AuthorLine joins the first three authors and appends "et al." when more
// are listed.
func AuthorLine(authors []string) string {
	if len(authors) <= listedAuthors {
		return strings.Join(authors, ", ")
	}
	return strings.Join(authors[:listedAuthors], ", ") + " et al."
}

func writePublication(h *htmlWriter, pub profile.Publication, detailed bool) {
	h.raw(`<article class="card publication"><div class="publication-body"><h3>`)
	if pub.URL != "" {
		h.link(pub.URL, "", pub.Title)
	} else {
		h.text(pub.Title)
	}
	h.raw("</h3>")
	if len(pub.Authors) > 0 {
		h.raw(`<div class="authors">`)
		h.text(AuthorLine(pub.Authors))
		h.raw("</div>")
	}

	h.raw(`<div class="venue">`)
	if pub.Journal != "" {
		h.raw(`<span class="journal">`)
		h.text(pub.Journal)
		h.raw("</span>")
		if pub.Year != 0 {
			h.raw(" &bull; ")
		}
	}
	if pub.Year != 0 {
		h.raw("<span>")
		h.int(pub.Year)
		h.raw("</span>")
	}
	if pub.Type != "" {
		h.raw(` &bull; <span class="badge type-`)
		h.text(string(pub.Type))
		h.raw(`">`)
		h.text(pub.Type.Label())
		h.raw("</span>")
	}
	h.raw("</div>")

	if detailed && pub.Abstract != "" {
		h.raw(`<p class="abstract">`)
		h.text(truncate(pub.Abstract, abstractLimit))
		h.raw("</p>")
	}
	if len(pub.Keywords) > 0 {
		keywords := pub.Keywords
		if len(keywords) > listedKeywords {
			keywords = keywords[:listedKeywords]
		}
		h.raw(`<div class="keywords">`)
		for _, kw := range keywords {
			h.raw(`<span class="keyword">`)
			h.text(kw)
			h.raw("</span>")
		}
		h.raw("</div>")
	}
	h.raw(`</div><div class="publication-meta">`)
	if pub.CitationCount != nil {
		h.raw(`<div class="citations"><strong>`)
		h.int(*pub.CitationCount)
		h.raw("</strong> citations</div>")
	}
	if pub.DOI != "" {
		h.link("https://doi.org/"+pub.DOI, "doi", "DOI")
	}
	if pub.URL != "" {
		h.link(pub.URL, "view", "View")
	}
	h.raw("</div></article>")
}

// ContactInfo renders email, ORCID, website and social links.
func ContactInfo(p profile.Profile, horizontal bool) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		class := "contact"
		if horizontal {
			class += " horizontal"
		}
		h.raw("<div")
		h.attr("class", class)
		h.raw(">")
		if p.Email != "" {
			h.raw(`<div class="contact-item"><a`)
			h.href("mailto:" + p.Email)
			h.raw(">")
			h.text(p.Email)
			h.raw("</a></div>")
		}
		if p.ORCIDID != "" {
			h.raw(`<div class="contact-item">`)
			h.link("https://orcid.org/"+p.ORCIDID, "orcid", "ORCID: "+p.ORCIDID)
			h.raw("</div>")
		}
		if p.Website != "" {
			h.raw(`<div class="contact-item">`)
			h.link(p.Website, "", "Personal Website")
			h.raw("</div>")
		}
		if len(p.SocialLinks) > 0 {
			h.raw(`<div class="contact-item social">`)
			for _, l := range p.SocialLinks {
				h.link(l.URL, "", l.Label())
			}
			h.raw("</div>")
		}
		h.raw("</div>")
	})
}

// yearRange formats "start - end", "start - Present" or "start".
func yearRange(start int, end *int, current bool) string {
	s := strconv.Itoa(start)
	switch {
	case current:
		return s + " - Present"
	case end != nil && *end != start:
		return s + " - " + strconv.Itoa(*end)
	default:
		return s
	}
}

func educationList(items []profile.Education, withDescription bool) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<ul class="timeline">`)
		for _, edu := range items {
			h.raw("<li><strong>")
			h.text(edu.Degree)
			if edu.Field != "" {
				h.text(" in " + edu.Field)
			}
			h.raw("</strong><div>")
			h.text(edu.Institution)
			h.raw(`</div><div class="muted">`)
			h.text(yearRange(edu.StartYear, edu.EndYear, edu.Current))
			h.raw("</div>")
			if withDescription && edu.Description != "" {
				h.raw("<p>")
				h.text(edu.Description)
				h.raw("</p>")
			}
			h.raw("</li>")
		}
		h.raw("</ul>")
	})
}

func positionList(items []profile.Position) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<ul class="timeline">`)
		for _, pos := range items {
			h.raw("<li><strong>")
			h.text(pos.Title)
			h.raw("</strong><div>")
			h.text(pos.Institution)
			if pos.Department != "" {
				h.text(", " + pos.Department)
			}
			h.raw(`</div><div class="muted">`)
			h.text(yearRange(pos.StartYear, pos.EndYear, pos.Current))
			h.raw("</div>")
			if pos.Description != "" {
				h.raw("<p>")
				h.text(pos.Description)
				h.raw("</p>")
			}
			h.raw("</li>")
		}
		h.raw("</ul>")
	})
}

func awardList(items []profile.Award) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<ul class="awards">`)
		for _, a := range items {
			h.raw("<li><strong>")
			h.text(a.Title)
			h.raw(`</strong><div class="muted">`)
			h.text(a.Organization + ", " + strconv.Itoa(a.Year))
			h.raw("</div>")
			if a.Amount != "" {
				h.raw(`<div class="amount">`)
				h.text(a.Amount)
				h.raw("</div>")
			}
			if a.Description != "" {
				h.raw("<p>")
				h.text(a.Description)
				h.raw("</p>")
			}
			h.raw("</li>")
		}
		h.raw("</ul>")
	})
}

func grantList(items []profile.Grant) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<div class="grants">`)
		for _, g := range items {
			h.raw(`<article class="card grant"><h3>`)
			h.text(g.Title)
			h.raw(`</h3><span class="badge status-`)
			h.text(strings.ToLower(string(g.Status)))
			h.raw(`">`)
			h.text(string(g.Status))
			h.raw("</span><dl><dt>Agency:</dt><dd>")
			h.text(g.Agency)
			h.raw("</dd><dt>Role:</dt><dd>")
			h.text(string(g.Role))
			h.raw("</dd><dt>Period:</dt><dd>")
			h.text(yearRange(g.StartYear, g.EndYear, false))
			h.raw("</dd>")
			if g.Amount != "" {
				h.raw("<dt>Amount:</dt><dd>")
				h.text(g.Amount)
				h.raw("</dd>")
			}
			h.raw("</dl>")
			if g.Description != "" {
				h.raw("<p>")
				h.text(g.Description)
				h.raw("</p>")
			}
			h.raw("</article>")
		}
		h.raw("</div>")
	})
}

// Metrics summarizes a profile's research output.
type Metrics struct {
	Publications int
	Citations    int
	ActiveGrants int
}

// ProfileMetrics counts publications, citations and active grants.
func ProfileMetrics(p profile.Profile) Metrics {
	m := Metrics{Publications: len(p.Publications)}
	for _, pub := range p.Publications {
		if pub.CitationCount != nil {
			m.Citations += *pub.CitationCount
		}
	}
	for _, g := range p.Grants {
		if g.Status == profile.GrantActive {
			m.ActiveGrants++
		}
	}
	return m
}
