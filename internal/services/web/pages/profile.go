package pages

import (
	"context"
	"net/url"

	"github.com/a-h/templ"
	"github.com/louisbranch/scholarflow/internal/services/scholar/profile"
)

const recentPublications = 5

// ProfileView carries per-request options for a public profile page.
type ProfileView struct {
	ShowAll bool
	// Owner shows the edit link.
	Owner bool
}

// ProfilePage renders p with its chosen template. Unknown templates fall
// back to minimal.
func ProfilePage(p profile.Profile, view ProfileView) templ.Component {
	var body templ.Component
	switch p.Template {
	case profile.TemplateResearchFocused:
		body = researchFocused(p, view)
	case profile.TemplateTeachingOriented:
		body = teachingOriented(p, view)
	case profile.TemplateIndustryHybrid:
		body = industryHybrid(p, view)
	default:
		body = minimal(p, view)
	}
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw("<div")
		h.attr("class", "profile template-"+string(p.Template))
		h.raw(">")
		if view.Owner {
			h.raw(`<div class="owner-bar"><a`)
			h.href("/profile/" + url.PathEscape(p.Username) + "/edit")
			h.raw(">Edit profile</a></div>")
		}
		h.render(ctx, body)
		h.raw(`<footer class="profile-footer">Profile powered by <a href="/">ScholarFlow</a></footer></div>`)
	})
}

func profileHeader(h *htmlWriter, p profile.Profile, dark bool) {
	class := "profile-header"
	if dark {
		class += " dark"
	}
	h.raw("<header")
	h.attr("class", class)
	h.raw(">")
	if p.ProfilePhoto != "" {
		h.raw(`<img class="avatar"`)
		h.attr("src", string(templ.URL(p.ProfilePhoto)))
		h.attr("alt", p.DisplayNameOrFull())
		h.raw(">")
	}
	h.raw("<h1>")
	h.text(p.DisplayNameOrFull())
	h.raw("</h1>")
	if p.CurrentPosition != "" {
		h.raw(`<p class="position">`)
		h.text(p.CurrentPosition)
		if p.CurrentInstitution != "" {
			h.text(" at " + p.CurrentInstitution)
		}
		h.raw("</p>")
	} else if p.CurrentInstitution != "" {
		h.raw(`<p class="position">`)
		h.text(p.CurrentInstitution)
		h.raw("</p>")
	}
	if p.CurrentDepartment != "" {
		h.raw(`<p class="department">`)
		h.text(p.CurrentDepartment)
		h.raw("</p>")
	}
	if p.Bio != "" {
		h.raw(`<p class="bio">`)
		h.text(p.Bio)
		h.raw("</p>")
	}
	h.raw("</header>")
}

func section(ctx context.Context, h *htmlWriter, title string, body templ.Component) {
	h.raw(`<section class="profile-section"><h2>`)
	h.text(title)
	h.raw("</h2>")
	h.render(ctx, body)
	h.raw("</section>")
}

func metricsBlock(h *htmlWriter, m Metrics, activeLabel string, list bool) {
	entries := []struct {
		label string
		value int
	}{
		{"Publications", m.Publications},
		{"Total Citations", m.Citations},
		{activeLabel, m.ActiveGrants},
	}
	if list {
		h.raw(`<dl class="metrics">`)
		for _, e := range entries {
			h.raw("<dt>")
			h.text(e.label + ":")
			h.raw("</dt><dd>")
			h.int(e.value)
			h.raw("</dd>")
		}
		h.raw("</dl>")
		return
	}
	h.raw(`<div class="stats">`)
	for _, e := range entries {
		h.raw(`<div class="stat-card"><div class="stat-value">`)
		h.int(e.value)
		h.raw(`</div><div class="stat-label">`)
		h.text(e.label)
		h.raw("</div></div>")
	}
	h.raw("</div>")
}

func minimal(p profile.Profile, view ProfileView) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<div class="layout-single">`)
		profileHeader(h, p, false)
		h.render(ctx, ContactInfo(p, false))
		if len(p.Publications) > 0 {
			section(ctx, h, "Publications", PublicationList(p.Publications, PublicationOptions{ShowAll: true}))
		}
		if len(p.Education) > 0 {
			section(ctx, h, "Education", educationList(p.Education, false))
		}
		h.raw("</div>")
	})
}

func researchFocused(p profile.Profile, view ProfileView) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		profileHeader(h, p, true)
		h.raw(`<div class="contact-bar dark">`)
		h.render(ctx, ContactInfo(p, true))
		h.raw(`</div><div class="layout-sidebar"><div class="main">`)
		if len(p.Publications) > 0 {
			section(ctx, h, "Publications", PublicationList(p.Publications, PublicationOptions{ShowAll: true, Detailed: true}))
		}
		if len(p.Grants) > 0 {
			section(ctx, h, "Grants & Funding", grantList(p.Grants))
		}
		h.raw(`</div><aside class="sidebar"><section class="profile-section"><h2>Research Metrics</h2>`)
		metricsBlock(h, ProfileMetrics(p), "Active Grants", true)
		h.raw("</section>")
		if len(p.Education) > 0 {
			section(ctx, h, "Education", educationList(p.Education, false))
		}
		if len(p.Awards) > 0 {
			section(ctx, h, "Awards & Honors", awardList(p.Awards))
		}
		h.raw("</aside></div>")
	})
}

func teachingOriented(p profile.Profile, view ProfileView) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		profileHeader(h, p, false)
		h.render(ctx, ContactInfo(p, true))
		h.raw(`<div class="layout-two"><div class="column">`)
		if len(p.Education) > 0 {
			section(ctx, h, "Education", educationList(p.Education, true))
		}
		if len(p.Positions) > 0 {
			section(ctx, h, "Teaching & Appointments", positionList(p.Positions))
		}
		h.raw(`</div><div class="column">`)
		if len(p.Publications) > 0 {
			recent := p.Publications
			if len(recent) > recentPublications {
				recent = recent[:recentPublications]
			}
			section(ctx, h, "Recent Publications", PublicationList(recent, PublicationOptions{ShowAll: true, Compact: true}))
		}
		if len(p.Awards) > 0 {
			section(ctx, h, "Awards & Recognition", awardList(p.Awards))
		}
		h.raw("</div></div>")
		if len(p.Publications) > recentPublications {
			section(ctx, h, "All Publications", PublicationList(p.Publications, PublicationOptions{ShowAll: view.ShowAll}))
		}
	})
}

func industryHybrid(p profile.Profile, view ProfileView) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		profileHeader(h, p, false)
		h.raw(`<div class="contact-bar dark">`)
		h.render(ctx, ContactInfo(p, true))
		h.raw("</div>")
		metricsBlock(h, ProfileMetrics(p), "Active Projects", false)
		h.raw(`<div class="layout-two"><div class="column">`)
		if len(p.Positions) > 0 {
			section(ctx, h, "Experience", positionList(p.Positions))
		}
		if len(p.Publications) > 0 {
			section(ctx, h, "Research & Publications", PublicationList(p.Publications, PublicationOptions{ShowAll: view.ShowAll, Detailed: true}))
		}
		if len(p.Grants) > 0 {
			section(ctx, h, "Funding & Grants", grantList(p.Grants))
		}
		h.raw(`</div><div class="column">`)
		if len(p.Education) > 0 {
			section(ctx, h, "Education", educationList(p.Education, true))
		}
		if len(p.Awards) > 0 {
			section(ctx, h, "Awards & Recognition", awardList(p.Awards))
		}
		h.raw("</div></div>")
	})
}
