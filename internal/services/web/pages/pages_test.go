package pages

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/louisbranch/scholarflow/internal/services/scholar/catalog"
	"github.com/louisbranch/scholarflow/internal/services/scholar/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, c.Render(context.Background(), &b))
	return b.String()
}

func publications(n int) []profile.Publication {
	pubs := make([]profile.Publication, n)
	for i := range pubs {
		pubs[i] = profile.Publication{
			ID:    fmt.Sprintf("pub-%d", i),
			Title: fmt.Sprintf("Paper %d", i),
			Year:  2020 - i,
			Type:  profile.PublicationJournalArticle,
		}
	}
	return pubs
}

func TestPublicationListCollapsesToFive(t *testing.T) {
	out := render(t, PublicationList(publications(7), PublicationOptions{}))
	assert.Contains(t, out, "Paper 4")
	assert.NotContains(t, out, "Paper 5")
	assert.Contains(t, out, "View all 7 publications")

	out = render(t, PublicationList(publications(7), PublicationOptions{ShowAll: true}))
	assert.Contains(t, out, "Paper 6")
	assert.NotContains(t, out, "View all")
}

func TestPublicationListDetails(t *testing.T) {
	cites := 12
	pub := profile.Publication{
		Title:         "On <Engines>",
		Authors:       []string{"Ada Lovelace", "Charles Babbage", "Mary Somerville", "Luigi Menabrea"},
		Journal:       "Notes",
		Year:          1843,
		DOI:           "10.1000/xyz",
		URL:           "https://example.org/engines",
		CitationCount: &cites,
		Type:          profile.PublicationBookChapter,
		Abstract:      strings.Repeat("a", 250),
		Keywords:      []string{"k1", "k2", "k3", "k4", "k5", "k6"},
	}

	out := render(t, PublicationList([]profile.Publication{pub}, PublicationOptions{Detailed: true}))
	assert.Contains(t, out, "On &lt;Engines&gt;")
	assert.Contains(t, out, "Ada Lovelace, Charles Babbage, Mary Somerville et al.")
	assert.NotContains(t, out, "Luigi")
	assert.Contains(t, out, "book chapter")
	assert.Contains(t, out, strings.Repeat("a", 200)+"...")
	assert.NotContains(t, out, strings.Repeat("a", 201))
	assert.Contains(t, out, "k5")
	assert.NotContains(t, out, "k6")
	assert.Contains(t, out, `href="https://doi.org/10.1000/xyz"`)
	assert.Contains(t, out, "<strong>12</strong> citations")

	out = render(t, PublicationList([]profile.Publication{pub}, PublicationOptions{}))
	assert.NotContains(t, out, "aaaa")
}

func TestAuthorLine(t *testing.T) {
	assert.Equal(t, "", AuthorLine(nil))
	assert.Equal(t, "A, B, C", AuthorLine([]string{"A", "B", "C"}))
	assert.Equal(t, "A, B, C et al.", AuthorLine([]string{"A", "B", "C", "D"}))
}

func TestContactInfo(t *testing.T) {
	p := profile.Profile{
		Email:   "ada@example.org",
		ORCIDID: "0000-0002-1825-0097",
		Website: "https://ada.example.org",
		SocialLinks: []profile.SocialLink{
			{Platform: "Mastodon", URL: "https://mastodon.example/@ada"},
			{Platform: "GitHub", URL: "https://github.com/ada", DisplayName: "ada on GitHub"},
			{Platform: "Bad", URL: "javascript:alert(1)"},
		},
	}
	out := render(t, ContactInfo(p, false))
	assert.Contains(t, out, `href="mailto:ada@example.org"`)
	assert.Contains(t, out, `href="https://orcid.org/0000-0002-1825-0097"`)
	assert.Contains(t, out, "ORCID: 0000-0002-1825-0097")
	assert.Contains(t, out, "Personal Website")
	assert.Contains(t, out, ">Mastodon</a>")
	assert.Contains(t, out, ">ada on GitHub</a>")
	assert.NotContains(t, out, "javascript:")
}

func TestProfilePageDispatchesOnTemplate(t *testing.T) {
	active := profile.GrantActive
	base := profile.Profile{
		Username:     "ada-lovelace",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Publications: publications(6),
		Positions:    []profile.Position{{Title: "Analyst", Institution: "Engine Co", StartYear: 1840, Current: true}},
		Grants:       []profile.Grant{{Title: "Engine fund", Agency: "Crown", Role: profile.GrantRolePI, StartYear: 1842, Status: active}},
	}

	tests := []struct {
		template profile.Template
		want     []string
	}{
		{"", []string{"template-", "Publications", "Paper 5"}},
		{profile.TemplateResearchFocused, []string{"Research Metrics", "Grants &amp; Funding", "Active Grants:"}},
		{profile.TemplateTeachingOriented, []string{"Recent Publications", "All Publications", "View all 6 publications"}},
		{profile.TemplateIndustryHybrid, []string{"Experience", "Research &amp; Publications", "Funding &amp; Grants", "Active Projects"}},
	}
	for _, tc := range tests {
		t.Run(string(tc.template), func(t *testing.T) {
			p := base
			p.Template = tc.template
			out := render(t, ProfilePage(p, ProfileView{}))
			assert.Contains(t, out, "<h1>Ada Lovelace</h1>")
			assert.Contains(t, out, "Profile powered by")
			assert.NotContains(t, out, "Edit profile")
			for _, want := range tc.want {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestProfilePageOwnerLink(t *testing.T) {
	out := render(t, ProfilePage(profile.Profile{Username: "ada", FirstName: "Ada"}, ProfileView{Owner: true}))
	assert.Contains(t, out, `href="/profile/ada/edit"`)
}

func TestProfileMetrics(t *testing.T) {
	one, two := 1, 2
	m := ProfileMetrics(profile.Profile{
		Publications: []profile.Publication{{CitationCount: &one}, {CitationCount: &two}, {}},
		Grants:       []profile.Grant{{Status: profile.GrantActive}, {Status: profile.GrantCompleted}},
	})
	assert.Equal(t, Metrics{Publications: 3, Citations: 3, ActiveGrants: 1}, m)
}

func TestSignInShowsErrorMessage(t *testing.T) {
	out := render(t, SignIn("AccessDenied", "/profile/create"))
	assert.Contains(t, out, "declined access")
	assert.Contains(t, out, `href="/auth/signin/orcid?next=%2Fprofile%2Fcreate"`)

	out = render(t, SignIn("", ""))
	assert.NotContains(t, out, `role="alert"`)
	assert.Equal(t, "Something went wrong while signing in.", SignInErrorMessage("Weird"))
}

func TestLayoutNavigation(t *testing.T) {
	body := NotFound()
	out := render(t, Layout("Missing", Viewer{}, body))
	assert.Contains(t, out, "<title>Missing | ScholarFlow</title>")
	assert.Contains(t, out, `href="/auth/signin"`)
	assert.Contains(t, out, "Page not found")

	out = render(t, Layout("", Viewer{SignedIn: true, Name: "Ada", Username: "ada"}, Landing(Viewer{SignedIn: true, Username: "ada"})))
	assert.Contains(t, out, `action="/auth/signout"`)
	assert.Contains(t, out, `href="/profile/ada/edit"`)
	assert.Contains(t, out, "View your profile")
}

func TestFormsPrefill(t *testing.T) {
	c, err := catalog.Load()
	require.NoError(t, err)

	out := render(t, CreateForm(CreateFormData{
		Draft:     profile.Profile{FirstName: "Ada", LastName: "Lovelace", Bio: "<b>hi</b>"},
		Works:     publications(2),
		Templates: c.All(),
		Error:     "Profile already exists",
	}))
	assert.Contains(t, out, `name="firstName" value="Ada"`)
	assert.Contains(t, out, "&lt;b&gt;hi&lt;/b&gt;")
	assert.Contains(t, out, "Import 2 publications")
	assert.Contains(t, out, `value="minimal" checked`)
	assert.Contains(t, out, `value="public" selected`)
	assert.Contains(t, out, "Profile already exists")

	p := profile.Profile{
		Username:   "ada",
		ORCIDID:    "0000-0002-1825-0097",
		Template:   profile.TemplateIndustryHybrid,
		Visibility: profile.VisibilityPrivate,
	}
	out = render(t, EditForm(EditFormData{Profile: p, Templates: c.All(), Notice: "Saved"}))
	assert.Contains(t, out, `action="/profile/ada/edit/photo"`)
	assert.Contains(t, out, `action="/profile/ada/edit/sync"`)
	assert.Contains(t, out, `value="industry-hybrid" checked`)
	assert.Contains(t, out, `value="private" selected`)
	assert.Contains(t, out, "Saved")
}
