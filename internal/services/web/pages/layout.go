package pages

import (
	"context"
	"net/url"

	"github.com/a-h/templ"
)

// Viewer describes the signed-in user for navigation.
type Viewer struct {
	SignedIn bool
	Name     string
	// Username is empty until the viewer has created a profile.
	Username string
}

// Layout wraps body in the shared document shell.
func Layout(title string, viewer Viewer, body templ.Component) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw("<title>")
		if title != "" {
			h.text(title + " | ")
		}
		h.raw(`ScholarFlow</title><link rel="stylesheet" href="/static/app.css"></head><body>`)
		h.raw(`<header class="site-header"><a class="brand" href="/">ScholarFlow</a><nav>`)
		if viewer.SignedIn {
			if viewer.Username != "" {
				h.raw("<a")
				h.href("/profile/" + url.PathEscape(viewer.Username))
				h.raw(">My profile</a><a")
				h.href("/profile/" + url.PathEscape(viewer.Username) + "/edit")
				h.raw(">Edit</a>")
			} else {
				h.raw(`<a href="/profile/create">Create profile</a>`)
			}
			h.raw(`<form method="post" action="/auth/signout" class="inline"><button type="submit" class="link">Sign out`)
			if viewer.Name != "" {
				h.text(" (" + viewer.Name + ")")
			}
			h.raw(`</button></form>`)
		} else {
			h.raw(`<a href="/auth/signin">Sign in</a>`)
		}
		h.raw(`</nav></header><main>`)
		h.render(ctx, body)
		h.raw(`</main></body></html>`)
	})
}

// Landing is the home page.
func Landing(viewer Viewer) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<section class="hero"><h1>Where academic productivity flows`)
		h.raw(`<span class="accent">seamlessly through modern web technology</span></h1>`)
		h.raw(`<p>Create an academic website in minutes. Import your publications from ORCID, `)
		h.raw(`pick a template and share one link with the world.</p>`)
		switch {
		case viewer.Username != "":
			h.raw(`<a class="btn-primary"`)
			h.href("/profile/" + url.PathEscape(viewer.Username))
			h.raw(`>View your profile</a>`)
		case viewer.SignedIn:
			h.raw(`<a class="btn-primary" href="/profile/create">Create your profile</a>`)
		default:
			h.raw(`<a class="btn-primary" href="/auth/signin">Get Started - It&#39;s Free</a>`)
		}
		h.raw(`</section><section id="features" class="features">`)
		for _, stat := range [][2]string{
			{"5 min", "Setup Time"},
			{"100%", "ORCID Integration"},
			{"4", "Templates"},
			{"Free", "To Start"},
		} {
			h.raw(`<div class="stat-card"><div class="stat-value">`)
			h.text(stat[0])
			h.raw(`</div><div class="stat-label">`)
			h.text(stat[1])
			h.raw(`</div></div>`)
		}
		h.raw(`</section>`)
	})
}

var signInErrors = map[string]string{
	"AccessDenied":  "You declined access to your ORCID record.",
	"OAuthCallback": "Signing in with ORCID failed. Please try again.",
	"Configuration": "ORCID sign-in is not configured on this server.",
}

// SignInErrorMessage returns the text shown for a sign-in error code.
func SignInErrorMessage(code string) string {
	if code == "" {
		return ""
	}
	if msg, ok := signInErrors[code]; ok {
		return msg
	}
	return "Something went wrong while signing in."
}

// SignIn renders the ORCID sign-in page.
func SignIn(errorCode, next string) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<section class="card narrow"><h1>Sign in to ScholarFlow</h1>`)
		if msg := SignInErrorMessage(errorCode); msg != "" {
			h.raw(`<p class="alert" role="alert">`)
			h.text(msg)
			h.raw(`</p>`)
		}
		start := "/auth/signin/orcid"
		if next != "" {
			start += "?next=" + url.QueryEscape(next)
		}
		h.raw(`<a class="btn-orcid"`)
		h.href(start)
		h.raw(`>Continue with ORCID</a>`)
		h.raw(`<p class="muted">We use your ORCID iD to sign you in and import your public record.</p></section>`)
	})
}

// NotFound is the 404 page body.
func NotFound() templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<section class="card narrow"><h1>Page not found</h1>`)
		h.raw(`<p>The page or profile you are looking for does not exist or is not public.</p>`)
		h.raw(`<a href="/">Back to home</a></section>`)
	})
}

// ServerError is the page body for unexpected failures.
func ServerError() templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<section class="card narrow"><h1>Something went wrong</h1>`)
		h.raw(`<p>We could not complete your request. Please try again in a moment.</p>`)
		h.raw(`<a href="/">Back to home</a></section>`)
	})
}
