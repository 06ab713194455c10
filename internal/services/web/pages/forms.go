package pages

import (
	"context"
	"net/url"

	"github.com/a-h/templ"
	"github.com/louisbranch/scholarflow/internal/services/scholar/catalog"
	"github.com/louisbranch/scholarflow/internal/services/scholar/profile"
)

// CreateFormData feeds the create profile form.
type CreateFormData struct {
	Draft      profile.Profile
	Works      []profile.Publication
	WorksError string
	// ShowAllWorks lists every previewed work instead of the first five.
	ShowAllWorks bool
	Templates    []catalog.Template
	Error        string
}

// EditFormData feeds the edit profile form.
type EditFormData struct {
	Profile   profile.Profile
	Templates []catalog.Template
	Error     string
	Notice    string
}

var visibilityOptions = []struct {
	value profile.Visibility
	label string
}{
	{profile.VisibilityPublic, "Public"},
	{profile.VisibilityUnlisted, "Unlisted (accessible via link)"},
	{profile.VisibilityPrivate, "Private"},
}

// CreateForm renders the first-run profile form prefilled from ORCID.
func CreateForm(data CreateFormData) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<section class="card"><h1>Create your academic profile</h1>`)
		alert(h, data.Error)
		h.raw(`<form method="post" action="/profile/create">`)
		basicFields(h, data.Draft)
		h.raw(`<fieldset><legend>Publications from ORCID</legend>`)
		switch {
		case data.WorksError != "":
			h.raw(`<p class="muted">`)
			h.text(data.WorksError)
			h.raw("</p>")
		case len(data.Works) == 0:
			h.raw(`<p class="muted">No publications found or not yet imported.</p>`)
		default:
			h.raw(`<label class="checkbox"><input type="checkbox" name="importWorks" value="1" checked> Import `)
			h.int(len(data.Works))
			h.raw(" publications</label>")
			h.render(ctx, PublicationList(data.Works, PublicationOptions{ShowAll: data.ShowAllWorks, Compact: true, AllURL: "/profile/create?all=1"}))
		}
		h.raw("</fieldset>")
		settingsFields(h, data.Draft, data.Templates)
		h.raw(`<button type="submit" class="btn-primary">Create My Profile</button></form></section>`)
	})
}

// EditForm renders the profile editor with photo upload and ORCID sync.
func EditForm(data EditFormData) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		p := data.Profile
		base := "/profile/" + url.PathEscape(p.Username) + "/edit"

		h.raw(`<section class="card"><h1>Edit profile</h1>`)
		alert(h, data.Error)
		if data.Notice != "" {
			h.raw(`<p class="notice" role="status">`)
			h.text(data.Notice)
			h.raw("</p>")
		}

		h.raw(`<form method="post" enctype="multipart/form-data" class="photo-form"`)
		h.attr("action", base+"/photo")
		h.raw(`><fieldset><legend>Profile photo</legend>`)
		if p.ProfilePhoto != "" {
			h.raw(`<img class="avatar"`)
			h.attr("src", string(templ.URL(p.ProfilePhoto)))
			h.raw(` alt="Current photo">`)
		}
		h.raw(`<input type="file" name="file" accept="image/jpeg,image/png,image/webp" required>`)
		h.raw(`<input type="hidden" name="type" value="PROFILE_PHOTO">`)
		h.raw(`<button type="submit">Upload photo</button></fieldset></form>`)

		if p.ORCIDID != "" {
			h.raw(`<form method="post" class="sync-form"`)
			h.attr("action", base+"/sync")
			h.raw(`><button type="submit">Sync publications from ORCID</button>`)
			if p.LastORCIDSync != nil {
				h.raw(`<span class="muted"> Last synced `)
				h.text(p.LastORCIDSync.Format("2 Jan 2006 15:04 MST"))
				h.raw("</span>")
			}
			h.raw("</form>")
		}

		h.raw(`<form method="post"`)
		h.attr("action", base)
		h.raw(">")
		basicFields(h, p)
		settingsFields(h, p, data.Templates)
		h.raw(`<button type="submit" class="btn-primary">Save changes</button> <a`)
		h.href("/profile/" + url.PathEscape(p.Username))
		h.raw(`>View profile</a></form></section>`)
	})
}

func alert(h *htmlWriter, msg string) {
	if msg == "" {
		return
	}
	h.raw(`<p class="alert" role="alert">`)
	h.text(msg)
	h.raw("</p>")
}

func input(h *htmlWriter, label, name, kind, value string, required bool) {
	h.raw("<label>")
	h.text(label)
	h.raw("<input")
	h.attr("type", kind)
	h.attr("name", name)
	h.attr("value", value)
	if required {
		h.raw(" required")
	}
	h.raw("></label>")
}

func basicFields(h *htmlWriter, p profile.Profile) {
	h.raw("<fieldset><legend>Basic Information</legend>")
	input(h, "First name", "firstName", "text", p.FirstName, true)
	input(h, "Last name", "lastName", "text", p.LastName, true)
	input(h, "Display name", "displayName", "text", p.DisplayName, false)
	input(h, "Email", "email", "email", p.Email, false)
	h.raw(`<label>Bio<textarea name="bio" rows="4">`)
	h.text(p.Bio)
	h.raw("</textarea></label></fieldset>")

	h.raw("<fieldset><legend>Current Position</legend>")
	input(h, "Position", "currentPosition", "text", p.CurrentPosition, false)
	input(h, "Institution", "currentInstitution", "text", p.CurrentInstitution, false)
	input(h, "Department", "currentDepartment", "text", p.CurrentDepartment, false)
	input(h, "Website", "website", "url", p.Website, false)
	h.raw("</fieldset>")
}

func settingsFields(h *htmlWriter, p profile.Profile, templates []catalog.Template) {
	h.raw("<fieldset><legend>Profile Settings</legend>")
	current := p.Template
	if current == "" {
		current = profile.TemplateMinimal
	}
	h.raw(`<div class="template-options">`)
	for _, t := range templates {
		h.raw(`<label class="template-option"><input type="radio" name="template"`)
		h.attr("value", string(t.ID))
		if t.ID == current {
			h.raw(" checked")
		}
		h.raw("><strong>")
		h.text(t.Name)
		h.raw(`</strong><span class="muted">`)
		h.text(t.Description)
		h.raw("</span></label>")
	}
	h.raw(`</div><label>Visibility<select name="visibility">`)
	visibility := p.Visibility
	if visibility == "" {
		visibility = profile.VisibilityPublic
	}
	for _, opt := range visibilityOptions {
		h.raw("<option")
		h.attr("value", string(opt.value))
		if opt.value == visibility {
			h.raw(" selected")
		}
		h.raw(">")
		h.text(opt.label)
		h.raw("</option>")
	}
	h.raw("</select></label></fieldset>")
}
