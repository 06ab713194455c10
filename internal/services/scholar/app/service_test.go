package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/louisbranch/scholarflow/internal/platform/blobstore"
	"github.com/louisbranch/scholarflow/internal/platform/cache"
	cachesqlite "github.com/louisbranch/scholarflow/internal/platform/cache/sqlite"
	apperrors "github.com/louisbranch/scholarflow/internal/platform/errors"
	authsqlite "github.com/louisbranch/scholarflow/internal/services/auth/storage/sqlite"
	"github.com/louisbranch/scholarflow/internal/services/auth/user"
	"github.com/louisbranch/scholarflow/internal/services/scholar/orcid"
	"github.com/louisbranch/scholarflow/internal/services/scholar/profile"
	scholarsqlite "github.com/louisbranch/scholarflow/internal/services/scholar/storage/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adaORCID   = "0000-0002-1825-0097"
	adaUserID  = "user-ada"
	otherORCID = "0000-0001-5109-3700"
)

var fixedNow = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

type fakeORCID struct {
	mu         sync.Mutex
	works      []profile.Publication
	worksErr   error
	person     orcid.Person
	personErr  error
	educations []profile.Education
	positions  []profile.Position
	worksCalls int
	tokens     []string
}

func (f *fakeORCID) factory(token string) ORCID {
	f.mu.Lock()
	f.tokens = append(f.tokens, token)
	f.mu.Unlock()
	return f
}

func (f *fakeORCID) FetchWorks(context.Context, string) ([]profile.Publication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.worksCalls++
	if f.worksErr != nil {
		return nil, f.worksErr
	}
	return append([]profile.Publication(nil), f.works...), nil
}

func (f *fakeORCID) FetchPerson(context.Context, string) (orcid.Person, error) {
	return f.person, f.personErr
}

func (f *fakeORCID) FetchEducations(context.Context, string) []profile.Education {
	return f.educations
}

func (f *fakeORCID) FetchEmployments(context.Context, string) []profile.Position {
	return f.positions
}

type fixture struct {
	svc   *Service
	store *scholarsqlite.Store
	users *authsqlite.Store
	cache *cachesqlite.Store
	blobs *blobstore.FileStore
	orcid *fakeORCID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	store, err := scholarsqlite.Open(ctx, filepath.Join(dir, "scholar.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	users, err := authsqlite.Open(ctx, filepath.Join(dir, "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = users.Close() })

	payloads, err := cachesqlite.Open(ctx, filepath.Join(dir, "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = payloads.Close() })

	blobs, err := blobstore.NewFileStore(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	f := &fixture{store: store, users: users, cache: payloads, blobs: blobs, orcid: &fakeORCID{}}
	f.svc = NewService(store, users, Config{WorksTTL: time.Hour, ProfileTTL: time.Hour},
		WithORCID(f.orcid.factory),
		WithBlobs(blobs),
		WithCache(payloads),
		WithClock(func() time.Time { return fixedNow }),
	)
	return f
}

func (f *fixture) seedUser(t *testing.T, id, orcidID, name string) {
	t.Helper()
	require.NoError(t, f.users.PutUser(context.Background(), user.User{
		ID:          id,
		ORCIDID:     orcidID,
		Name:        name,
		Email:       id + "@example.edu",
		AccessToken: "token-" + id,
		CreatedAt:   fixedNow,
		UpdatedAt:   fixedNow,
	}))
}

func (f *fixture) createAda(t *testing.T) profile.Profile {
	t.Helper()
	f.seedUser(t, adaUserID, adaORCID, "Ada King Lovelace")
	p, err := f.svc.CreateProfile(context.Background(), adaUserID, profile.Profile{
		FirstName: "Ada",
		LastName:  "Lovelace",
		ORCIDID:   adaORCID,
		Publications: []profile.Publication{
			{Title: "Notes on the Analytical Engine", Year: 1843},
		},
		SocialLinks: []profile.SocialLink{{Platform: "Mastodon", URL: "https://example.social/@ada"}},
	})
	require.NoError(t, err)
	return p
}

func requireCode(t *testing.T, err error, code apperrors.Code) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, apperrors.CodeOf(err), "error: %v", err)
}

func TestCreateProfileAssignsDefaults(t *testing.T) {
	f := newFixture(t)
	p := f.createAda(t)

	assert.Equal(t, "ada-lovelace", p.Username)
	assert.Equal(t, adaUserID, p.UserID)
	assert.Equal(t, profile.TemplateMinimal, p.Template)
	assert.Equal(t, profile.VisibilityPublic, p.Visibility)
	require.NotNil(t, p.PublishedAt)
	assert.True(t, p.PublishedAt.Equal(fixedNow))
	require.NotNil(t, p.LastORCIDSync)
	assert.True(t, p.LastORCIDSync.Equal(fixedNow))
	require.Len(t, p.Publications, 1)
	assert.Equal(t, profile.PublicationJournalArticle, p.Publications[0].Type)
	require.Len(t, p.SocialLinks, 1)
}

func TestCreateProfileSuffixesTakenUsername(t *testing.T) {
	f := newFixture(t)
	f.createAda(t)
	f.seedUser(t, "user-other", otherORCID, "Ada Lovelace")

	p, err := f.svc.CreateProfile(context.Background(), "user-other", profile.Profile{
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Visibility: profile.VisibilityPrivate,
	})
	require.NoError(t, err)
	assert.Equal(t, "ada-lovelace-1", p.Username)
	assert.Nil(t, p.PublishedAt)
	assert.Nil(t, p.LastORCIDSync)
}

func TestCreateProfileErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	input := profile.Profile{FirstName: "Ada", LastName: "Lovelace"}

	_, err := f.svc.CreateProfile(ctx, "", input)
	requireCode(t, err, apperrors.CodeUnauthenticated)

	_, err = f.svc.CreateProfile(ctx, "ghost", input)
	requireCode(t, err, apperrors.CodeUserNotFound)
	assert.Equal(t, "User not found", err.Error())

	f.createAda(t)
	_, err = f.svc.CreateProfile(ctx, adaUserID, input)
	requireCode(t, err, apperrors.CodeProfileExists)
	assert.Equal(t, "Profile already exists", err.Error())

	f.seedUser(t, "user-nameless", otherORCID, "")
	_, err = f.svc.CreateProfile(ctx, "user-nameless", profile.Profile{FirstName: "Ada"})
	requireCode(t, err, apperrors.CodeNameRequired)
}

func TestCurrentProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CurrentProfile(ctx, "")
	requireCode(t, err, apperrors.CodeUnauthenticated)

	f.seedUser(t, adaUserID, adaORCID, "Ada Lovelace")
	current, err := f.svc.CurrentProfile(ctx, adaUserID)
	require.NoError(t, err)
	assert.Nil(t, current)

	created := f.createAdaProfileOnly(t)
	current, err = f.svc.CurrentProfile(ctx, adaUserID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, created.ID, current.ID)
}

func (f *fixture) createAdaProfileOnly(t *testing.T) profile.Profile {
	t.Helper()
	p, err := f.svc.CreateProfile(context.Background(), adaUserID, profile.Profile{FirstName: "Ada", LastName: "Lovelace"})
	require.NoError(t, err)
	return p
}

func TestUpdateProfileReplacesPresentCollections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createAda(t)

	bio := "Mathematician"
	private := profile.VisibilityPrivate
	education := []profile.Education{{Institution: "University of London", Degree: "Tutoring", Field: "Mathematics", StartYear: 1840}}
	updated, err := f.svc.UpdateProfile(ctx, adaUserID, profile.Patch{
		Bio:        &bio,
		Visibility: &private,
		Education:  &education,
	})
	require.NoError(t, err)

	assert.Equal(t, "Mathematician", updated.Bio)
	assert.Equal(t, profile.VisibilityPrivate, updated.Visibility)
	assert.Nil(t, updated.PublishedAt)
	assert.Len(t, updated.Education, 1)
	assert.Len(t, updated.Publications, 1, "publications absent from the patch are kept")
	assert.Len(t, updated.SocialLinks, 1)

	public := profile.VisibilityPublic
	empty := []profile.Publication{}
	updated, err = f.svc.UpdateProfile(ctx, adaUserID, profile.Patch{Visibility: &public, Publications: &empty})
	require.NoError(t, err)
	require.NotNil(t, updated.PublishedAt)
	assert.Empty(t, updated.Publications)
}

func TestUpdateProfileErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.UpdateProfile(ctx, "", profile.Patch{})
	requireCode(t, err, apperrors.CodeUnauthenticated)

	_, err = f.svc.UpdateProfile(ctx, "nobody", profile.Patch{})
	requireCode(t, err, apperrors.CodeProfileNotFound)
	assert.Equal(t, "Profile not found", err.Error())

	f.createAda(t)
	website := "not a url"
	_, err = f.svc.UpdateProfile(ctx, adaUserID, profile.Patch{Website: &website})
	requireCode(t, err, apperrors.CodeInvalidURL)
}

func TestPublicProfileHonoursVisibilityAndCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createAda(t)

	p, err := f.svc.PublicProfile(ctx, "Ada-Lovelace")
	require.NoError(t, err)
	assert.Equal(t, "ada-lovelace", p.Username)

	_, cached, err := f.cache.Get(ctx, cache.PublicProfileKey("ada-lovelace"))
	require.NoError(t, err)
	assert.True(t, cached)

	unlisted := profile.VisibilityUnlisted
	_, err = f.svc.UpdateProfile(ctx, adaUserID, profile.Patch{Visibility: &unlisted})
	require.NoError(t, err)
	_, cached, err = f.cache.Get(ctx, cache.PublicProfileKey("ada-lovelace"))
	require.NoError(t, err)
	assert.False(t, cached, "update invalidates the public view")

	p, err = f.svc.PublicProfile(ctx, "ada-lovelace")
	require.NoError(t, err)
	assert.Equal(t, profile.VisibilityUnlisted, p.Visibility)

	private := profile.VisibilityPrivate
	_, err = f.svc.UpdateProfile(ctx, adaUserID, profile.Patch{Visibility: &private})
	require.NoError(t, err)
	_, err = f.svc.PublicProfile(ctx, "ada-lovelace")
	requireCode(t, err, apperrors.CodeProfileNotFound)

	_, err = f.svc.PublicProfile(ctx, "no such user!")
	requireCode(t, err, apperrors.CodeProfileNotFound)
}

func TestProfileByIDLimitsPublications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.createAda(t)

	pubs := make([]profile.Publication, 0, 25)
	for i := range 25 {
		pubs = append(pubs, profile.Publication{Title: fmt.Sprintf("Paper %d", i), Year: 2000 + i})
	}
	_, err := f.svc.UpdateProfile(ctx, adaUserID, profile.Patch{Publications: &pubs})
	require.NoError(t, err)

	p, err := f.svc.ProfileByID(ctx, "", created.ID)
	require.NoError(t, err)
	require.Len(t, p.Publications, 20)
	assert.Equal(t, 2024, p.Publications[0].Year)
	assert.Equal(t, 2005, p.Publications[19].Year)

	_, err = f.svc.ProfileByID(ctx, "", "missing")
	requireCode(t, err, apperrors.CodeProfileNotFound)
}

func TestProfileByIDHidesPrivateFromOthers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.createAda(t)

	private := profile.VisibilityPrivate
	_, err := f.svc.UpdateProfile(ctx, adaUserID, profile.Patch{Visibility: &private})
	require.NoError(t, err)

	_, err = f.svc.ProfileByID(ctx, "someone-else", created.ID)
	requireCode(t, err, apperrors.CodeProfileNotFound)

	p, err := f.svc.ProfileByID(ctx, adaUserID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, p.ID)
}

func TestUpdateProfileByIDOwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.createAda(t)

	position := "Countess"
	institution := "Royal Society"
	_, err := f.svc.UpdateProfileByID(ctx, "", created.ID, OwnerUpdate{Position: &position})
	requireCode(t, err, apperrors.CodeUnauthenticated)

	_, err = f.svc.UpdateProfileByID(ctx, "intruder", created.ID, OwnerUpdate{Position: &position})
	requireCode(t, err, apperrors.CodeForbidden)
	assert.Equal(t, "Unauthorized", err.Error())

	_, err = f.svc.UpdateProfileByID(ctx, adaUserID, "missing", OwnerUpdate{})
	requireCode(t, err, apperrors.CodeProfileNotFound)

	p, err := f.svc.UpdateProfileByID(ctx, adaUserID, created.ID, OwnerUpdate{Position: &position, Institution: &institution})
	require.NoError(t, err)
	assert.Equal(t, "Countess", p.CurrentPosition)
	assert.Equal(t, "Royal Society", p.CurrentInstitution)
	assert.Len(t, p.Publications, 1)
}

func TestDeleteProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.createAda(t)

	err := f.svc.DeleteProfile(ctx, "intruder", created.ID)
	requireCode(t, err, apperrors.CodeForbidden)

	require.NoError(t, f.svc.DeleteProfile(ctx, adaUserID, created.ID))
	_, err = f.svc.ProfileByID(ctx, adaUserID, created.ID)
	requireCode(t, err, apperrors.CodeProfileNotFound)

	err = f.svc.DeleteProfile(ctx, adaUserID, created.ID)
	requireCode(t, err, apperrors.CodeProfileNotFound)
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestUploadPhotoUpdatesProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.createAda(t)

	result, err := f.svc.UploadFile(ctx, adaUserID, Upload{
		Filename:    "portrait.PNG",
		ContentType: "image/png",
		Data:        pngHeader,
	})
	require.NoError(t, err)

	wantURL := "/uploads/" + created.ID + "/" + blobstore.ContentHash(pngHeader) + ".png"
	assert.Equal(t, wantURL, result.URL)
	assert.Equal(t, profile.FileProfilePhoto, result.File.Type)
	assert.Equal(t, "portrait.PNG", result.File.Filename)
	assert.EqualValues(t, len(pngHeader), result.File.Size)

	obj, err := f.blobs.Get(ctx, created.ID+"/"+blobstore.ContentHash(pngHeader)+".png")
	require.NoError(t, err)
	assert.Equal(t, pngHeader, obj.Data)

	p, err := f.svc.ProfileByID(ctx, adaUserID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, wantURL, p.ProfilePhoto)

	files, err := f.store.ListFiles(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)
}

func TestUploadCVKeepsPhoto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.createAda(t)

	result, err := f.svc.UploadFile(ctx, adaUserID, Upload{
		Filename: "cv.pdf",
		Data:     []byte("%PDF-1.7\n"),
		Type:     "cv",
	})
	require.NoError(t, err)
	assert.Equal(t, profile.FileCV, result.File.Type)
	assert.Equal(t, "application/pdf", result.File.Mimetype)

	p, err := f.svc.ProfileByID(ctx, adaUserID, created.ID)
	require.NoError(t, err)
	assert.Empty(t, p.ProfilePhoto)
}

func TestUploadRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.UploadFile(ctx, "", Upload{Data: pngHeader})
	requireCode(t, err, apperrors.CodeUnauthenticated)

	_, err = f.svc.UploadFile(ctx, "nobody", Upload{Data: pngHeader})
	requireCode(t, err, apperrors.CodeProfileNotFound)

	f.createAda(t)
	tests := []struct {
		name    string
		in      Upload
		code    apperrors.Code
		message string
	}{
		{"empty", Upload{Filename: "a.png"}, apperrors.CodeUploadMissing, "No file provided"},
		{"too large", Upload{Filename: "a.png", ContentType: "image/png", Data: make([]byte, MaxUploadBytes+1)}, apperrors.CodeUploadTooLarge, "File too large (max 5MB)"},
		{"photo type", Upload{Filename: "a.gif", ContentType: "image/gif", Data: []byte("GIF89a")}, apperrors.CodeUploadType, "Invalid file type. Only JPEG, PNG, and WebP are allowed."},
		{"unknown type", Upload{Filename: "a.png", Data: pngHeader, Type: "VIDEO"}, apperrors.CodeInvalidEnum, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.UploadFile(ctx, adaUserID, tc.in)
			requireCode(t, err, tc.code)
			if tc.message != "" {
				assert.Equal(t, tc.message, err.Error())
			}
		})
	}
}

func TestUploadExt(t *testing.T) {
	assert.Equal(t, "jpg", uploadExt("image/jpeg"))
	assert.Equal(t, "webp", uploadExt("image/webp"))
	assert.Equal(t, "pdf", uploadExt("application/pdf"))
	assert.Equal(t, "bin", uploadExt("text/html"))
}

func TestUploadTypeComesFromContent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.createAda(t)
	page := []byte("<html><script>alert(document.cookie)</script></html>")

	_, err := f.svc.UploadFile(ctx, adaUserID, Upload{
		Filename:    "evil.html",
		ContentType: "image/png",
		Data:        page,
		Type:        "PROFILE_PHOTO",
	})
	requireCode(t, err, apperrors.CodeUploadType)

	result, err := f.svc.UploadFile(ctx, adaUserID, Upload{
		Filename:    "evil.html",
		ContentType: "text/html",
		Data:        page,
		Type:        "cv",
	})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/"+created.ID+"/"+blobstore.ContentHash(page)+".bin", result.URL)
	assert.Equal(t, "application/octet-stream", result.File.Mimetype)
	assert.Equal(t, "evil.html", result.File.Filename)

	rec := httptest.NewRecorder()
	blobstore.Handler(f.blobs, UploadURLPrefix).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, result.URL, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	// A PNG body wins over a misleading name.
	photo, err := f.svc.UploadFile(ctx, adaUserID, Upload{Filename: "portrait.html", Data: pngHeader})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/"+created.ID+"/"+blobstore.ContentHash(pngHeader)+".png", photo.URL)
}

func TestPreviewWorksUsesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, adaUserID, adaORCID, "Ada Lovelace")
	f.orcid.works = []profile.Publication{{Title: "Sketch of the Analytical Engine", Year: 1843, ORCIDWorkID: "11"}}

	works, err := f.svc.PreviewWorks(ctx, adaUserID)
	require.NoError(t, err)
	require.Len(t, works, 1)

	works, err = f.svc.PreviewWorks(ctx, adaUserID)
	require.NoError(t, err)
	require.Len(t, works, 1)
	assert.Equal(t, 1, f.orcid.worksCalls)
	assert.Equal(t, []string{"token-" + adaUserID}, f.orcid.tokens)
}

func TestPreviewWorksErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.PreviewWorks(ctx, "")
	requireCode(t, err, apperrors.CodeUnauthenticated)

	_, err = f.svc.PreviewWorks(ctx, "ghost")
	requireCode(t, err, apperrors.CodeUserNotFound)

	f.seedUser(t, adaUserID, adaORCID, "Ada Lovelace")
	f.orcid.worksErr = errors.New("ORCID API error: 500")
	_, err = f.svc.PreviewWorks(ctx, adaUserID)
	requireCode(t, err, apperrors.CodeORCIDUnavailable)

	disabled := NewService(f.store, f.users, Config{})
	_, err = disabled.PreviewWorks(ctx, adaUserID)
	requireCode(t, err, apperrors.CodeORCIDUnavailable)
}

func TestSyncORCIDKeepsManualPublications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.createAda(t)

	f.orcid.works = []profile.Publication{
		{Title: "Imported A", Year: 1842, ORCIDWorkID: "1"},
		{Title: "Imported B", Year: 1844, ORCIDWorkID: "2"},
	}
	_, err := f.svc.PublicProfile(ctx, created.Username)
	require.NoError(t, err)

	p, err := f.svc.SyncORCID(ctx, adaUserID)
	require.NoError(t, err)
	require.Len(t, p.Publications, 3)
	require.NotNil(t, p.LastORCIDSync)

	f.orcid.works = f.orcid.works[:1]
	p, err = f.svc.SyncORCID(ctx, adaUserID)
	require.NoError(t, err)
	titles := make([]string, 0, len(p.Publications))
	for _, pub := range p.Publications {
		titles = append(titles, pub.Title)
	}
	assert.ElementsMatch(t, []string{"Notes on the Analytical Engine", "Imported A"}, titles)

	_, cached, err := f.cache.Get(ctx, cache.PublicProfileKey(created.Username))
	require.NoError(t, err)
	assert.False(t, cached)
}

func TestSyncORCIDStoresWorksWithUnusableURL(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createAda(t)

	f.orcid.works = []profile.Publication{
		{Title: "Work A", Year: 2020, ORCIDWorkID: "1", URL: "https://doi.org/10.1/a"},
		{Title: "Work B", Year: 2021, ORCIDWorkID: "2", URL: "doi.org/10.1/b", DOI: "10.1/b"},
	}
	p, err := f.svc.SyncORCID(ctx, adaUserID)
	require.NoError(t, err)

	urls := map[string]string{}
	for _, pub := range p.Publications {
		if pub.ORCIDWorkID != "" {
			urls[pub.Title] = pub.URL
		}
	}
	assert.Equal(t, map[string]string{"Work A": "https://doi.org/10.1/a", "Work B": ""}, urls)
}

func TestDraftPrefillsFromAccountAndORCID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, adaUserID, adaORCID, "Augusta Ada King")

	f.orcid.personErr = errors.New("ORCID API error: 500")
	draft, err := f.svc.Draft(ctx, adaUserID)
	require.NoError(t, err)
	assert.Equal(t, "Augusta", draft.FirstName)
	assert.Equal(t, "Ada King", draft.LastName)
	assert.Equal(t, adaORCID, draft.ORCIDID)

	f.orcid.personErr = nil
	f.orcid.person = orcid.Person{
		GivenNames: "Ada",
		FamilyName: "Lovelace",
		Biography:  "Poetical science.",
		Websites:   []orcid.Website{{Name: "Home", URL: "https://ada.example"}},
	}
	f.orcid.positions = []profile.Position{{Title: "Analyst", Institution: "Engine Works", StartYear: 1842, Current: true}}
	draft, err = f.svc.Draft(ctx, adaUserID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", draft.FirstName)
	assert.Equal(t, "Lovelace", draft.LastName)
	assert.Equal(t, "https://ada.example", draft.Website)
	assert.Equal(t, "Analyst", draft.CurrentPosition)
	require.Len(t, draft.SocialLinks, 1)
}
