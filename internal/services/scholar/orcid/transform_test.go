package orcid

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/louisbranch/scholarflow/internal/services/scholar/profile"
)

func decodeWork(t *testing.T, raw string) Work {
	t.Helper()
	var work Work
	require.NoError(t, json.Unmarshal([]byte(raw), &work))
	return work
}

func TestTransformWorkFull(t *testing.T) {
	work := decodeWork(t, `{
		"put-code": 12345,
		"title": {"title": {"value": "Notes on the Analytical Engine"}},
		"journal-title": {"value": "Scientific Memoirs"},
		"short-description": "A translation with notes.",
		"publication-date": {"year": {"value": "1843"}},
		"external-ids": {"external-id": [
			{"external-id-type": "isbn", "external-id-value": "123"},
			{"external-id-type": "doi", "external-id-value": "10.1000/xyz", "external-id-url": {"value": "https://example.org/xyz"}}
		]},
		"type": "journal-article",
		"contributors": {"contributor": [
			{"credit-name": {"value": "Ada Lovelace"}},
			{"credit-name": null}
		]}
	}`)

	pub := transformWork(work, 2026)
	assert.Equal(t, "orcid-12345", pub.ID)
	assert.Equal(t, "12345", pub.ORCIDWorkID)
	assert.Equal(t, "Notes on the Analytical Engine", pub.Title)
	assert.Equal(t, "Scientific Memoirs", pub.Journal)
	assert.Equal(t, 1843, pub.Year)
	assert.Equal(t, "10.1000/xyz", pub.DOI)
	assert.Equal(t, "https://example.org/xyz", pub.URL)
	assert.Equal(t, []string{"Ada Lovelace"}, pub.Authors)
	assert.Equal(t, "A translation with notes.", pub.Abstract)
	assert.Equal(t, profile.PublicationJournalArticle, pub.Type)
	assert.NotNil(t, pub.Keywords)
}

func TestTransformWorkDefaults(t *testing.T) {
	work := decodeWork(t, `{"put-code": 9, "external-ids": {"external-id": [
		{"external-id-type": "doi", "external-id-value": "10.1/abc"}
	]}}`)

	pub := transformWork(work, 2026)
	assert.Equal(t, "Untitled", pub.Title)
	assert.Equal(t, 2026, pub.Year)
	assert.Equal(t, "https://doi.org/10.1/abc", pub.URL)
	assert.Empty(t, pub.Authors)
	assert.NotNil(t, pub.Authors)
	assert.Equal(t, profile.PublicationOther, pub.Type)
}

func TestTransformWorkReplacesSchemelessURL(t *testing.T) {
	work := decodeWork(t, `{"put-code": 10, "external-ids": {"external-id": [
		{"external-id-type": "doi", "external-id-value": " 10.1/b ", "external-id-url": {"value": "doi.org/10.1/b"}}
	]}}`)
	pub := transformWork(work, 2026)
	assert.Equal(t, "10.1/b", pub.DOI)
	assert.Equal(t, "https://doi.org/10.1/b", pub.URL)

	work = decodeWork(t, `{"put-code": 11, "external-ids": {"external-id": [
		{"external-id-type": "doi", "external-id-value": "", "external-id-url": {"value": "javascript:alert(1)"}}
	]}}`)
	assert.Empty(t, transformWork(work, 2026).URL)
}

func TestMapWorkType(t *testing.T) {
	cases := map[string]profile.PublicationType{
		"journal-article":  profile.PublicationJournalArticle,
		"book":             profile.PublicationBook,
		"book-chapter":     profile.PublicationBookChapter,
		"conference-paper": profile.PublicationConferencePaper,
		"working-paper":    profile.PublicationPreprint,
		"preprint":         profile.PublicationPreprint,
		"dissertation":     profile.PublicationOther,
		"":                 profile.PublicationOther,
	}
	for in, want := range cases {
		assert.Equal(t, want, MapWorkType(in), in)
	}
}

func TestFormatAndValidateID(t *testing.T) {
	assert.Equal(t, "0000-0002-1825-0097", FormatID("0000000218250097"))
	assert.True(t, IsValidID("0000-0002-1825-009X"))
	assert.False(t, IsValidID("0000000218250097"))
}
