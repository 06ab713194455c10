package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/louisbranch/scholarflow/internal/platform/id"
	"github.com/louisbranch/scholarflow/internal/services/scholar/profile"
	"github.com/louisbranch/scholarflow/internal/services/scholar/storage"
)

func entryID(value string) (string, error) {
	if value = strings.TrimSpace(value); value != "" {
		return value, nil
	}
	generated, err := id.NewID()
	if err != nil {
		return "", fmt.Errorf("generate entry id: %w", err)
	}
	return generated, nil
}

func deleteCollections(ctx context.Context, exec execContexter, profileID string, replace storage.Replace) error {
	tables := []struct {
		selected bool
		name     string
	}{
		{replace.Publications, "publications"},
		{replace.Education, "education"},
		{replace.Positions, "positions"},
		{replace.Awards, "awards"},
		{replace.Grants, "grants"},
		{replace.SocialLinks, "social_links"},
	}
	for _, table := range tables {
		if !table.selected {
			continue
		}
		if _, err := exec.ExecContext(ctx, `DELETE FROM `+table.name+` WHERE profile_id = ?`, profileID); err != nil {
			return fmt.Errorf("clear %s: %w", table.name, err)
		}
	}
	return nil
}

func insertCollections(ctx context.Context, exec execContexter, p profile.Profile, replace storage.Replace) error {
	if replace.Publications {
		if err := insertPublications(ctx, exec, p.ID, p.Publications, 0); err != nil {
			return err
		}
	}
	if replace.Education {
		for i, edu := range p.Education {
			entry, err := entryID(edu.ID)
			if err != nil {
				return err
			}
			if _, err := exec.ExecContext(ctx,
				`INSERT INTO education (profile_id, id, sort_order, institution, degree, field, start_year, end_year, current, description)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				p.ID, entry, i, edu.Institution, edu.Degree, edu.Field, edu.StartYear,
				toNullInt(edu.EndYear), boolToInt(edu.Current), edu.Description,
			); err != nil {
				return fmt.Errorf("insert education: %w", err)
			}
		}
	}
	if replace.Positions {
		for i, pos := range p.Positions {
			entry, err := entryID(pos.ID)
			if err != nil {
				return err
			}
			if _, err := exec.ExecContext(ctx,
				`INSERT INTO positions (profile_id, id, sort_order, title, institution, department, start_year, end_year, current, description)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				p.ID, entry, i, pos.Title, pos.Institution, pos.Department, pos.StartYear,
				toNullInt(pos.EndYear), boolToInt(pos.Current), pos.Description,
			); err != nil {
				return fmt.Errorf("insert position: %w", err)
			}
		}
	}
	if replace.Awards {
		for i, award := range p.Awards {
			entry, err := entryID(award.ID)
			if err != nil {
				return err
			}
			if _, err := exec.ExecContext(ctx,
				`INSERT INTO awards (profile_id, id, sort_order, title, organization, year, description, amount)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				p.ID, entry, i, award.Title, award.Organization, award.Year, award.Description, award.Amount,
			); err != nil {
				return fmt.Errorf("insert award: %w", err)
			}
		}
	}
	if replace.Grants {
		for i, grant := range p.Grants {
			entry, err := entryID(grant.ID)
			if err != nil {
				return err
			}
			if _, err := exec.ExecContext(ctx,
				`INSERT INTO grants (profile_id, id, sort_order, title, agency, role, start_year, end_year, amount, status, description)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				p.ID, entry, i, grant.Title, grant.Agency, grant.Role.Storage(), grant.StartYear,
				toNullInt(grant.EndYear), grant.Amount, grant.Status.Storage(), grant.Description,
			); err != nil {
				return fmt.Errorf("insert grant: %w", err)
			}
		}
	}
	if replace.SocialLinks {
		for i, link := range p.SocialLinks {
			entry, err := entryID(link.ID)
			if err != nil {
				return err
			}
			if _, err := exec.ExecContext(ctx,
				`INSERT INTO social_links (profile_id, id, sort_order, platform, url, display_name)
				VALUES (?, ?, ?, ?, ?, ?)`,
				p.ID, entry, i, link.Platform, link.URL, link.DisplayName,
			); err != nil {
				return fmt.Errorf("insert social link: %w", err)
			}
		}
	}
	return nil
}

func insertPublications(ctx context.Context, exec execContexter, profileID string, publications []profile.Publication, offset int) error {
	for i, pub := range publications {
		entry, err := entryID(pub.ID)
		if err != nil {
			return err
		}
		authors, err := encodeStrings(pub.Authors)
		if err != nil {
			return err
		}
		keywords, err := encodeStrings(pub.Keywords)
		if err != nil {
			return err
		}
		pubType := pub.Type
		if pubType == "" {
			pubType = profile.PublicationJournalArticle
		}
		if _, err := exec.ExecContext(ctx,
			`INSERT INTO publications (profile_id, id, sort_order, title, authors_json, journal, year, doi, url,
				citation_count, type, abstract, keywords_json, orcid_work_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			profileID, entry, offset+i, pub.Title, authors, pub.Journal, pub.Year, pub.DOI, pub.URL,
			toNullInt(pub.CitationCount), pubType.Storage(), pub.Abstract, keywords, pub.ORCIDWorkID,
		); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("insert publication %q: duplicate id", entry)
			}
			return fmt.Errorf("insert publication: %w", err)
		}
	}
	return nil
}

func encodeStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(data), nil
}

func decodeStrings(raw string) ([]string, error) {
	values := []string{}
	if strings.TrimSpace(raw) == "" {
		return values, nil
	}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return values, nil
}

// loadCollections fills every collection of p in display order.
func loadCollections(ctx context.Context, q queryContexter, p *profile.Profile) error {
	var err error
	if p.Publications, err = loadPublications(ctx, q, p.ID); err != nil {
		return err
	}
	if p.Education, err = loadEducation(ctx, q, p.ID); err != nil {
		return err
	}
	if p.Positions, err = loadPositions(ctx, q, p.ID); err != nil {
		return err
	}
	if p.Awards, err = loadAwards(ctx, q, p.ID); err != nil {
		return err
	}
	if p.Grants, err = loadGrants(ctx, q, p.ID); err != nil {
		return err
	}
	if p.SocialLinks, err = loadSocialLinks(ctx, q, p.ID); err != nil {
		return err
	}
	return nil
}

func loadPublications(ctx context.Context, q queryContexter, profileID string) ([]profile.Publication, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, title, authors_json, journal, year, doi, url, citation_count, type, abstract, keywords_json, orcid_work_id
		FROM publications WHERE profile_id = ? ORDER BY year DESC, sort_order`, profileID)
	if err != nil {
		return nil, fmt.Errorf("list publications: %w", err)
	}
	defer rows.Close()

	out := []profile.Publication{}
	for rows.Next() {
		var (
			pub                    profile.Publication
			authors, keywords, typ string
			citations              sql.NullInt64
		)
		if err := rows.Scan(&pub.ID, &pub.Title, &authors, &pub.Journal, &pub.Year, &pub.DOI, &pub.URL,
			&citations, &typ, &pub.Abstract, &keywords, &pub.ORCIDWorkID); err != nil {
			return nil, fmt.Errorf("scan publication: %w", err)
		}
		if pub.Authors, err = decodeStrings(authors); err != nil {
			return nil, err
		}
		if pub.Keywords, err = decodeStrings(keywords); err != nil {
			return nil, err
		}
		if pub.Type, err = profile.ParsePublicationType(typ); err != nil {
			return nil, fmt.Errorf("decode publication type: %w", err)
		}
		pub.CitationCount = fromNullInt(citations)
		out = append(out, pub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate publications: %w", err)
	}
	return out, nil
}

func loadEducation(ctx context.Context, q queryContexter, profileID string) ([]profile.Education, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, institution, degree, field, start_year, end_year, current, description
		FROM education WHERE profile_id = ? ORDER BY start_year DESC, sort_order`, profileID)
	if err != nil {
		return nil, fmt.Errorf("list education: %w", err)
	}
	defer rows.Close()

	out := []profile.Education{}
	for rows.Next() {
		var (
			edu     profile.Education
			endYear sql.NullInt64
			current int
		)
		if err := rows.Scan(&edu.ID, &edu.Institution, &edu.Degree, &edu.Field, &edu.StartYear,
			&endYear, &current, &edu.Description); err != nil {
			return nil, fmt.Errorf("scan education: %w", err)
		}
		edu.EndYear = fromNullInt(endYear)
		edu.Current = current != 0
		out = append(out, edu)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate education: %w", err)
	}
	return out, nil
}

func loadPositions(ctx context.Context, q queryContexter, profileID string) ([]profile.Position, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, title, institution, department, start_year, end_year, current, description
		FROM positions WHERE profile_id = ? ORDER BY start_year DESC, sort_order`, profileID)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	defer rows.Close()

	out := []profile.Position{}
	for rows.Next() {
		var (
			pos     profile.Position
			endYear sql.NullInt64
			current int
		)
		if err := rows.Scan(&pos.ID, &pos.Title, &pos.Institution, &pos.Department, &pos.StartYear,
			&endYear, &current, &pos.Description); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		pos.EndYear = fromNullInt(endYear)
		pos.Current = current != 0
		out = append(out, pos)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate positions: %w", err)
	}
	return out, nil
}

func loadAwards(ctx context.Context, q queryContexter, profileID string) ([]profile.Award, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, title, organization, year, description, amount
		FROM awards WHERE profile_id = ? ORDER BY year DESC, sort_order`, profileID)
	if err != nil {
		return nil, fmt.Errorf("list awards: %w", err)
	}
	defer rows.Close()

	out := []profile.Award{}
	for rows.Next() {
		var award profile.Award
		if err := rows.Scan(&award.ID, &award.Title, &award.Organization, &award.Year,
			&award.Description, &award.Amount); err != nil {
			return nil, fmt.Errorf("scan award: %w", err)
		}
		out = append(out, award)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate awards: %w", err)
	}
	return out, nil
}

func loadGrants(ctx context.Context, q queryContexter, profileID string) ([]profile.Grant, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, title, agency, role, start_year, end_year, amount, status, description
		FROM grants WHERE profile_id = ? ORDER BY start_year DESC, sort_order`, profileID)
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	defer rows.Close()

	out := []profile.Grant{}
	for rows.Next() {
		var (
			grant        profile.Grant
			role, status string
			endYear      sql.NullInt64
		)
		if err := rows.Scan(&grant.ID, &grant.Title, &grant.Agency, &role, &grant.StartYear,
			&endYear, &grant.Amount, &status, &grant.Description); err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		if grant.Role, err = profile.ParseGrantRole(role); err != nil {
			return nil, fmt.Errorf("decode grant role: %w", err)
		}
		if grant.Status, err = profile.ParseGrantStatus(status); err != nil {
			return nil, fmt.Errorf("decode grant status: %w", err)
		}
		grant.EndYear = fromNullInt(endYear)
		out = append(out, grant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grants: %w", err)
	}
	return out, nil
}

func loadSocialLinks(ctx context.Context, q queryContexter, profileID string) ([]profile.SocialLink, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, platform, url, display_name
		FROM social_links WHERE profile_id = ? ORDER BY sort_order`, profileID)
	if err != nil {
		return nil, fmt.Errorf("list social links: %w", err)
	}
	defer rows.Close()

	out := []profile.SocialLink{}
	for rows.Next() {
		var link profile.SocialLink
		if err := rows.Scan(&link.ID, &link.Platform, &link.URL, &link.DisplayName); err != nil {
			return nil, fmt.Errorf("scan social link: %w", err)
		}
		out = append(out, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate social links: %w", err)
	}
	return out, nil
}
