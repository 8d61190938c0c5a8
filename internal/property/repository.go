package property

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/evcraddock/realty/internal/apperr"
)

// SQLiteStore keeps properties in the embedded SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a property store over an opened database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

var _ Store = (*SQLiteStore)(nil)

const selectColumns = `id, slug, title, description, overview, developer, property_type, location,
	city, state, price, area, area_unit, configuration, configurations,
	recommend, featured, new_property, resale, possession, possession_date,
	images, features, created_at, updated_at`

const insertSQL = `INSERT INTO properties (` + selectColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const replaceSQL = `UPDATE properties SET
	slug = ?, title = ?, description = ?, overview = ?, developer = ?, property_type = ?, location = ?,
	city = ?, state = ?, price = ?, area = ?, area_unit = ?, configuration = ?, configurations = ?,
	recommend = ?, featured = ?, new_property = ?, resale = ?, possession = ?, possession_date = ?,
	images = ?, features = ?, updated_at = ?
	WHERE id = ?`

// Insert adds a new property. ID, slug and timestamps must already be set.
func (s *SQLiteStore) Insert(ctx context.Context, p *Property) error {
	arrays, err := encodeArrays(p)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, insertSQL,
		p.ID, p.Slug, p.Title, p.Description, p.Overview, p.Developer, p.PropertyType, p.Location,
		p.Address.City, p.Address.State, p.Price, p.Area, p.AreaUnit, arrays.configuration, arrays.configurations,
		p.Recommend, p.Featured, p.NewProperty, p.Resale, p.Possession, p.PossessionDate,
		arrays.images, arrays.features, p.CreatedAt.UTC(), p.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting property: %w", translateSQLiteErr(err))
	}
	return nil
}

// GetByID returns a property by its ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (*Property, error) {
	return s.getOne(ctx, "id", id)
}

// GetBySlug returns a property by its slug.
func (s *SQLiteStore) GetBySlug(ctx context.Context, slug string) (*Property, error) {
	return s.getOne(ctx, "slug", slug)
}

func (s *SQLiteStore) getOne(ctx context.Context, column, value string) (*Property, error) {
	query := fmt.Sprintf("SELECT %s FROM properties WHERE %s = ?", selectColumns, column)
	p, err := scanProperty(s.db.QueryRowContext(ctx, query, value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("property %s %q: %w", column, value, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying property %s %q: %w", column, value, err)
	}
	return p, nil
}

// List returns every property, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]*Property, error) {
	query := fmt.Sprintf("SELECT %s FROM properties ORDER BY created_at DESC, id DESC", selectColumns)
	return s.query(ctx, query)
}

// ListRecommended returns recommended properties other than excludeID.
func (s *SQLiteStore) ListRecommended(ctx context.Context, excludeID string, limit int) ([]*Property, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM properties WHERE recommend = 1 AND id != ? ORDER BY created_at DESC, id DESC LIMIT ?",
		selectColumns,
	)
	return s.query(ctx, query, excludeID, limit)
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...interface{}) (props []*Property, err error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	props = []*Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning property: %w", err)
		}
		props = append(props, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating properties: %w", err)
	}
	return props, nil
}

// Replace overwrites every mutable field of an existing property.
func (s *SQLiteStore) Replace(ctx context.Context, p *Property) error {
	arrays, err := encodeArrays(p)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, replaceSQL,
		p.Slug, p.Title, p.Description, p.Overview, p.Developer, p.PropertyType, p.Location,
		p.Address.City, p.Address.State, p.Price, p.Area, p.AreaUnit, arrays.configuration, arrays.configurations,
		p.Recommend, p.Featured, p.NewProperty, p.Resale, p.Possession, p.PossessionDate,
		arrays.images, arrays.features, p.UpdatedAt.UTC(),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating property: %w", translateSQLiteErr(err))
	}
	return checkAffected(result, p.ID)
}

// Delete removes a property by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM properties WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting property: %w", err)
	}
	return checkAffected(result, id)
}

// SuggestPrefix narrows candidates in SQL and dedups the matching labels.
func (s *SQLiteStore) SuggestPrefix(ctx context.Context, prefix string, limit int) (labels []string, err error) {
	pattern := escapeLike(strings.ToLower(strings.TrimSpace(prefix))) + "%"
	rows, err := s.db.QueryContext(ctx, `SELECT title, developer, location, city FROM properties
		WHERE lower(title) LIKE ? ESCAPE '\' OR lower(developer) LIKE ? ESCAPE '\'
		   OR lower(location) LIKE ? ESCAPE '\' OR lower(city) LIKE ? ESCAPE '\'
		ORDER BY created_at DESC`,
		pattern, pattern, pattern, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("querying suggestions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	c := newPrefixCollector(prefix, limit)
	for rows.Next() {
		var p Property
		if err := rows.Scan(&p.Title, &p.Developer, &p.Location, &p.Address.City); err != nil {
			return nil, fmt.Errorf("scanning suggestion: %w", err)
		}
		if c.add(suggestFields(&p)...) {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating suggestions: %w", err)
	}
	return c.out, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProperty(s scanner) (*Property, error) {
	var p Property
	var configuration, configurations, images, features string

	err := s.Scan(
		&p.ID, &p.Slug, &p.Title, &p.Description, &p.Overview, &p.Developer, &p.PropertyType, &p.Location,
		&p.Address.City, &p.Address.State, &p.Price, &p.Area, &p.AreaUnit, &configuration, &configurations,
		&p.Recommend, &p.Featured, &p.NewProperty, &p.Resale, &p.Possession, &p.PossessionDate,
		&images, &features, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	for _, col := range []struct {
		name string
		raw  string
		dst  interface{}
	}{
		{"configuration", configuration, &p.Configuration},
		{"configurations", configurations, &p.Configurations},
		{"images", images, &p.Images},
		{"features", features, &p.Features},
	} {
		if col.raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(col.raw), col.dst); err != nil {
			return nil, fmt.Errorf("decoding %s for %s: %w", col.name, p.ID, err)
		}
	}

	p.normalize()
	return &p, nil
}

type encodedArrays struct {
	configuration, configurations, images, features string
}

func encodeArrays(p *Property) (encodedArrays, error) {
	p.normalize()
	var out encodedArrays
	for _, f := range []struct {
		dst *string
		v   interface{}
	}{
		{&out.configuration, p.Configuration},
		{&out.configurations, p.Configurations},
		{&out.images, p.Images},
		{&out.features, p.Features},
	} {
		b, err := json.Marshal(f.v)
		if err != nil {
			return out, fmt.Errorf("encoding property arrays: %w", err)
		}
		*f.dst = string(b)
	}
	return out, nil
}

func checkAffected(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("property %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

func translateSQLiteErr(err error) error {
	var sqlErr sqlite3.Error
	if errors.As(err, &sqlErr) && sqlErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("%v: %w", err, apperr.ErrConflict)
	}
	return err
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
