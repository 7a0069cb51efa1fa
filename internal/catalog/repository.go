package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repositoryTimeout = 5 * time.Second

// Repository persists parts and travel entries in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a catalog repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SearchParts returns parts whose name contains fragment, ignoring case.
func (r *Repository) SearchParts(ctx context.Context, fragment string) ([]Part, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `
SELECT part_id, part_name, part_number, unit_cost, unit_price, part_pic
FROM parts
WHERE part_name ILIKE $1
ORDER BY part_name, part_id;`

	rows, err := r.pool.Query(ctx, query, likePattern(fragment))
	if err != nil {
		return nil, fmt.Errorf("search parts: %w", err)
	}
	defer rows.Close()

	parts := []Part{}
	for rows.Next() {
		var p Part
		if err := rows.Scan(&p.ID, &p.Name, &p.Number, &p.UnitCost, &p.UnitPrice, &p.PictureRef); err != nil {
			return nil, fmt.Errorf("scan part: %w", err)
		}
		parts = append(parts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate parts: %w", err)
	}
	return parts, nil
}

// CreatePart inserts a part and returns it with its assigned id.
func (r *Repository) CreatePart(ctx context.Context, p Part) (Part, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `
INSERT INTO parts (part_name, part_number, unit_cost, unit_price, part_pic)
VALUES ($1, $2, $3, $4, $5)
RETURNING part_id;`

	if err := r.pool.QueryRow(ctx, query, p.Name, p.Number, p.UnitCost, p.UnitPrice, p.PictureRef).Scan(&p.ID); err != nil {
		return Part{}, fmt.Errorf("create part: %w", err)
	}
	return p, nil
}

// UpdatePart overwrites every column of an existing part.
func (r *Repository) UpdatePart(ctx context.Context, p Part) (Part, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `
UPDATE parts
SET part_name = $2, part_number = $3, unit_cost = $4, unit_price = $5, part_pic = $6
WHERE part_id = $1;`

	tag, err := r.pool.Exec(ctx, query, p.ID, p.Name, p.Number, p.UnitCost, p.UnitPrice, p.PictureRef)
	if err != nil {
		return Part{}, fmt.Errorf("update part: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Part{}, ErrPartNotFound
	}
	return p, nil
}

// DeletePart removes a part.
func (r *Repository) DeletePart(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM parts WHERE part_id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete part: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPartNotFound
	}
	return nil
}

// GetPart fetches a single part.
func (r *Repository) GetPart(ctx context.Context, id int64) (Part, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `
SELECT part_id, part_name, part_number, unit_cost, unit_price, part_pic
FROM parts
WHERE part_id = $1;`

	var p Part
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Number, &p.UnitCost, &p.UnitPrice, &p.PictureRef)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Part{}, ErrPartNotFound
		}
		return Part{}, fmt.Errorf("get part: %w", err)
	}
	return p, nil
}

// SearchTravel returns travel entries whose location contains fragment, ignoring case.
func (r *Repository) SearchTravel(ctx context.Context, fragment string) ([]Travel, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `
SELECT id, location, travel_time_hours
FROM travel
WHERE location ILIKE $1
ORDER BY location;`

	rows, err := r.pool.Query(ctx, query, likePattern(fragment))
	if err != nil {
		return nil, fmt.Errorf("search travel: %w", err)
	}
	defer rows.Close()

	entries := []Travel{}
	for rows.Next() {
		var t Travel
		if err := rows.Scan(&t.ID, &t.Location, &t.Hours); err != nil {
			return nil, fmt.Errorf("scan travel: %w", err)
		}
		entries = append(entries, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate travel: %w", err)
	}
	return entries, nil
}

// CreateTravel inserts a travel entry. Locations are unique.
func (r *Repository) CreateTravel(ctx context.Context, t Travel) (Travel, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `
INSERT INTO travel (location, travel_time_hours)
VALUES ($1, $2)
RETURNING id;`

	if err := r.pool.QueryRow(ctx, query, t.Location, t.Hours).Scan(&t.ID); err != nil {
		if isUniqueViolation(err) {
			return Travel{}, ErrTravelExists
		}
		return Travel{}, fmt.Errorf("create travel: %w", err)
	}
	return t, nil
}

// UpdateTravel overwrites an existing travel entry.
func (r *Repository) UpdateTravel(ctx context.Context, t Travel) (Travel, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `UPDATE travel SET location = $2, travel_time_hours = $3 WHERE id = $1;`, t.ID, t.Location, t.Hours)
	if err != nil {
		if isUniqueViolation(err) {
			return Travel{}, ErrTravelExists
		}
		return Travel{}, fmt.Errorf("update travel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Travel{}, ErrTravelNotFound
	}
	return t, nil
}

// DeleteTravel removes a travel entry.
func (r *Repository) DeleteTravel(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM travel WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete travel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTravelNotFound
	}
	return nil
}

// likePattern wraps fragment for a contains match, escaping LIKE wildcards.
func likePattern(fragment string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(fragment)
	return "%" + escaped + "%"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
