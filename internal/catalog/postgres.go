package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository reads listings from the properties table.
type Repository struct {
	db querier
}

// NewRepository creates a catalog repository backed by a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("catalog: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithQuerier allows injecting mocks for tests.
func NewRepositoryWithQuerier(q querier) *Repository {
	if q == nil {
		panic("catalog: querier required")
	}
	return &Repository{db: q}
}

const propertyColumns = `id, title, location, price, area_sq_ft, key_amenities`

// likeEscaper makes location text match literally inside an ILIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// FindMatches returns active listings for the criteria, cheapest first.
func (r *Repository) FindMatches(ctx context.Context, criteria Criteria) ([]Property, error) {
	var (
		conds = []string{"active = TRUE"}
		args  []any
	)
	if criteria.Interest != "" {
		args = append(args, string(criteria.Interest))
		conds = append(conds, fmt.Sprintf("interest = $%d", len(args)))
	}
	if loc := strings.TrimSpace(criteria.Location); loc != "" {
		args = append(args, "%"+likeEscaper.Replace(loc)+"%")
		conds = append(conds, fmt.Sprintf(`location ILIKE $%d ESCAPE '\'`, len(args)))
	}
	if criteria.MaxBudget > 0 {
		args = append(args, criteria.MaxBudget)
		conds = append(conds, fmt.Sprintf("price <= $%d", len(args)))
	}
	args = append(args, criteria.limit())
	query := fmt.Sprintf(`SELECT %s FROM properties WHERE %s ORDER BY price ASC, id ASC LIMIT $%d`,
		propertyColumns, strings.Join(conds, " AND "), len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to query matches: %w", err)
	}
	defer rows.Close()

	var out []Property
	for rows.Next() {
		var p Property
		if err := rows.Scan(&p.ID, &p.Title, &p.Location, &p.Price, &p.AreaSqFt, &p.KeyAmenities); err != nil {
			return nil, fmt.Errorf("catalog: failed to scan property: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: failed to iterate matches: %w", err)
	}
	return out, nil
}

// Get loads a single listing by id.
func (r *Repository) Get(ctx context.Context, id string) (*Property, error) {
	var p Property
	err := r.db.QueryRow(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id = $1`, id).
		Scan(&p.ID, &p.Title, &p.Location, &p.Price, &p.AreaSqFt, &p.KeyAmenities)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to load property: %w", err)
	}
	return &p, nil
}

// Upsert inserts or replaces a listing. Used by seeding and admin tooling.
func (r *Repository) Upsert(ctx context.Context, interest Interest, p Property) error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("catalog: property id required")
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO properties (id, interest, title, location, price, area_sq_ft, key_amenities, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
		ON CONFLICT (id) DO UPDATE SET
			interest = EXCLUDED.interest,
			title = EXCLUDED.title,
			location = EXCLUDED.location,
			price = EXCLUDED.price,
			area_sq_ft = EXCLUDED.area_sq_ft,
			key_amenities = EXCLUDED.key_amenities,
			active = TRUE
	`, p.ID, string(interest), p.Title, p.Location, p.Price, p.AreaSqFt, p.KeyAmenities)
	if err != nil {
		return fmt.Errorf("catalog: failed to upsert property: %w", err)
	}
	return nil
}
