package catalog

import (
    "context"
    "errors"

    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the paper stock table the store reads from.
const Schema = `
CREATE TABLE IF NOT EXISTS paper_stocks (
    id           TEXT PRIMARY KEY,
    name         TEXT NOT NULL,
    area_density DOUBLE PRECISION NOT NULL,
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PGStore reads densities from the paper_stocks table.
type PGStore struct {
    db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore { return &PGStore{db: db} }

func (s *PGStore) AreaDensity(ctx context.Context, materialID string) (float64, bool, error) {
    var d float64
    err := s.db.QueryRow(ctx, `SELECT area_density FROM paper_stocks WHERE id = $1`, materialID).Scan(&d)
    if err != nil {
        if errors.Is(err, pgx.ErrNoRows) {
            return 0, false, nil
        }
        return 0, false, err
    }
    return d, true, nil
}

// Upsert stores a material's density.
func (s *PGStore) Upsert(ctx context.Context, id, name string, density float64) error {
    _, err := s.db.Exec(ctx, `
        INSERT INTO paper_stocks (id, name, area_density, updated_at)
        VALUES ($1, $2, $3, now())
        ON CONFLICT (id) DO UPDATE
        SET name = EXCLUDED.name, area_density = EXCLUDED.area_density, updated_at = now()
    `, id, name, density)
    return err
}
