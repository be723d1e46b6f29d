package wardroberepo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/ootd-recommender/internal/domain/outfit"
)

// PostgresRepository implements outfit.WardrobeRepository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// ListByOwner returns the owner's clothes in registration order with their attributes.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID int64) (outfit.Wardrobe, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.name, c.category, a.name, a.value
		FROM clothes c
		LEFT JOIN clothes_attributes a ON a.clothes_id = c.id
		WHERE c.owner_id = $1
		ORDER BY c.created_at, c.id, a.position
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		wardrobe outfit.Wardrobe
		index    = make(map[uuid.UUID]int)
	)
	for rows.Next() {
		row, err := scanClothesRow(rows)
		if err != nil {
			return nil, err
		}
		wardrobe = collect(wardrobe, index, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return wardrobe, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

type clothesRow struct {
	id        uuid.UUID
	name      string
	category  string
	attrName  sql.NullString
	attrValue sql.NullString
}

func scanClothesRow(row rowScanner) (clothesRow, error) {
	var r clothesRow
	if err := row.Scan(&r.id, &r.name, &r.category, &r.attrName, &r.attrValue); err != nil {
		return clothesRow{}, err
	}
	return r, nil
}

// collect folds one joined row into the wardrobe, keeping first-seen garment order.
func collect(wardrobe outfit.Wardrobe, index map[uuid.UUID]int, row clothesRow) outfit.Wardrobe {
	pos, ok := index[row.id]
	if !ok {
		wardrobe = append(wardrobe, outfit.Garment{
			ID:       row.id,
			Name:     row.name,
			Category: outfit.Category(row.category),
		})
		pos = len(wardrobe) - 1
		index[row.id] = pos
	}
	if row.attrName.Valid {
		wardrobe[pos].Attributes = append(wardrobe[pos].Attributes, outfit.Attribute{
			Name:  row.attrName.String,
			Value: row.attrValue.String,
		})
	}
	return wardrobe
}

var _ outfit.WardrobeRepository = (*PostgresRepository)(nil)
