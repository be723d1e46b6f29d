package profilerepo

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/ootd-recommender/internal/domain/outfit"
)

// PostgresRepository reads profiles from the users table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// GetProfile fetches the personalization columns of a user.
func (r *PostgresRepository) GetProfile(ctx context.Context, userID int64) (outfit.UserProfile, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, temperature_sensitivity, gender
		FROM users
		WHERE id = $1
		LIMIT 1
	`, userID)
	if err != nil {
		return outfit.UserProfile{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return outfit.UserProfile{}, false, rows.Err()
	}
	profile, err := scanProfile(rows)
	if err != nil {
		return outfit.UserProfile{}, false, err
	}
	return profile, true, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (outfit.UserProfile, error) {
	var (
		profile     outfit.UserProfile
		sensitivity sql.NullInt32
		gender      sql.NullString
	)
	if err := row.Scan(&profile.UserID, &sensitivity, &gender); err != nil {
		return outfit.UserProfile{}, err
	}
	profile.TemperatureSensitivity = outfit.NeutralSensitivity
	if sensitivity.Valid {
		profile.TemperatureSensitivity = int(sensitivity.Int32)
	}
	profile.Gender = gender.String
	return profile, nil
}

var _ outfit.ProfileRepository = (*PostgresRepository)(nil)
