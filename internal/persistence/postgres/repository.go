package postgres

import (
	"context"
	_ "embed"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/exercisetracker/internal/domain"
)

//go:embed schema.sql
var schema string

// Repository provides Postgres-backed persistence for users and exercises.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Connect opens a pool and pings it within timeout.
func Connect(ctx context.Context, url string, timeout time.Duration) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// EnsureSchema creates the users and exercises tables when they do not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, schema)
	return err
}

// CreateUser inserts a new user row.
func (r *Repository) CreateUser(ctx context.Context, username string) (*domain.User, error) {
	user := domain.User{ID: uuid.NewString(), Username: username}
	if _, err := r.pool.Exec(ctx, `INSERT INTO users (id, username) VALUES ($1, $2)`, user.ID, user.Username); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername returns the oldest user with an exact username match.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	const query = `SELECT id::text, username FROM users WHERE username=$1 ORDER BY created_at, id LIMIT 1`
	return r.scanUser(r.pool.QueryRow(ctx, query, username))
}

// GetUser retrieves a user by id. Ids that are not UUIDs resolve to nothing.
func (r *Repository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	const query = `SELECT id::text, username FROM users WHERE id=$1`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *Repository) scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(&user.ID, &user.Username); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers returns users in creation order.
func (r *Repository) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT id::text, username FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Username); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// CreateExercise inserts an immutable exercise row.
func (r *Repository) CreateExercise(ctx context.Context, exercise domain.Exercise) (*domain.Exercise, error) {
	exercise.ID = uuid.NewString()
	exercise.Date = domain.StorageDate(exercise.Date)

	const stmt = `INSERT INTO exercises (id, user_id, description, duration, date) VALUES ($1,$2,$3,$4,$5)`
	if _, err := r.pool.Exec(ctx, stmt,
		exercise.ID,
		exercise.UserID,
		exercise.Description,
		exercise.Duration,
		exercise.Date,
	); err != nil {
		return nil, err
	}
	return &exercise, nil
}

// ListExercises returns every exercise for the user in date order.
func (r *Repository) ListExercises(ctx context.Context, userID string) ([]domain.Exercise, error) {
	const query = `SELECT id::text, user_id, description, duration, date
        FROM exercises WHERE user_id=$1 ORDER BY date, created_at, id`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exercises := make([]domain.Exercise, 0)
	for rows.Next() {
		var e domain.Exercise
		if err := rows.Scan(&e.ID, &e.UserID, &e.Description, &e.Duration, &e.Date); err != nil {
			return nil, err
		}
		e.Date = domain.StorageDate(e.Date)
		exercises = append(exercises, e)
	}
	return exercises, rows.Err()
}

// QueryLog selects the projected log entries for query.
func (r *Repository) QueryLog(ctx context.Context, query domain.LogQuery) ([]domain.LogEntry, error) {
	args := []interface{}{query.UserID, query.From, query.To}
	sql := `SELECT description, duration, date
        FROM exercises WHERE user_id=$1 AND date >= $2 AND date < $3
        ORDER BY date, created_at, id`
	if query.Bounded() {
		sql += ` LIMIT $4`
		args = append(args, query.Limit)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.LogEntry, 0)
	for rows.Next() {
		var entry domain.LogEntry
		if err := rows.Scan(&entry.Description, &entry.Duration, &entry.Date); err != nil {
			return nil, err
		}
		entry.Date = domain.StorageDate(entry.Date)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
