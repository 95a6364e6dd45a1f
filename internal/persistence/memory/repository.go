// Package memory keeps users and exercises in process memory for local development and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"example.com/exercisetracker/internal/domain"
)

// Repository implements domain.Repository over maps guarded by a RWMutex.
type Repository struct {
	mu        sync.RWMutex
	users     map[string]domain.User
	userOrder []string
	exercises []domain.Exercise
}

// NewRepository constructs an empty Repository.
func NewRepository() *Repository {
	return &Repository{
		users: make(map[string]domain.User),
	}
}

// CreateUser implements domain.UserRepository.
func (r *Repository) CreateUser(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user := domain.User{ID: uuid.NewString(), Username: username}
	r.users[user.ID] = user
	r.userOrder = append(r.userOrder, user.ID)
	return &user, nil
}

// FindByUsername returns the first user created with username.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.userOrder {
		if user := r.users[id]; user.Username == username {
			return &user, nil
		}
	}
	return nil, nil
}

// GetUser returns user by id.
func (r *Repository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// ListUsers returns users in creation order.
func (r *Repository) ListUsers(ctx context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.User, 0, len(r.userOrder))
	for _, id := range r.userOrder {
		out = append(out, r.users[id])
	}
	return out, nil
}

// CreateExercise implements domain.ExerciseRepository.
func (r *Repository) CreateExercise(ctx context.Context, exercise domain.Exercise) (*domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	exercise.ID = uuid.NewString()
	exercise.Date = domain.StorageDate(exercise.Date)
	r.exercises = append(r.exercises, exercise)
	return &exercise, nil
}

// ListExercises returns every exercise for the user in date order.
func (r *Repository) ListExercises(ctx context.Context, userID string) ([]domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Exercise, 0)
	for _, exercise := range r.exercises {
		if exercise.UserID == userID {
			out = append(out, exercise)
		}
	}
	sortByDate(out)
	return out, nil
}

// QueryLog applies the range and limit of query.
func (r *Repository) QueryLog(ctx context.Context, query domain.LogQuery) ([]domain.LogEntry, error) {
	r.mu.RLock()
	matched := make([]domain.Exercise, 0)
	for _, exercise := range r.exercises {
		if query.Matches(exercise) {
			matched = append(matched, exercise)
		}
	}
	r.mu.RUnlock()

	sortByDate(matched)
	if query.Bounded() && len(matched) > query.Limit {
		matched = matched[:query.Limit]
	}

	entries := make([]domain.LogEntry, 0, len(matched))
	for _, exercise := range matched {
		entries = append(entries, domain.LogEntry{
			Description: exercise.Description,
			Duration:    exercise.Duration,
			Date:        exercise.Date,
		})
	}
	return entries, nil
}

// sortByDate orders by date, keeping insertion order for equal dates.
func sortByDate(exercises []domain.Exercise) {
	sort.SliceStable(exercises, func(i, j int) bool {
		return exercises[i].Date.Before(exercises[j].Date)
	})
}
