// Package domain defines the business logic for the exercise tracker.
package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"example.com/exercisetracker/internal/observability"
)

// UserRepository captures user persistence operations. FindByUsername and Get return nil, nil
// when nothing matches.
type UserRepository interface {
	CreateUser(ctx context.Context, username string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

// ExerciseRepository captures exercise persistence operations.
type ExerciseRepository interface {
	CreateExercise(ctx context.Context, exercise Exercise) (*Exercise, error)
	ListExercises(ctx context.Context, userID string) ([]Exercise, error)
	QueryLog(ctx context.Context, query LogQuery) ([]LogEntry, error)
}

// Repository is the full store surface the service depends on.
type Repository interface {
	UserRepository
	ExerciseRepository
}

// Option configures optional behaviour for the Service.
type Option func(*Service)

// WithClock overrides the clock used to resolve "today".
func WithClock(clock Clock) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// WithLogger overrides the logger used to report store failures.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// Service orchestrates user and exercise workflows.
type Service struct {
	repo   Repository
	clock  Clock
	logger logrus.FieldLogger
}

// NewService constructs a Service.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		clock:  SystemClock,
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the service clock's current instant.
func (s *Service) Now() time.Time {
	return s.clock()
}

// CreateOrGetUser returns the user named username, creating it when absent.
func (s *Service) CreateOrGetUser(ctx context.Context, username string) (*User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, ValidationError("username is required", ErrUsernameRequired)
	}

	existing, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, asStoreError("find user by username", err)
	}
	if existing != nil {
		return existing, nil
	}

	created, err := s.repo.CreateUser(ctx, username)
	if err != nil {
		return nil, asStoreError("create user", err)
	}
	s.logger.WithFields(logrus.Fields{"user_id": created.ID, "username": created.Username}).Info("user created")
	observability.RecordUserCreated(s.clock())
	return created, nil
}

// GetUser fetches a user by id.
func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, asStoreError("get user", err)
	}
	if user == nil {
		return nil, NotFoundError("user not found", ErrUserNotFound)
	}
	return user, nil
}

// ListUsers returns every known user.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, asStoreError("list users", err)
	}
	if users == nil {
		users = []User{}
	}
	return users, nil
}

// LogExerciseInput captures a validated exercise payload from the API layer. Date is the raw
// client value and may be empty or unparseable.
type LogExerciseInput struct {
	UserID      string
	Description string
	Duration    float64
	Date        string
}

// LogExercise appends an exercise for an existing user.
func (s *Service) LogExercise(ctx context.Context, input LogExerciseInput) (*LoggedExercise, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, ValidationError("user id is required", nil)
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, ValidationError("description is required", nil)
	}

	user, err := s.GetUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.CreateExercise(ctx, Exercise{
		UserID:      user.ID,
		Description: input.Description,
		Duration:    input.Duration,
		Date:        NormalizeDate(input.Date, s.clock()),
	})
	if err != nil {
		return nil, asStoreError("create exercise", err)
	}
	observability.RecordExerciseLogged(s.clock())

	return &LoggedExercise{User: *user, Exercise: *created}, nil
}

// ListExercises returns every exercise for the user without range or limit filtering.
func (s *Service) ListExercises(ctx context.Context, userID string) ([]Exercise, error) {
	exercises, err := s.repo.ListExercises(ctx, userID)
	if err != nil {
		return nil, asStoreError("list exercises", err)
	}
	if exercises == nil {
		exercises = []Exercise{}
	}
	return exercises, nil
}

// QueryLogs runs a log query and shapes the result. An unknown user is not an error here.
func (s *Service) QueryLogs(ctx context.Context, query LogQuery) (*ExerciseLog, error) {
	user, err := s.repo.GetUser(ctx, query.UserID)
	if err != nil {
		return nil, asStoreError("get user", err)
	}

	entries, err := s.repo.QueryLog(ctx, query)
	if err != nil {
		return nil, asStoreError("query exercise log", err)
	}
	if query.Bounded() && len(entries) > query.Limit {
		entries = entries[:query.Limit]
	}
	if entries == nil {
		entries = []LogEntry{}
	}

	return &ExerciseLog{
		User:  user,
		Count: len(entries),
		Log:   entries,
	}, nil
}

func asStoreError(op string, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return StoreError(op+" failed", err)
}
