// Package mongodb stores users and exercises as MongoDB documents.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"example.com/exercisetracker/internal/domain"
)

const (
	usersCollection     = "users"
	exercisesCollection = "exercises"
)

type userDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Username string             `bson:"username"`
}

type exerciseDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      string             `bson:"userId"`
	Description string             `bson:"description"`
	Duration    float64            `bson:"duration"`
	Date        time.Time          `bson:"date"`
}

type logDocument struct {
	Description string    `bson:"description"`
	Duration    float64   `bson:"duration"`
	Date        time.Time `bson:"date"`
}

// Repository provides MongoDB-backed persistence for users and exercises.
type Repository struct {
	users     *mongo.Collection
	exercises *mongo.Collection
}

// NewRepository constructs a Repository over the named database.
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{
		users:     db.Collection(usersCollection),
		exercises: db.Collection(exercisesCollection),
	}
}

// Connect dials uri and waits for a primary within timeout.
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(timeout))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// EnsureIndexes creates the indexes backing username lookups and log queries.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	if _, err := r.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "username", Value: 1}},
	}); err != nil {
		return fmt.Errorf("users index: %w", err)
	}
	if _, err := r.exercises.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}},
	}); err != nil {
		return fmt.Errorf("exercises index: %w", err)
	}
	return nil
}

// CreateUser inserts a user document.
func (r *Repository) CreateUser(ctx context.Context, username string) (*domain.User, error) {
	res, err := r.users.InsertOne(ctx, userDocument{Username: username})
	if err != nil {
		return nil, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return &domain.User{ID: id.Hex(), Username: username}, nil
}

// FindByUsername returns the oldest user with an exact username match.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})
	return r.findUser(ctx, bson.D{{Key: "username", Value: username}}, opts)
}

// GetUser retrieves a user by hex id. Malformed ids resolve to nothing.
func (r *Repository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return r.findUser(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (r *Repository) findUser(ctx context.Context, filter bson.D, opts ...*options.FindOneOptions) (*domain.User, error) {
	var doc userDocument
	if err := r.users.FindOne(ctx, filter, opts...).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &domain.User{ID: doc.ID.Hex(), Username: doc.Username}, nil
}

// ListUsers returns users in insertion order.
func (r *Repository) ListUsers(ctx context.Context) ([]domain.User, error) {
	cursor, err := r.users.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, domain.User{ID: doc.ID.Hex(), Username: doc.Username})
	}
	return users, nil
}

// CreateExercise inserts an exercise document.
func (r *Repository) CreateExercise(ctx context.Context, exercise domain.Exercise) (*domain.Exercise, error) {
	exercise.Date = domain.StorageDate(exercise.Date)
	res, err := r.exercises.InsertOne(ctx, exerciseDocument{
		UserID:      exercise.UserID,
		Description: exercise.Description,
		Duration:    exercise.Duration,
		Date:        exercise.Date,
	})
	if err != nil {
		return nil, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	exercise.ID = id.Hex()
	return &exercise, nil
}

// ListExercises returns every exercise for the user in date order.
func (r *Repository) ListExercises(ctx context.Context, userID string) ([]domain.Exercise, error) {
	cursor, err := r.exercises.Find(ctx,
		bson.D{{Key: "userId", Value: userID}},
		options.Find().SetSort(dateOrder()))
	if err != nil {
		return nil, err
	}
	var docs []exerciseDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	exercises := make([]domain.Exercise, 0, len(docs))
	for _, doc := range docs {
		exercises = append(exercises, domain.Exercise{
			ID:          doc.ID.Hex(),
			UserID:      doc.UserID,
			Description: doc.Description,
			Duration:    doc.Duration,
			Date:        domain.StorageDate(doc.Date),
		})
	}
	return exercises, nil
}

// QueryLog runs the range-bounded, limited, projected find for query.
func (r *Repository) QueryLog(ctx context.Context, query domain.LogQuery) ([]domain.LogEntry, error) {
	cursor, err := r.exercises.Find(ctx, logFilter(query), logFindOptions(query))
	if err != nil {
		return nil, err
	}
	var docs []logDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	entries := make([]domain.LogEntry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, domain.LogEntry{
			Description: doc.Description,
			Duration:    doc.Duration,
			Date:        domain.StorageDate(doc.Date),
		})
	}
	return entries, nil
}

func logFilter(query domain.LogQuery) bson.D {
	return bson.D{
		{Key: "userId", Value: query.UserID},
		{Key: "date", Value: bson.D{
			{Key: "$gte", Value: query.From},
			{Key: "$lt", Value: query.To},
		}},
	}
}

func logFindOptions(query domain.LogQuery) *options.FindOptions {
	opts := options.Find().
		SetSort(dateOrder()).
		SetProjection(bson.D{
			{Key: "_id", Value: 0},
			{Key: "description", Value: 1},
			{Key: "duration", Value: 1},
			{Key: "date", Value: 1},
		})
	if query.Bounded() {
		opts.SetLimit(int64(query.Limit))
	}
	return opts
}

func dateOrder() bson.D {
	return bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}}
}
