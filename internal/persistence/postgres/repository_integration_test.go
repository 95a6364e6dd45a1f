//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"example.com/exercisetracker/internal/domain"
)

func TestRepositoryQueryLogHonoursRangeAndLimit(t *testing.T) {
	ctx := context.Background()
	repo := startRepository(t, ctx)

	user, err := repo.CreateUser(ctx, "alice")
	require.NoError(t, err)

	found, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, user.ID, found.ID)

	for _, d := range []time.Time{
		time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, time.January, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2023, time.February, 1, 0, 0, 0, 0, time.UTC),
	} {
		_, err := repo.CreateExercise(ctx, domain.Exercise{UserID: user.ID, Description: "run", Duration: 25, Date: d})
		require.NoError(t, err)
	}

	entries, err := repo.QueryLog(ctx, domain.LogQuery{
		UserID: user.ID,
		From:   time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC),
		To:     time.Date(2023, time.February, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "Sun Jan 15 2023", domain.DisplayDate(entries[1].Date))

	limited, err := repo.QueryLog(ctx, domain.LogQuery{UserID: user.ID, From: domain.Epoch, To: time.Now(), Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)

	all, err := repo.ListExercises(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestRepositoryGetUserIgnoresMalformedIDs(t *testing.T) {
	ctx := context.Background()
	repo := startRepository(t, ctx)

	user, err := repo.GetUser(ctx, "not-a-uuid")
	require.NoError(t, err)
	require.Nil(t, user)
}

func startRepository(t *testing.T, ctx context.Context) *Repository {
	t.Helper()

	pg, err := postgrescontainer.Run(ctx, "postgres:16-alpine",
		postgrescontainer.WithDatabase("exercise_tracker"),
		postgrescontainer.WithUsername("tracker"),
		postgrescontainer.WithPassword("tracker"),
		postgrescontainer.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, waitForDatabase(ctx, connStr))

	pool, err := Connect(ctx, connStr, 5*time.Second)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repo := NewRepository(pool)
	require.NoError(t, repo.EnsureSchema(ctx))
	return repo
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}
