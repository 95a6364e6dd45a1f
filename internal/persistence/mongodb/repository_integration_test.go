//go:build integration

package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	mongocontainer "github.com/testcontainers/testcontainers-go/modules/mongodb"

	"example.com/exercisetracker/internal/domain"
)

func TestRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()

	container, err := mongocontainer.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := Connect(ctx, uri, 10*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	repo := NewRepository(client.Database("exercise_tracker_test"))
	require.NoError(t, repo.EnsureIndexes(ctx))

	user, err := repo.CreateUser(ctx, "alice")
	require.NoError(t, err)

	again, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, user.ID, again.ID)

	missing, err := repo.GetUser(ctx, "not-an-object-id")
	require.NoError(t, err)
	require.Nil(t, missing)

	for _, d := range []time.Time{
		time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, time.January, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2023, time.February, 1, 0, 0, 0, 0, time.UTC),
	} {
		_, err := repo.CreateExercise(ctx, domain.Exercise{UserID: user.ID, Description: "swim", Duration: 40, Date: d})
		require.NoError(t, err)
	}

	entries, err := repo.QueryLog(ctx, domain.LogQuery{
		UserID: user.ID,
		From:   time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC),
		To:     time.Date(2023, time.January, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "Sun Jan 01 2023", domain.DisplayDate(entries[0].Date))

	limited, err := repo.QueryLog(ctx, domain.LogQuery{UserID: user.ID, From: domain.Epoch, To: time.Now(), Limit: 2})
	require.NoError(t, err)
	require.Len(t, limited, 2)

	all, err := repo.ListExercises(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.NotEmpty(t, all[0].ID)
}
