package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/exercisetracker/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestQueryLogAppliesRangeOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	user, err := repo.CreateUser(ctx, "alice")
	require.NoError(t, err)
	other, err := repo.CreateUser(ctx, "bob")
	require.NoError(t, err)

	for _, e := range []domain.Exercise{
		{UserID: user.ID, Description: "swim", Duration: 30, Date: day(2023, time.January, 20)},
		{UserID: user.ID, Description: "run", Duration: 20, Date: day(2023, time.January, 10)},
		{UserID: user.ID, Description: "bike", Duration: 45, Date: day(2023, time.February, 1)},
		{UserID: other.ID, Description: "row", Duration: 15, Date: day(2023, time.January, 12)},
	} {
		_, err := repo.CreateExercise(ctx, e)
		require.NoError(t, err)
	}

	entries, err := repo.QueryLog(ctx, domain.LogQuery{
		UserID: user.ID,
		From:   day(2023, time.January, 10),
		To:     day(2023, time.February, 1),
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "run", entries[0].Description)
	require.Equal(t, "swim", entries[1].Description)

	limited, err := repo.QueryLog(ctx, domain.LogQuery{
		UserID: user.ID,
		From:   domain.Epoch,
		To:     day(2024, time.January, 1),
		Limit:  1,
	})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	require.Equal(t, "run", limited[0].Description)
}

func TestFindByUsernameReturnsNilWhenMissing(t *testing.T) {
	repo := NewRepository()

	user, err := repo.FindByUsername(context.Background(), "nobody")
	require.NoError(t, err)
	require.Nil(t, user)

	missing, err := repo.GetUser(context.Background(), "unknown-id")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestCreateExerciseTruncatesDate(t *testing.T) {
	repo := NewRepository()

	stored, err := repo.CreateExercise(context.Background(), domain.Exercise{
		UserID:      "u1",
		Description: "yoga",
		Duration:    60,
		Date:        time.Date(2023, time.March, 5, 17, 45, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NotEmpty(t, stored.ID)
	require.Equal(t, day(2023, time.March, 5), stored.Date)
}

func TestConcurrentCreatesAreSafe(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.CreateUser(ctx, "racer")
		}()
	}
	wg.Wait()

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 20)
}
