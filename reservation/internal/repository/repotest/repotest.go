// Package repotest holds the behaviour every repository.Repository adapter
// has to show. Adapters run it from their own tests.
package repotest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Astemirdum/reservation-service/reservation/internal/errs"
	"github.com/Astemirdum/reservation-service/reservation/internal/model"
	"github.com/Astemirdum/reservation-service/reservation/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty repository.
type Factory func(t *testing.T) repository.Repository

const (
	RoomA = "101-A"
	RoomB = "202-B"
)

var (
	Day1 = time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
	Day3 = time.Date(2025, time.December, 3, 0, 0, 0, 0, time.UTC)
	Day5 = time.Date(2025, time.December, 5, 0, 0, 0, 0, time.UTC)
)

func reservation(id, room string, in, out time.Time, status model.Status) model.Reservation {
	return model.Reservation{
		ReservationID: id,
		RoomID:        room,
		UserID:        "user-test",
		CheckIn:       in,
		CheckOut:      out,
		Status:        status,
	}
}

func Run(t *testing.T, newRepo Factory) {
	t.Run("save and find by id", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		want := reservation("res-123", RoomA, Day1, Day5, model.StatusActive)
		require.NoError(t, repo.Save(ctx, want))

		got, err := repo.FindByID(ctx, "res-123")
		require.NoError(t, err)
		require.Equal(t, want, got)
	})

	t.Run("find unknown id", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.FindByID(context.Background(), "res-999")
		require.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("overlapping dates are unavailable", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		require.NoError(t, repo.Save(ctx, reservation("res-123", RoomA, Day1, Day5, model.StatusActive)))

		ok, err := repo.IsRoomAvailable(ctx, RoomA, Day3, Day5.AddDate(0, 0, 1))
		require.NoError(t, err)
		require.False(t, ok)

		ok, err = repo.IsRoomAvailable(ctx, RoomA, Day1.AddDate(0, 0, -2), Day1.AddDate(0, 0, 1))
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("check-out day is free for check-in", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		require.NoError(t, repo.Save(ctx, reservation("res-123", RoomA, Day1, Day5, model.StatusActive)))

		ok, err := repo.IsRoomAvailable(ctx, RoomA, Day5, Day5.AddDate(0, 0, 2))
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = repo.IsRoomAvailable(ctx, RoomA, Day1.AddDate(0, 0, -3), Day1)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("cancelled reservations and other rooms do not block", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		require.NoError(t, repo.Save(ctx, reservation("res-1", RoomA, Day1, Day5, model.StatusCancelled)))
		require.NoError(t, repo.Save(ctx, reservation("res-2", RoomB, Day1, Day5, model.StatusActive)))

		ok, err := repo.IsRoomAvailable(ctx, RoomA, Day1, Day5)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("save upserts status", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		rsv := reservation("res-123", RoomA, Day1, Day5, model.StatusActive)
		require.NoError(t, repo.Save(ctx, rsv))

		rsv.Status = model.StatusCancelled
		require.NoError(t, repo.Save(ctx, rsv))

		got, err := repo.FindByID(ctx, "res-123")
		require.NoError(t, err)
		require.Equal(t, model.StatusCancelled, got.Status)
		require.Equal(t, RoomA, got.RoomID)
		require.Equal(t, Day1, got.CheckIn)
		require.Equal(t, Day5, got.CheckOut)

		ok, err := repo.IsRoomAvailable(ctx, RoomA, Day1, Day5)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("conflicting active save is rejected", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		require.NoError(t, repo.Save(ctx, reservation("res-1", RoomA, Day1, Day5, model.StatusActive)))

		err := repo.Save(ctx, reservation("res-2", RoomA, Day3, Day5.AddDate(0, 0, 1), model.StatusActive))
		require.ErrorIs(t, err, errs.ErrRoomUnavailable)

		_, err = repo.FindByID(ctx, "res-2")
		require.ErrorIs(t, err, errs.ErrNotFound)

		require.NoError(t, repo.Save(ctx, reservation("res-3", RoomA, Day5, Day5.AddDate(0, 0, 2), model.StatusActive)))
	})

	t.Run("concurrent saves keep one active reservation", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		const workers = 8

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			results []error
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := repo.Save(ctx, reservation(uuid.NewString(), RoomA, Day1, Day5, model.StatusActive))
				mu.Lock()
				results = append(results, err)
				mu.Unlock()
			}()
		}
		wg.Wait()

		saved, rejected := 0, 0
		for _, err := range results {
			if err == nil {
				saved++
				continue
			}
			require.ErrorIs(t, err, errs.ErrRoomUnavailable)
			rejected++
		}
		require.Equal(t, 1, saved)
		require.Equal(t, workers-1, rejected)
	})
}
