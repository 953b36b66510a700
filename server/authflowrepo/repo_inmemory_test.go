package authflowrepo_test

import (
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-booking-server/server/authflowrepo"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepo_TakeOnce(t *testing.T) {
	repo := authflowrepo.NewInMemoryRepo(time.Minute)

	require.NoError(t, repo.Upsert("state-1", &authflowrepo.AuthFlowState{
		Provider:     "github",
		CodeVerifier: "verifier",
		Nonce:        "nonce",
		ReturnURL:    "/bookings",
	}))

	got, err := repo.Take("state-1")
	require.NoError(t, err)
	require.Equal(t, "github", got.Provider)
	require.Equal(t, "verifier", got.CodeVerifier)
	require.Equal(t, "/bookings", got.ReturnURL)
	require.False(t, got.CreatedAt.IsZero())

	_, err = repo.Take("state-1")
	require.ErrorIs(t, err, authflowrepo.ErrStateNotFound)
}

func TestInMemoryRepo_Expiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	repo := authflowrepo.NewInMemoryRepo(10*time.Minute, authflowrepo.WithNowTime(func() time.Time { return now }))

	require.NoError(t, repo.Upsert("old", &authflowrepo.AuthFlowState{Provider: "google"}))
	require.NoError(t, repo.Upsert("fresh", &authflowrepo.AuthFlowState{Provider: "google", CreatedAt: now.Add(5 * time.Minute)}))

	now = now.Add(11 * time.Minute)

	_, err := repo.Take("old")
	require.ErrorIs(t, err, authflowrepo.ErrStateExpired)

	require.NoError(t, repo.Upsert("stale", &authflowrepo.AuthFlowState{CreatedAt: now.Add(-time.Hour)}))
	require.Equal(t, 1, repo.DeleteExpired())
	require.Equal(t, 1, repo.Len())

	_, err = repo.Take("fresh")
	require.NoError(t, err)
}

func TestInMemoryRepo_Validation(t *testing.T) {
	repo := authflowrepo.NewInMemoryRepo(time.Minute)
	require.Error(t, repo.Upsert("", &authflowrepo.AuthFlowState{}))
	require.Error(t, repo.Upsert("s", nil))
	_, err := repo.Take("")
	require.Error(t, err)
}

func TestInMemoryRepo_ConcurrentTake(t *testing.T) {
	repo := authflowrepo.NewInMemoryRepo(time.Minute)
	require.NoError(t, repo.Upsert("state-1", &authflowrepo.AuthFlowState{Provider: "github"}))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Take("state-1"); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, wins)
}
