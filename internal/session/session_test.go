package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursewise/advisor-go/internal/catalog"
	apperrors "github.com/coursewise/advisor-go/internal/errors"
	"github.com/coursewise/advisor-go/internal/logger"
)

func testManager(t *testing.T, cfg Config) *Manager {
	t.Helper()
	mgr := NewManager(cfg, logger.New("debug"), nil)
	t.Cleanup(mgr.Stop)
	return mgr
}

func TestCreateAndGet(t *testing.T) {
	mgr := testManager(t, Config{})

	s := mgr.Create(catalog.StudentProfile{Major: "Data Science"})
	require.NotEmpty(t, s.ID)
	assert.Equal(t, "Data Science", s.Profile.Major)

	got, err := mgr.Get(s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, 1, mgr.Count())
}

func TestGetUnknownSession(t *testing.T) {
	mgr := testManager(t, Config{})

	_, err := mgr.Get("no-such-session")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUniqueIDs(t *testing.T) {
	mgr := testManager(t, Config{})

	a := mgr.Create(catalog.StudentProfile{})
	b := mgr.Create(catalog.StudentProfile{})
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, mgr.Count())
}

func TestRecordExchange(t *testing.T) {
	mgr := testManager(t, Config{HistoryLimit: 4})
	s := mgr.Create(catalog.StudentProfile{})

	mgr.RecordExchange(s, "hello", "greeting", "Hello there!")

	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, RoleStudent, history[0].Role)
	assert.Equal(t, "hello", history[0].Text)
	assert.Equal(t, RoleAdvisor, history[1].Role)
	assert.Equal(t, "greeting", history[1].Intent)
	assert.Equal(t, 1, s.Queries())
}

func TestHistoryTrimmed(t *testing.T) {
	mgr := testManager(t, Config{HistoryLimit: 4})
	s := mgr.Create(catalog.StudentProfile{})

	for i := 0; i < 5; i++ {
		mgr.RecordExchange(s, "question", "general_info", "answer")
	}

	history := s.History()
	// 5 exchanges = 10 turns, trimmed to the latest 4
	require.Len(t, history, 4)
	assert.Equal(t, 5, s.Queries())
}

func TestDelete(t *testing.T) {
	mgr := testManager(t, Config{})
	s := mgr.Create(catalog.StudentProfile{})

	mgr.Delete(s.ID)
	assert.Equal(t, 0, mgr.Count())

	_, err := mgr.Get(s.ID)
	assert.Error(t, err)

	// Deleting twice is fine
	mgr.Delete(s.ID)
}

func TestStats(t *testing.T) {
	mgr := testManager(t, Config{})

	a := mgr.Create(catalog.StudentProfile{})
	b := mgr.Create(catalog.StudentProfile{})
	mgr.RecordExchange(a, "q1", "greeting", "r1")
	mgr.RecordExchange(b, "q2", "greeting", "r2")
	mgr.RecordExchange(b, "q3", "schedule_info", "r3")
	mgr.RecordNarratorCall(b)
	mgr.Delete(a.ID)

	stats := mgr.Stats()
	assert.Equal(t, 1, stats.ActiveSessions)
	assert.Equal(t, 2, stats.TotalCreated)
	assert.Equal(t, 3, stats.TotalQueries)
	assert.Equal(t, 1, stats.NarratorCalls)
	assert.Equal(t, 1, b.NarratorCalls())
}

func TestIdleEviction(t *testing.T) {
	mgr := testManager(t, Config{
		TTL:             30 * time.Millisecond,
		CleanupInterval: 10 * time.Millisecond,
	})

	s := mgr.Create(catalog.StudentProfile{})

	require.Eventually(t, func() bool {
		return mgr.Count() == 0
	}, time.Second, 10*time.Millisecond, "idle session should be evicted")

	_, err := mgr.Get(s.ID)
	assert.Error(t, err)
}

func TestGetRefreshesIdleTimer(t *testing.T) {
	mgr := testManager(t, Config{
		TTL:             60 * time.Millisecond,
		CleanupInterval: 20 * time.Millisecond,
	})

	s := mgr.Create(catalog.StudentProfile{})

	// Keep touching the session past several TTL windows
	for i := 0; i < 6; i++ {
		time.Sleep(25 * time.Millisecond)
		_, err := mgr.Get(s.ID)
		require.NoError(t, err, "active session must not be evicted")
	}
}

func TestNilSessionSafe(t *testing.T) {
	mgr := testManager(t, Config{})

	mgr.RecordExchange(nil, "q", "greeting", "r")
	mgr.RecordNarratorCall(nil)

	assert.Equal(t, 0, mgr.Stats().TotalQueries)
}
