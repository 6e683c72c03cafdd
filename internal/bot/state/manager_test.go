package state

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/glucose-insights/internal/domain"
)

func exerciseManager(t *testing.T, m StateManager) {
	t.Helper()
	const chat int64 = 4242

	assert.Equal(t, None, m.GetUserState(chat))
	m.SetUserState(chat, WaitingForReading)
	assert.Equal(t, WaitingForReading, m.GetUserState(chat))

	_, ok := m.GetSession(chat)
	assert.False(t, ok)
	m.SetSession(chat, domain.Session{SubjectID: 7, Token: "tok"})
	sess, ok := m.GetSession(chat)
	require.True(t, ok)
	assert.Equal(t, domain.Session{SubjectID: 7, Token: "tok"}, sess)

	m.SetTempData(chat, "meal", "lunch")
	v, ok := m.GetTempData(chat, "meal")
	require.True(t, ok)
	assert.Equal(t, "lunch", v)

	m.ClearTempData(chat)
	_, ok = m.GetTempData(chat, "meal")
	assert.False(t, ok)
}

func TestManager(t *testing.T) {
	m := NewManager()
	exerciseManager(t, m)

	m.ClearUserState(4242)
	assert.Equal(t, None, m.GetUserState(4242))
}

func TestManager_ChatsAreIsolated(t *testing.T) {
	m := NewManager()
	m.SetUserState(1, WaitingForChart)
	m.SetTempData(1, "k", 1)
	assert.Equal(t, None, m.GetUserState(2))
	_, ok := m.GetTempData(2, "k")
	assert.False(t, ok)
}

// Runs against a real server when REDIS_ADDR is set, e.g. localhost:6379
func TestRedisManager(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	require.NoError(t, client.Ping(context.Background()).Err())
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	exerciseManager(t, NewRedisManagerWithClient(client))
}
