package state

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vladimiradmaev/glucose-insights/internal/domain"
	"github.com/vladimiradmaev/glucose-insights/internal/logger"
)

// stateTTL expires state of inactive chats
const stateTTL = 24 * time.Hour

// RedisManager manages user states using Redis
type RedisManager struct {
	client *redis.Client
}

// NewRedisManager connects to redis and verifies the connection
func NewRedisManager(redisHost, redisPort string) (*RedisManager, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", redisHost, redisPort),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisManagerWithClient(client), nil
}

// NewRedisManagerWithClient wraps an existing client
func NewRedisManagerWithClient(client *redis.Client) *RedisManager {
	return &RedisManager{client: client}
}

func stateKey(userID int64) string   { return fmt.Sprintf("chat:%d:state", userID) }
func sessionKey(userID int64) string { return fmt.Sprintf("chat:%d:session", userID) }
func tempKey(userID int64) string    { return fmt.Sprintf("chat:%d:temp", userID) }

// SetUserState sets the state for a user with TTL
func (m *RedisManager) SetUserState(userID int64, state string) {
	if err := m.client.Set(context.Background(), stateKey(userID), state, stateTTL).Err(); err != nil {
		logger.Warn("Failed to save chat state", "chat_id", userID, "error", err)
	}
}

// GetUserState gets the state for a user, None when unset or on error
func (m *RedisManager) GetUserState(userID int64) string {
	result := m.client.Get(context.Background(), stateKey(userID))
	if result.Err() != nil {
		if result.Err() != redis.Nil {
			logger.Warn("Failed to load chat state", "chat_id", userID, "error", result.Err())
		}
		return None
	}
	return result.Val()
}

func (m *RedisManager) SetSession(userID int64, sess domain.Session) {
	data, err := json.Marshal(sess)
	if err != nil {
		return
	}
	if err := m.client.Set(context.Background(), sessionKey(userID), data, stateTTL).Err(); err != nil {
		logger.Warn("Failed to save chat session", "chat_id", userID, "error", err)
	}
}

func (m *RedisManager) GetSession(userID int64) (domain.Session, bool) {
	raw, err := m.client.Get(context.Background(), sessionKey(userID)).Bytes()
	if err != nil {
		return domain.Session{}, false
	}
	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil || sess.SubjectID == 0 {
		return domain.Session{}, false
	}
	return sess, true
}

// SetTempData sets temporary data for a user
func (m *RedisManager) SetTempData(userID int64, key string, value interface{}) {
	tempData := m.getTempDataMap(userID)
	if tempData == nil {
		tempData = make(map[string]interface{})
	}
	tempData[key] = value
	m.saveTempDataMap(userID, tempData)
}

// GetTempData gets temporary data for a user. Values come back as their
// JSON decoding, so numbers are float64.
func (m *RedisManager) GetTempData(userID int64, key string) (interface{}, bool) {
	tempData := m.getTempDataMap(userID)
	if tempData == nil {
		return nil, false
	}
	value, exists := tempData[key]
	return value, exists
}

// ClearTempData clears all temporary data for a user
func (m *RedisManager) ClearTempData(userID int64) {
	m.client.Del(context.Background(), tempKey(userID))
}

// Close closes the Redis connection
func (m *RedisManager) Close() error {
	return m.client.Close()
}

func (m *RedisManager) getTempDataMap(userID int64) map[string]interface{} {
	raw, err := m.client.Get(context.Background(), tempKey(userID)).Bytes()
	if err != nil {
		return nil
	}
	var tempData map[string]interface{}
	if err := json.Unmarshal(raw, &tempData); err != nil {
		return nil
	}
	return tempData
}

func (m *RedisManager) saveTempDataMap(userID int64, tempData map[string]interface{}) {
	data, err := json.Marshal(tempData)
	if err != nil {
		return
	}
	m.client.Set(context.Background(), tempKey(userID), data, stateTTL)
}
