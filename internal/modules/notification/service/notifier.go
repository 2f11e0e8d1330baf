package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"anoa.com/signupform/internal/entity"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const publishTimeout = 2 * time.Second

// Notifier surfaces success and error messages to the user. How they are
// rendered, queued or dismissed is up to the implementation.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// ChannelFor is the Redis pub/sub channel carrying a session's notifications.
func ChannelFor(sessionID uuid.UUID) string {
	return fmt.Sprintf("signup_notifications:%s", sessionID.String())
}

func newNotification(sessionID uuid.UUID, kind, message string) entity.Notification {
	return entity.Notification{
		ID:        uuid.New(),
		SessionID: sessionID,
		Type:      kind,
		Message:   message,
		CreatedAt: time.Now(),
	}
}

// Inbox records notifications in emission order until they are drained.
type Inbox struct {
	sessionID uuid.UUID

	mu    sync.Mutex
	items []entity.Notification
}

func NewInbox(sessionID uuid.UUID) *Inbox {
	return &Inbox{sessionID: sessionID}
}

func (i *Inbox) Success(message string) { i.add(entity.NotificationSuccess, message) }

func (i *Inbox) Error(message string) { i.add(entity.NotificationError, message) }

func (i *Inbox) add(kind, message string) {
	i.mu.Lock()
	i.items = append(i.items, newNotification(i.sessionID, kind, message))
	i.mu.Unlock()
}

// Drain returns everything recorded so far and empties the inbox.
func (i *Inbox) Drain() []entity.Notification {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := i.items
	i.items = nil
	if out == nil {
		out = []entity.Notification{}
	}
	return out
}

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	logger    *zap.Logger
	sessionID uuid.UUID
}

func NewLogNotifier(logger *zap.Logger, sessionID uuid.UUID) *LogNotifier {
	return &LogNotifier{logger: logger, sessionID: sessionID}
}

func (n *LogNotifier) Success(message string) {
	n.logger.Info("signup notification",
		zap.String("session_id", n.sessionID.String()),
		zap.String("type", entity.NotificationSuccess),
		zap.String("message", message))
}

func (n *LogNotifier) Error(message string) {
	n.logger.Info("signup notification",
		zap.String("session_id", n.sessionID.String()),
		zap.String("type", entity.NotificationError),
		zap.String("message", message))
}

// RedisNotifier publishes notifications to the session's channel so that
// websocket subscribers can show them as they happen.
type RedisNotifier struct {
	client    *redis.Client
	logger    *zap.Logger
	sessionID uuid.UUID
}

func NewRedisNotifier(client *redis.Client, logger *zap.Logger, sessionID uuid.UUID) *RedisNotifier {
	return &RedisNotifier{client: client, logger: logger, sessionID: sessionID}
}

func (n *RedisNotifier) Success(message string) { n.publish(entity.NotificationSuccess, message) }

func (n *RedisNotifier) Error(message string) { n.publish(entity.NotificationError, message) }

func (n *RedisNotifier) publish(kind, message string) {
	if n.client == nil {
		return
	}

	payload, err := json.Marshal(newNotification(n.sessionID, kind, message))
	if err != nil {
		n.logger.Error("failed to encode notification", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := n.client.Publish(ctx, ChannelFor(n.sessionID), payload).Err(); err != nil {
		n.logger.Warn("failed to publish notification",
			zap.String("session_id", n.sessionID.String()),
			zap.Error(err))
	}
}

// Fanout forwards every notification to each notifier in order.
type Fanout []Notifier

func (f Fanout) Success(message string) {
	for _, n := range f {
		n.Success(message)
	}
}

func (f Fanout) Error(message string) {
	for _, n := range f {
		n.Error(message)
	}
}
