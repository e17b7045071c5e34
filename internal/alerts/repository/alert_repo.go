package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/zeer-gl/thiqa-gateway/internal/alerts/domain"
)

const (
	alertKeyPrefix        = "thiqa:alert:"  // Active alert: thiqa:alert:{session_id}
	notificationKeyPrefix = "thiqa:notifs:" // Notification list: thiqa:notifs:{session_id}
	alertTTL              = 6 * time.Second // Auto-dismiss window
	notificationTTL       = 30 * 24 * time.Hour
	maxNotifications      = 100
)

// AlertRepository handles Redis operations for per-session alerts and
// notifications.
type AlertRepository struct {
	client *redis.Client
}

// NewAlertRepository creates a new AlertRepository
func NewAlertRepository(client *redis.Client) *AlertRepository {
	return &AlertRepository{client: client}
}

// PushAlert replaces the active alert. The TTL is the auto-dismiss.
func (r *AlertRepository) PushAlert(ctx context.Context, sessionID string, a *domain.Alert) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	if err := r.client.Set(ctx, r.alertKey(sessionID), data, alertTTL).Err(); err != nil {
		return fmt.Errorf("failed to push alert: %w", err)
	}
	return nil
}

// ActiveAlert returns the current alert, or nil once it has auto-dismissed.
func (r *AlertRepository) ActiveAlert(ctx context.Context, sessionID string) (*domain.Alert, error) {
	data, err := r.client.Get(ctx, r.alertKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}

	var a domain.Alert
	if err := json.Unmarshal([]byte(data), &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal alert: %w", err)
	}
	return &a, nil
}

// AddNotification appends a notification, trimming the oldest past the cap.
func (r *AlertRepository) AddNotification(ctx context.Context, sessionID string, n *domain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	key := r.notificationKey(sessionID)
	pipe := r.client.Pipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, maxNotifications-1)
	pipe.Expire(ctx, key, notificationTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to add notification: %w", err)
	}
	return nil
}

// Notifications lists a session's notifications, newest first.
func (r *AlertRepository) Notifications(ctx context.Context, sessionID string) ([]domain.Notification, error) {
	items, err := r.client.LRange(ctx, r.notificationKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	out := make([]domain.Notification, 0, len(items))
	for _, item := range items {
		var n domain.Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

// MarkAllRead flags every notification read and returns how many changed.
// With zero unread the store round trip still happens and nothing changes.
func (r *AlertRepository) MarkAllRead(ctx context.Context, sessionID string) (int, error) {
	key := r.notificationKey(sessionID)

	items, err := r.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to list notifications: %w", err)
	}

	updated := 0
	for i, item := range items {
		var n domain.Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			continue
		}
		if n.Read {
			continue
		}
		n.Read = true
		data, err := json.Marshal(&n)
		if err != nil {
			continue
		}
		if err := r.client.LSet(ctx, key, int64(i), data).Err(); err != nil {
			return updated, fmt.Errorf("failed to mark notification read: %w", err)
		}
		updated++
	}
	return updated, nil
}

// Purge removes all alert state for a session (logout).
func (r *AlertRepository) Purge(ctx context.Context, sessionID string) error {
	pipe := r.client.Pipeline()
	pipe.Del(ctx, r.alertKey(sessionID))
	pipe.Del(ctx, r.notificationKey(sessionID))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to purge alerts: %w", err)
	}
	return nil
}

// Helper methods for key generation
func (r *AlertRepository) alertKey(sessionID string) string {
	return fmt.Sprintf("%s%s", alertKeyPrefix, sessionID)
}

func (r *AlertRepository) notificationKey(sessionID string) string {
	return fmt.Sprintf("%s%s", notificationKeyPrefix, sessionID)
}
