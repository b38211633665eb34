package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"estatehub/internal/caching"
	"estatehub/internal/config"
	"estatehub/internal/models"

	"github.com/hibiken/asynq"
)

// TypeNotificationDeliver is the task type of a queued user notification.
const TypeNotificationDeliver = "notification:deliver"

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// queueFor routes account-affecting notifications ahead of chat traffic.
func queueFor(kind models.NotificationType) string {
	switch kind {
	case models.NotificationKYCReviewed, models.NotificationLeaseCreated:
		return QueueCritical
	case models.NotificationMessageReceived:
		return QueueDefault
	default:
		return QueueLow
	}
}

// NewNotificationTask creates a delivery task for n.
func NewNotificationTask(n *models.Notification) (*asynq.Task, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeNotificationDeliver, data,
		asynq.Queue(queueFor(n.Type)),
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
	), nil
}

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// TaskNotifier queues notifications for the worker.
type TaskNotifier struct {
	client Enqueuer
}

func NewTaskNotifier(client Enqueuer) *TaskNotifier {
	return &TaskNotifier{client: client}
}

func (n *TaskNotifier) Notify(ctx context.Context, notification *models.Notification) error {
	task, err := NewNotificationTask(notification)
	if err != nil {
		return fmt.Errorf("failed to build notification task: %w", err)
	}
	info, err := n.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}
	log.Printf("NOTIFY: queued %s for %s as %s on %s", notification.Type, notification.RecipientID, info.ID, info.Queue)
	return nil
}

// Publisher is satisfied by caching.CacheService.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// NotificationHandler delivers queued notifications to the user's pub/sub channel.
type NotificationHandler struct {
	publisher Publisher
}

func NewNotificationHandler(publisher Publisher) *NotificationHandler {
	return &NotificationHandler{publisher: publisher}
}

// ProcessTask implements asynq.Handler.
func (h *NotificationHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var n models.Notification
	if err := json.Unmarshal(t.Payload(), &n); err != nil {
		return fmt.Errorf("failed to unmarshal notification payload: %w: %w", err, asynq.SkipRetry)
	}

	if err := h.publisher.Publish(ctx, caching.NotificationChannel(n.RecipientID), &n); err != nil {
		return fmt.Errorf("failed to publish notification %s: %w", n.ID, err)
	}

	// Email delivery is not wired to a provider yet; the log line marks where it would happen.
	log.Printf("NOTIFY: email to %s: %s", n.RecipientID, n.Subject)
	return nil
}

// RedisConnOpt accepts a plain host:port or a redis:// URI.
func RedisConnOpt(cfg config.RedisConfig) (asynq.RedisConnOpt, error) {
	if strings.HasPrefix(cfg.Addr, "redis://") || strings.HasPrefix(cfg.Addr, "rediss://") {
		return asynq.ParseRedisURI(cfg.Addr)
	}
	return asynq.RedisClientOpt{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}, nil
}

// NewWorker builds the asynq server and its mux for the notification queues.
func NewWorker(redisOpt asynq.RedisConnOpt, queue config.QueueConfig, handler *NotificationHandler) (*asynq.Server, *asynq.ServeMux) {
	queues := queue.QueuePriorities
	if len(queues) == 0 {
		queues = map[string]int{QueueCritical: 6, QueueDefault: 3, QueueLow: 1}
	}
	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: queue.Concurrency,
		Queues:      queues,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Printf("WORKER: task %s failed: %v", task.Type(), err)
		}),
	})

	mux := asynq.NewServeMux()
	mux.Handle(TypeNotificationDeliver, handler)
	return server, mux
}
