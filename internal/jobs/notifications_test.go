package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"estatehub/internal/caching"
	"estatehub/internal/config"
	"estatehub/internal/models"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockEnqueuer struct {
	mock.Mock
}

func (m *MockEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asynq.TaskInfo), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, channel string, payload any) error {
	return m.Called(ctx, channel, payload).Error(0)
}

func TestTaskNotifier_EnqueuesPayload(t *testing.T) {
	client := new(MockEnqueuer)
	recipient := uuid.New()
	n := models.NewNotification(models.NotificationKYCReviewed, recipient, "KYC approved", "You can now onboard", nil)

	client.On("EnqueueContext", mock.Anything, mock.MatchedBy(func(task *asynq.Task) bool {
		var got models.Notification
		return task.Type() == TypeNotificationDeliver &&
			json.Unmarshal(task.Payload(), &got) == nil && got.RecipientID == recipient
	})).Return(&asynq.TaskInfo{ID: "t1", Queue: QueueCritical}, nil)

	require.NoError(t, NewTaskNotifier(client).Notify(context.Background(), n))
	client.AssertExpectations(t)
}

func TestTaskNotifier_EnqueueFailure(t *testing.T) {
	client := new(MockEnqueuer)
	client.On("EnqueueContext", mock.Anything, mock.Anything).Return(nil, errors.New("redis down"))

	err := NewTaskNotifier(client).Notify(context.Background(),
		models.NewNotification(models.NotificationMessageReceived, uuid.New(), "New message", "hi", nil))
	assert.Error(t, err)
}

func TestQueueFor(t *testing.T) {
	assert.Equal(t, QueueCritical, queueFor(models.NotificationKYCReviewed))
	assert.Equal(t, QueueCritical, queueFor(models.NotificationLeaseCreated))
	assert.Equal(t, QueueDefault, queueFor(models.NotificationMessageReceived))
	assert.Equal(t, QueueLow, queueFor("digest"))
}

func TestNotificationHandler_PublishesToUserChannel(t *testing.T) {
	publisher := new(MockPublisher)
	recipient := uuid.New()
	n := models.NewNotification(models.NotificationLeaseCreated, recipient, "Lease created", "Welcome home", map[string]string{"lease_id": "abc"})
	task, err := NewNotificationTask(n)
	require.NoError(t, err)

	publisher.On("Publish", mock.Anything, caching.NotificationChannel(recipient), mock.MatchedBy(func(p *models.Notification) bool {
		return p.ID == n.ID && p.Data["lease_id"] == "abc"
	})).Return(nil)

	require.NoError(t, NewNotificationHandler(publisher).ProcessTask(context.Background(), task))
	publisher.AssertExpectations(t)
}

func TestNotificationHandler_BadPayloadSkipsRetry(t *testing.T) {
	publisher := new(MockPublisher)
	task := asynq.NewTask(TypeNotificationDeliver, []byte("{not json"))

	err := NewNotificationHandler(publisher).ProcessTask(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestNotificationHandler_PublishFailureRetries(t *testing.T) {
	publisher := new(MockPublisher)
	n := models.NewNotification(models.NotificationMessageReceived, uuid.New(), "New message", "hi", nil)
	task, err := NewNotificationTask(n)
	require.NoError(t, err)
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	err = NewNotificationHandler(publisher).ProcessTask(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestRedisConnOpt(t *testing.T) {
	opt, err := RedisConnOpt(config.RedisConfig{Addr: "localhost:6379", DB: 2})
	require.NoError(t, err)
	assert.Equal(t, asynq.RedisClientOpt{Addr: "localhost:6379", DB: 2}, opt)

	opt, err = RedisConnOpt(config.RedisConfig{Addr: "redis://:secret@cache:6380/1"})
	require.NoError(t, err)
	clientOpt, ok := opt.(asynq.RedisClientOpt)
	require.True(t, ok)
	assert.Equal(t, "cache:6380", clientOpt.Addr)
	assert.Equal(t, 1, clientOpt.DB)
}
