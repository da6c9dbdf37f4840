package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bnobela/globetalk-api/pkg/logger"
)

// Event type names, used as topic suffixes and message metadata
const (
	TypeUserCreated      = "user.created"
	TypeUsernameAssigned = "username.assigned"
)

// UserCreated is published after a registry entry is written
type UserCreated struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// UsernameAssigned is published after a claim transaction commits
type UsernameAssigned struct {
	Username   string    `json:"username"`
	UserID     string    `json:"userId"`
	AssignedAt time.Time `json:"assignedAt"`
}

// Publisher publishes domain events. Publishing is best-effort: failures are
// logged and never surfaced to the request path. A nil *Publisher is a valid
// no-op publisher.
type Publisher struct {
	pub         message.Publisher
	topicPrefix string
	logger      *logger.Logger
}

// NewPublisher wraps a watermill publisher with topic naming and logging
func NewPublisher(pub message.Publisher, topicPrefix string, log *logger.Logger) *Publisher {
	return &Publisher{
		pub:         pub,
		topicPrefix: topicPrefix,
		logger:      log.WithComponent("events"),
	}
}

// NewRedisStreamPublisher creates the production watermill publisher backed
// by Redis streams, as used by the server wiring
func NewRedisStreamPublisher(client redis.UniversalClient) (message.Publisher, error) {
	return redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: client,
		},
		watermill.NewStdLogger(false, false),
	)
}

// PublishUserCreated publishes a user.created event
func (p *Publisher) PublishUserCreated(ctx context.Context, event UserCreated) {
	p.publish(ctx, TypeUserCreated, event)
}

// PublishUsernameAssigned publishes a username.assigned event
func (p *Publisher) PublishUsernameAssigned(ctx context.Context, event UsernameAssigned) {
	p.publish(ctx, TypeUsernameAssigned, event)
}

func (p *Publisher) publish(ctx context.Context, eventType string, event any) {
	if p == nil || p.pub == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to serialize event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", eventType)

	topic := fmt.Sprintf("%s.%s", p.topicPrefix, eventType)
	if err := p.pub.Publish(topic, msg); err != nil {
		p.logger.Error("Failed to publish event",
			zap.String("event_type", eventType),
			zap.String("topic", topic),
			zap.Error(err),
		)
		return
	}

	p.logger.Debug("Event published",
		zap.String("event_type", eventType),
		zap.String("topic", topic),
	)
}
