package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnobela/globetalk-api/pkg/logger"
)

func TestPublisher_PublishUsernameAssigned(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	messages, err := pubSub.Subscribe(ctx, "globetalk.events.username.assigned")
	require.NoError(t, err)

	publisher := NewPublisher(pubSub, "globetalk.events", logger.NewNop())

	assignedAt := time.Now().UTC().Truncate(time.Second)
	publisher.PublishUsernameAssigned(ctx, UsernameAssigned{
		Username:   "wanderer",
		UserID:     "u1",
		AssignedAt: assignedAt,
	})

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, TypeUsernameAssigned, msg.Metadata.Get("event_type"))

		var event UsernameAssigned
		require.NoError(t, json.Unmarshal(msg.Payload, &event))
		assert.Equal(t, "wanderer", event.Username)
		assert.Equal(t, "u1", event.UserID)
		assert.Equal(t, assignedAt, event.AssignedAt)
	case <-ctx.Done():
		t.Fatal("no event received")
	}
}

func TestPublisher_PublishUserCreated(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	messages, err := pubSub.Subscribe(ctx, "globetalk.events.user.created")
	require.NoError(t, err)

	publisher := NewPublisher(pubSub, "globetalk.events", logger.NewNop())
	publisher.PublishUserCreated(ctx, UserCreated{UserID: "u1", Email: "u1@example.com"})

	select {
	case msg := <-messages:
		msg.Ack()

		var event UserCreated
		require.NoError(t, json.Unmarshal(msg.Payload, &event))
		assert.Equal(t, "u1", event.UserID)
		assert.Equal(t, "u1@example.com", event.Email)
	case <-ctx.Done():
		t.Fatal("no event received")
	}
}

func TestPublisher_NilIsNoop(t *testing.T) {
	var publisher *Publisher
	publisher.PublishUserCreated(context.Background(), UserCreated{UserID: "u1"})
	publisher.PublishUsernameAssigned(context.Background(), UsernameAssigned{Username: "wanderer"})
}
