package nats

import (
	"context"
	"testing"

	"aura-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "aura.events.user_login", Subject(events.TypeUserLogin))
	assert.Equal(t, "aura.events.post_created", Subject(events.TypePostCreated))
}

func TestNilPublisherDropsEvents(t *testing.T) {
	var p *Publisher
	err := p.Publish(context.Background(), events.PostLiked(uuid.New(), uuid.New(), 3))
	assert.NoError(t, err)
	p.Close()
}
