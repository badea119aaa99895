package mailer

import (
	"context"
	"encoding/json"
	"fmt"

	"aura-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const TopicOutgoingMail = "mail.outgoing"

// Dispatcher queues mail on an in-process watermill channel and delivers it
// from a background consumer, so request handlers never wait on SMTP.
type Dispatcher interface {
	Enqueue(ctx context.Context, m Mail) error
	Run(ctx context.Context) error
	Close() error
}

type dispatcher struct {
	pubSub *gochannel.GoChannel
	sender Sender
	log    logger.ILogger
}

func NewDispatcher(pubSub *gochannel.GoChannel, sender Sender, log logger.ILogger) Dispatcher {
	return &dispatcher{pubSub: pubSub, sender: sender, log: log}
}

// NewGoChannel builds the pub/sub the dispatcher runs on.
func NewGoChannel() *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewStdLogger(false, false),
	)
}

func (d *dispatcher) Enqueue(ctx context.Context, m Mail) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal mail: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	if err := d.pubSub.Publish(TopicOutgoingMail, msg); err != nil {
		d.log.Error("MAILER", "Failed to enqueue mail", map[string]interface{}{"to": m.To, "error": err})
		return err
	}
	return nil
}

// Run subscribes to the mail topic and delivers in a goroutine until ctx ends.
func (d *dispatcher) Run(ctx context.Context) error {
	messages, err := d.pubSub.Subscribe(ctx, TopicOutgoingMail)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			d.deliver(ctx, msg)
		}
	}()
	return nil
}

func (d *dispatcher) deliver(ctx context.Context, msg *message.Message) {
	// Delivery is fire-and-forget: every message is acked, failures are logged.
	defer msg.Ack()

	var m Mail
	if err := json.Unmarshal(msg.Payload, &m); err != nil {
		d.log.Error("MAILER", "Dropping undecodable mail message", map[string]interface{}{"message_id": msg.UUID, "error": err})
		return
	}

	if _, err := d.sender.SendMail(ctx, m); err != nil {
		d.log.Warn("MAILER", "Mail delivery failed", map[string]interface{}{"to": m.To, "subject": m.Subject, "error": err.Error()})
	}
}

func (d *dispatcher) Close() error {
	return d.pubSub.Close()
}
