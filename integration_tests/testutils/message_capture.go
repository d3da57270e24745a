package testutils

import (
	"context"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
)

// MessageCapture records messages delivered on subscribed topics.
type MessageCapture struct {
	messages map[string][]*message.Message
	mutex    sync.RWMutex
}

// NewMessageCapture creates a new message capture instance
func NewMessageCapture() *MessageCapture {
	return &MessageCapture{messages: make(map[string][]*message.Message)}
}

// Capture subscribes to topic and records every message until ctx ends.
func (mc *MessageCapture) Capture(ctx context.Context, sub message.Subscriber, topic string) error {
	msgs, err := sub.Subscribe(ctx, topic)
	if err != nil {
		return err
	}
	go func() {
		for msg := range msgs {
			mc.mutex.Lock()
			mc.messages[topic] = append(mc.messages[topic], msg)
			mc.mutex.Unlock()
			msg.Ack()
		}
	}()
	return nil
}

// GetMessages returns captured messages for a specific topic
func (mc *MessageCapture) GetMessages(topic string) []*message.Message {
	mc.mutex.RLock()
	defer mc.mutex.RUnlock()

	msgs := make([]*message.Message, len(mc.messages[topic]))
	copy(msgs, mc.messages[topic])
	return msgs
}

// Clear clears all captured messages
func (mc *MessageCapture) Clear() {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()
	mc.messages = make(map[string][]*message.Message)
}

// WaitForMessages waits for a specific number of messages on a topic with timeout
func (mc *MessageCapture) WaitForMessages(topic string, expectedCount int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if len(mc.GetMessages(topic)) >= expectedCount {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}
