package mqtt

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 1 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

func TestClientIDIsUnique(t *testing.T) {
	a, b := ClientID("iot-backend"), ClientID("iot-backend")
	assert.True(t, strings.HasPrefix(a, "iot-backend-"))
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(ClientID(""), "motofleet-"))
}

func TestMessageHandlerForwardsMessages(t *testing.T) {
	var topics []string
	cb := messageHandler(context.Background(), func(_ context.Context, topic string, payload []byte) error {
		topics = append(topics, topic+"="+string(payload))
		return errors.New("ignored")
	}, zap.NewNop())

	cb(nil, fakeMessage{topic: "sensors/gps/MOTO1", payload: []byte(`{}`)})
	assert.Equal(t, []string{"sensors/gps/MOTO1={}"}, topics)
}

func TestMessageHandlerStopsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	cb := messageHandler(ctx, func(context.Context, string, []byte) error {
		called = true
		return nil
	}, zap.NewNop())

	cb(nil, fakeMessage{topic: "cv/cam1"})
	assert.False(t, called)
}
