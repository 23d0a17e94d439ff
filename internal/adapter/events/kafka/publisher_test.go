package kafka

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DmitriySvyatov/WalletApi/config"
	"github.com/DmitriySvyatov/WalletApi/internal/core/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func testEvent() domain.WalletEvent {
	w := &domain.Wallet{ID: uuid.New(), Balance: 150, Version: 2, UpdatedAt: time.Now().UTC()}
	return domain.NewBalanceChangedEvent(w, domain.OperationDeposit, 50)
}

func TestPublisher_Publish(t *testing.T) {
	fw := &fakeWriter{}
	p := &Publisher{writer: fw, topic: "wallet.events", log: zerolog.Nop()}
	ev := testEvent()

	require.NoError(t, p.Publish(context.Background(), ev))
	require.Len(t, fw.msgs, 1)

	msg := fw.msgs[0]
	assert.Equal(t, ev.WalletID.String(), string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "BALANCE_CHANGED", string(msg.Headers[0].Value))

	var decoded domain.WalletEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, ev.ID, decoded.ID)
	assert.Equal(t, int64(150), decoded.Balance)
	assert.Equal(t, domain.OperationDeposit, decoded.OperationType)
}

func TestPublisher_PublishError(t *testing.T) {
	fw := &fakeWriter{err: errors.New("broker down")}
	p := &Publisher{writer: fw, topic: "wallet.events", log: zerolog.Nop()}

	err := p.Publish(context.Background(), testEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kafka write")
}

func TestPublisher_Close(t *testing.T) {
	fw := &fakeWriter{}
	p := &Publisher{writer: fw, log: zerolog.Nop()}

	require.NoError(t, p.Close())
	assert.True(t, fw.closed)
}

func TestPublisher_CompletionLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	p := &Publisher{topic: "wallet.events", log: zerolog.New(&buf)}

	p.onCompletion([]kafka.Message{{Key: []byte("w-1")}}, errors.New("leader not available"))
	assert.Contains(t, buf.String(), "w-1")
	assert.Contains(t, buf.String(), "wallet event delivery failed")

	buf.Reset()
	p.onCompletion([]kafka.Message{{Key: []byte("w-2")}}, nil)
	assert.Empty(t, buf.String())
}

func TestNewPublisher_ConfiguresWriter(t *testing.T) {
	p := NewPublisher(config.KafkaConfig{Brokers: []string{"k1:9092"}, Topic: "wallet.events"}, zerolog.Nop())

	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "wallet.events", w.Topic)
	assert.True(t, w.Async)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
	require.NoError(t, p.Close())
}

func TestHealthCheck(t *testing.T) {
	hc := &HealthCheck{
		brokers: []string{"a:9092", "b:9092"},
		dial: func(ctx context.Context, network, address string) (*kafka.Conn, error) {
			return nil, errors.New("refused " + address)
		},
	}

	assert.Equal(t, "kafka", hc.Name())
	err := hc.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b:9092")

	empty := NewHealthCheck(nil)
	assert.Error(t, empty.Ping(context.Background()))
}
