package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConsumer() *Consumer {
	return &Consumer{workers: 4, log: zap.NewNop(), Backoff: time.Millisecond, MaxBackoff: 4 * time.Millisecond}
}

func TestProcessRetriesUntilHandled(t *testing.T) {
	c := testConsumer()
	calls := 0
	h := func(context.Context, kafka.Message) error {
		calls++
		if calls < 3 {
			return errors.New("smtp down")
		}
		return nil
	}

	require.NoError(t, c.process(context.Background(), h, kafka.Message{Topic: "order.placed", Offset: 7}))
	assert.Equal(t, 3, calls)
}

func TestProcessDropsPermanentFailure(t *testing.T) {
	c := testConsumer()
	calls := 0
	h := func(context.Context, kafka.Message) error {
		calls++
		return Permanent(errors.New("decode envelope: bad json"))
	}

	assert.NoError(t, c.process(context.Background(), h, kafka.Message{}))
	assert.Equal(t, 1, calls)
}

func TestProcessStopsOnShutdown(t *testing.T) {
	c := testConsumer()
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	h := func(context.Context, kafka.Message) error {
		calls++
		if calls == 2 {
			cancel()
		}
		return errors.New("smtp down")
	}

	err := c.process(ctx, h, kafka.Message{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, calls)
}

func TestPermanent(t *testing.T) {
	cause := errors.New("bad")
	err := Permanent(cause)
	assert.True(t, IsPermanent(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "bad", err.Error())
	assert.False(t, IsPermanent(cause))
	assert.Nil(t, Permanent(nil))
}

func TestWorkerForPinsPartition(t *testing.T) {
	assert.Equal(t, 1, workerFor(kafka.Message{Partition: 5}, 4))
	assert.Equal(t, workerFor(kafka.Message{Partition: 5, Offset: 1}, 4), workerFor(kafka.Message{Partition: 5, Offset: 9}, 4))
	assert.Equal(t, 0, workerFor(kafka.Message{Partition: 3}, 1))
}
