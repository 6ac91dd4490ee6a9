package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Handler returns nil only when the message is fully processed and its
// offset may be committed. Errors wrapped with Permanent are not retried.
type Handler func(ctx context.Context, m kafka.Message) error

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err as one that no retry can fix, such as an undecodable
// message. The consumer logs it and commits past the message.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

type Consumer struct {
	r       *kafka.Reader
	workers int
	log     *zap.Logger

	// Backoff is the first retry delay; it doubles up to MaxBackoff.
	Backoff    time.Duration
	MaxBackoff time.Duration
}

func NewConsumer(brokers []string, group string, topics []string, workers int, log *zap.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		GroupTopics:    topics,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	if workers <= 0 {
		workers = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Consumer{r: r, workers: workers, log: log, Backoff: 200 * time.Millisecond, MaxBackoff: 30 * time.Second}
}

// workerFor pins a partition to one worker so its offsets are committed in order.
func workerFor(m kafka.Message, workers int) int {
	if workers <= 1 || m.Partition < 0 {
		return 0
	}
	return m.Partition % workers
}

// Start fetches messages and fans them out to the worker pool until ctx is
// cancelled. A message is committed only after it was handled; transient
// failures block its partition and are retried with backoff.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make([]chan kafka.Message, c.workers)
	g, gctx := errgroup.WithContext(ctx)

	for i := range jobs {
		worker, in := i, make(chan kafka.Message, 64)
		jobs[i] = in
		g.Go(func() error {
			for m := range in {
				if err := c.process(gctx, h, m); err != nil {
					// shutting down; the message is redelivered to the next member
					c.log.Warn("kafka_handle_abandoned", zap.Int("worker", worker),
						zap.String("topic", m.Topic), zap.Int64("offset", m.Offset), zap.Error(err))
					continue
				}
				if err := c.r.CommitMessages(gctx, m); err != nil {
					c.log.Warn("kafka_commit_failed", zap.String("topic", m.Topic), zap.Error(err))
				}
			}
			return nil
		})
	}

	var fetchErr error
	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) && ctx.Err() == nil {
				fetchErr = err
			}
			break
		}
		select {
		case jobs[workerFor(m, c.workers)] <- m:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	for _, in := range jobs {
		close(in)
	}
	_ = g.Wait()
	return fetchErr
}

// process runs h until it succeeds or fails permanently, and returns nil when
// the offset may be committed. It returns the context error if ctx ends first.
func (c *Consumer) process(ctx context.Context, h Handler, m kafka.Message) error {
	delay := c.Backoff
	if delay <= 0 {
		delay = time.Millisecond
	}
	for attempt := 1; ; attempt++ {
		err := h(ctx, m)
		if err == nil {
			return nil
		}
		log := c.log.With(zap.String("topic", m.Topic), zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset), zap.Int("attempt", attempt), zap.Error(err))
		if IsPermanent(err) {
			log.Error("kafka_message_dropped")
			return nil
		}
		log.Warn("kafka_handle_failed", zap.Duration("retry_in", delay))

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		if delay *= 2; c.MaxBackoff > 0 && delay > c.MaxBackoff {
			delay = c.MaxBackoff
		}
	}
}
