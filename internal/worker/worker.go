package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"edgevision/internal/config"
	"edgevision/internal/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	component   = "Worker"
	consumerTag = "edgevision-worker"
	retryDelay  = 2 * time.Second
	maxAttempts = 10
)

// publisher is the subset of *amqp.Channel used for replies.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Worker struct {
	cfg     config.WorkerConfig
	handler *Handler
	logger  logger.Logger
}

func New(cfg config.WorkerConfig, processor Processor, log logger.Logger) *Worker {
	return &Worker{
		cfg:     cfg,
		handler: NewHandler(processor),
		logger:  log,
	}
}

// Run consumes the request queue until ctx is cancelled or the broker
// connection drops.
func (w *Worker) Run(ctx context.Context) error {
	conn, err := w.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(
		w.cfg.RequestQueue, // name
		true,               // durable
		false,              // delete when unused
		false,              // exclusive
		false,              // no-wait
		nil,                // arguments
	); err != nil {
		return fmt.Errorf("declare queue %s: %w", w.cfg.RequestQueue, err)
	}

	if err := ch.Qos(w.cfg.Prefetch, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	deliveries, err := ch.Consume(
		w.cfg.RequestQueue, // queue
		consumerTag,        // consumer
		false,              // auto-ack
		false,              // exclusive
		false,              // no-local
		false,              // no-wait
		nil,                // args
	)
	if err != nil {
		return fmt.Errorf("consume %s: %w", w.cfg.RequestQueue, err)
	}

	w.logger.Info(component, "consuming", map[string]interface{}{
		"queue":       w.cfg.RequestQueue,
		"prefetch":    w.cfg.Prefetch,
		"concurrency": w.cfg.Concurrency,
	})

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	done := make(chan struct{})
	go func() {
		w.serve(ctx, deliveries, ch)
		close(done)
	}()

	select {
	case <-ctx.Done():
		w.logger.Info(component, "stopping consumer", nil)
		if err := ch.Cancel(consumerTag, false); err != nil {
			w.logger.Warning(component, "cancel consumer failed", map[string]interface{}{"error": err.Error()})
		}
		<-done
		return nil
	case amqpErr := <-closed:
		<-done
		if amqpErr != nil {
			return fmt.Errorf("broker connection closed: %w", amqpErr)
		}
		return nil
	}
}

func (w *Worker) dial(ctx context.Context) (*amqp.Connection, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		conn, err := amqp.Dial(w.cfg.URL)
		if err == nil {
			w.logger.Info(component, "connected to broker", nil)
			return conn, nil
		}
		lastErr = err

		w.logger.Warning(component, "broker dial failed", map[string]interface{}{
			"attempt": attempt,
			"error":   err.Error(),
		})

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	return nil, fmt.Errorf("dial broker after %d attempts: %w", maxAttempts, lastErr)
}

// serve fans deliveries out to Concurrency goroutines and returns once the
// delivery channel is closed and every in-flight message is acked.
func (w *Worker) serve(ctx context.Context, deliveries <-chan amqp.Delivery, pub publisher) {
	workers := w.cfg.Concurrency
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for d := range deliveries {
				w.deliver(ctx, d, pub)
			}
		}()
	}
	wg.Wait()
}

func (w *Worker) deliver(ctx context.Context, d amqp.Delivery, pub publisher) {
	start := time.Now()
	reply := w.handler.Handle(ctx, d.Body)

	// A reply computed under a cancelled context reports the shutdown, not the request.
	if ctx.Err() != nil {
		w.logger.Warning(component, "shutting down, requeueing request", map[string]interface{}{
			"correlation_id": d.CorrelationId,
		})
		if err := d.Nack(false, true); err != nil {
			w.logger.Error(component, err, nil)
		}
		return
	}

	if d.ReplyTo != "" {
		err := pub.PublishWithContext(context.WithoutCancel(ctx), "", d.ReplyTo, false, false, amqp.Publishing{
			ContentType:   "application/json",
			CorrelationId: d.CorrelationId,
			Body:          reply,
		})
		if err != nil {
			w.logger.Error(component, err, map[string]interface{}{
				"correlation_id": d.CorrelationId,
				"reply_to":       d.ReplyTo,
			})
			if nackErr := d.Nack(false, true); nackErr != nil {
				w.logger.Error(component, nackErr, nil)
			}
			return
		}
	}

	if err := d.Ack(false); err != nil {
		w.logger.Error(component, err, map[string]interface{}{"correlation_id": d.CorrelationId})
		return
	}

	w.logger.Debug(component, "request handled", map[string]interface{}{
		"correlation_id": d.CorrelationId,
		"duration_ms":    time.Since(start).Milliseconds(),
	})
}
