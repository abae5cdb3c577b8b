// Copyright 2026 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package notify publishes run summaries to a message queue.
package notify

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/walteh/certsync/pkg/status"
	"gitlab.com/tozd/go/errors"
)

const publishTimeout = 5 * time.Second

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// 📣 Publisher sends JSON run summaries to a durable queue
type Publisher struct {
	conn  *amqp.Connection
	ch    channel
	queue string
}

// 🔌 Dial connects to the broker and declares the queue
func Dial(uri, queue string) (*Publisher, error) {
	if queue == "" {
		return nil, errors.New("queue name is required")
	}

	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, errors.Errorf("dialing broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Errorf("opening channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, errors.Errorf("declaring queue %s: %w", queue, err)
	}

	return &Publisher{conn: conn, ch: ch, queue: queue}, nil
}

// 📤 Publish sends the summary as a persistent JSON message
func (p *Publisher) Publish(ctx context.Context, s *status.Summary) error {
	body, err := s.JSON()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    s.RunID.String(),
			Timestamp:    time.Now(),
			Type:         "certsync.run." + s.Command,
			Headers: amqp.Table{
				"success": s.Success(),
				"dry_run": s.DryRun,
			},
			Body: body,
		},
	)
	if err != nil {
		return errors.Errorf("publishing summary: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("queue", p.queue).Str("run_id", s.RunID.String()).Msg("summary published")
	return nil
}

// Close shuts the channel and the connection.
func (p *Publisher) Close() error {
	var errCh, errConn error
	if p.ch != nil {
		errCh = p.ch.Close()
	}
	if p.conn != nil {
		errConn = p.conn.Close()
	}
	return errors.Join(errCh, errConn)
}
