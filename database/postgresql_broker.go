// Copyright (C) 2025 l3montree GmbH
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package database

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/l3montree-dev/cvesync/monitoring"
	"github.com/l3montree-dev/cvesync/shared"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

type PostgreSQLMessage struct {
	ID        string               `json:"id"`
	Channel   shared.PubSubChannel `json:"topic"`
	Payload   map[string]any       `json:"payload"`
	Timestamp time.Time            `json:"timestamp"`
	SenderID  string               `json:"sender_id,omitempty"`
}

type listeningConnection struct {
	conn        *pgxpool.Conn
	cancel      context.CancelFunc
	subscribers []chan map[string]any
}

// PostgreSQLBroker distributes messages between instances using LISTEN/NOTIFY.
type PostgreSQLBroker struct {
	db           *pgxpool.Pool
	subscribers  map[shared.PubSubChannel]*listeningConnection
	subscribeMux sync.RWMutex
	wg           sync.WaitGroup
	// ID identifies the instance, own messages are never delivered back
	ID string
}

var _ shared.PubSubBroker = &PostgreSQLBroker{}

func NewPostgreSQLBroker(db *pgxpool.Pool) *PostgreSQLBroker {
	return &PostgreSQLBroker{
		db:          db,
		subscribers: make(map[shared.PubSubChannel]*listeningConnection),
		ID:          uuid.New().String(),
	}
}

func (b *PostgreSQLBroker) Publish(ctx context.Context, channel shared.PubSubChannel, payload map[string]any) error {
	pgMessage := PostgreSQLMessage{
		ID:        uuid.New().String(),
		Channel:   channel,
		Payload:   payload,
		Timestamp: time.Now(),
		SenderID:  b.ID,
	}

	messageJSON, err := json.Marshal(pgMessage)
	if err != nil {
		return errors.Wrap(err, "could not marshal message")
	}

	if _, err := b.db.Exec(ctx, "SELECT pg_notify($1, $2)", string(channel), string(messageJSON)); err != nil {
		return errors.Wrap(err, "could not send notification")
	}

	slog.Debug("message published", "topic", channel, "messageID", pgMessage.ID)
	return nil
}

func (b *PostgreSQLBroker) Subscribe(ctx context.Context, channel shared.PubSubChannel) (<-chan map[string]any, error) {
	b.subscribeMux.Lock()
	defer b.subscribeMux.Unlock()

	ch := make(chan map[string]any, 100)

	if listening, exists := b.subscribers[channel]; exists {
		listening.subscribers = append(listening.subscribers, ch)
		return ch, nil
	}

	acquireCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	conn, err := b.db.Acquire(acquireCtx)
	if err != nil {
		return nil, errors.Wrap(err, "could not acquire connection for listening")
	}
	if _, err = conn.Exec(acquireCtx, "LISTEN "+pq.QuoteIdentifier(string(channel))); err != nil {
		conn.Release()
		return nil, errors.Wrapf(err, "could not listen on %s", channel)
	}

	listenCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	listening := &listeningConnection{
		conn:        conn,
		cancel:      stop,
		subscribers: []chan map[string]any{ch},
	}
	b.subscribers[channel] = listening

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.processMessages(listenCtx, channel, listening)
	}()
	context.AfterFunc(ctx, stop)

	return ch, nil
}

func (b *PostgreSQLBroker) processMessages(ctx context.Context, channel shared.PubSubChannel, listening *listeningConnection) {
	defer func() {
		listening.conn.Release()
		b.subscribeMux.Lock()
		delete(b.subscribers, channel)
		for _, subscriber := range listening.subscribers {
			close(subscriber)
		}
		b.subscribeMux.Unlock()
	}()

	for {
		notification, err := listening.conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() == nil {
				monitoring.Alert("could not listen for notifications", err)
			}
			return
		}
		if notification == nil || notification.Channel != string(channel) {
			continue
		}

		var message PostgreSQLMessage
		if err := json.Unmarshal([]byte(notification.Payload), &message); err != nil {
			slog.Error("could not unmarshal message", "err", err, "payload", notification.Payload)
			continue
		}
		if message.SenderID == b.ID {
			continue
		}

		b.subscribeMux.RLock()
		for _, subscriber := range listening.subscribers {
			select {
			case subscriber <- message.Payload:
			default:
				slog.Warn("subscriber channel full, dropping message", "topic", channel, "messageID", message.ID)
			}
		}
		b.subscribeMux.RUnlock()
	}
}

// Close stops all listeners and waits for them to release their connections.
func (b *PostgreSQLBroker) Close() {
	b.subscribeMux.RLock()
	for _, listening := range b.subscribers {
		listening.cancel()
	}
	b.subscribeMux.RUnlock()
	b.wg.Wait()
}
