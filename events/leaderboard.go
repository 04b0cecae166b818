package events

import (
	"bytes"
	"context"
	"encoding/gob"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"hackreg-backend/entity"
	"hackreg-backend/errs"
	"hackreg-backend/log"
)

type LeaderboardEventType int

const (
	LRanking LeaderboardEventType = iota
	LPayment
)

type LeaderboardEvent struct {
	Type          LeaderboardEventType
	TeamID        string
	Ranking       int64
	PaymentStatus entity.PaymentStatus
}

// ConsumeLeaderboard binds an exclusive queue to the leaderboard exchange and
// forwards decoded events until the context is cancelled.
func ConsumeLeaderboard(ctx context.Context) (<-chan *LeaderboardEvent, error) {
	if e == nil {
		return nil, errs.ErrQueue
	}

	ch := make(chan *LeaderboardEvent)

	rch, err := e.Conn.Channel()
	if err != nil {
		return nil, err
	}
	q, err := rch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return nil, err
	}

	err = rch.QueueBind(
		q.Name,
		"",
		LeaderboardExchange,
		false,
		nil,
	)
	if err != nil {
		return nil, err
	}

	msgs, err := rch.Consume(q.Name, uuid.New().String(), true, false, false, false, nil)
	if err != nil {
		return nil, err
	}

	go forwardLeaderboard(ctx, msgs, ch, rch.Close)

	return ch, nil
}

// forwardLeaderboard decodes deliveries onto ch until the context is
// cancelled. Every send is guarded by the context, so a receiver that went
// away cannot strand the goroutine or its channel.
func forwardLeaderboard(ctx context.Context, msgs <-chan amqp.Delivery, ch chan<- *LeaderboardEvent, closeCh func() error) {
	defer func() {
		err := closeCh()
		if err != nil {
			log.Logger.Error("unable to close channel", zap.Error(err))
		}
	}()

	for {
		var d amqp.Delivery
		var ok bool
		select {
		case <-ctx.Done():
			return
		case d, ok = <-msgs:
			if !ok {
				return
			}
		}

		var p *LeaderboardEvent
		b := bytes.NewReader(d.Body)
		err := gob.NewDecoder(b).Decode(&p)
		if err != nil {
			log.Logger.Error("unable to decode event", zap.Error(err))
			continue
		}

		select {
		case <-ctx.Done():
			return
		case ch <- p:
		}
	}
}

func PublishLeaderboard(event *LeaderboardEvent) error {
	if e == nil {
		return errs.ErrQueue
	}

	var b bytes.Buffer
	err := gob.NewEncoder(&b).Encode(event)
	if err != nil {
		return err
	}

	rch, err := e.Conn.Channel()
	if err != nil {
		return err
	}
	defer rch.Close()
	err = rch.Publish(LeaderboardExchange, "", false, false, amqp.Publishing{
		ContentType: "application/octet-stream",
		Body:        b.Bytes(),
	})
	if err != nil {
		return err
	}

	return nil
}
