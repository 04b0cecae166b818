package events

import (
	"time"

	"github.com/streadway/amqp"

	"hackreg-backend/log"
)

const (
	LeaderboardExchange = "leaderboard"
)

type Events struct {
	Conn *amqp.Connection
}

var e *Events

// EnsureEvents dials the broker with backoff and declares the exchanges.
// Called once at startup; a broker that never comes up is fatal.
func EnsureEvents(connString string) {
	if e != nil {
		return
	}

	log.Logger.Info("Trying to connect to rabbitmq...")

	var conn *amqp.Connection
	t := time.Second
	for i := 0; i < 6; i++ {
		var err error
		conn, err = amqp.Dial(connString)
		if err != nil {
			if i == 5 {
				panic(err)
			}
			time.Sleep(t)
			t *= 2

			continue
		}

		break
	}
	log.Logger.Info("Connected to rabbitmq")

	ch, err := conn.Channel()
	if err != nil {
		panic(err)
	}
	defer ch.Close()

	err = ch.ExchangeDeclare(
		LeaderboardExchange,
		"fanout",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		panic(err)
	}

	e = &Events{
		Conn: conn,
	}
}
