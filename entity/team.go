package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentStatus string

const (
	PaymentIncomplete PaymentStatus = "incomplete"
	PaymentPending    PaymentStatus = "pending"
	PaymentAccepted   PaymentStatus = "accepted"
	PaymentRejected   PaymentStatus = "rejected"
)

func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch PaymentStatus(s) {
	case PaymentIncomplete, PaymentPending, PaymentAccepted, PaymentRejected:
		return PaymentStatus(s), true
	}

	return "", false
}

// MaxTeamSize counts the leader, so a team is the leader plus three others.
const MaxTeamSize = 4

type Payment struct {
	Status      PaymentStatus `bson:"status" json:"status"`
	LastUpdated time.Time     `bson:"last_updated" json:"lastUpdated"`
}

type Team struct {
	ID       primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name     string               `bson:"name" json:"name"`
	LeaderID primitive.ObjectID   `bson:"leader_id" json:"leaderId"`
	Members  []primitive.ObjectID `bson:"members" json:"members"`
	Ranking  int64                `bson:"ranking" json:"ranking"`
	Payment  Payment              `bson:"payment" json:"payment"`
}

func (t *Team) HasMember(id primitive.ObjectID) bool {
	for _, m := range t.Members {
		if m == id {
			return true
		}
	}

	return false
}
