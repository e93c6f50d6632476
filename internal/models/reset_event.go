package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Действия журнала сброса пароля.
const (
	ResetActionRequested = "requested"
	ResetActionVerified  = "verified"
	ResetActionCompleted = "completed"
	ResetActionCleanup   = "cleanup"
)

// ResetEvent — запись журнала сброса паролей (MongoDB).
// Email хранится в замаскированном виде.
type ResetEvent struct {
	ID       bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Action   string        `bson:"action" json:"action"`
	UserType UserType      `bson:"user_type,omitempty" json:"user_type,omitempty"`
	Email    string        `bson:"email,omitempty" json:"email,omitempty"`
	TokenID  int64         `bson:"token_id,omitempty" json:"token_id,omitempty"`
	Count    int64         `bson:"count,omitempty" json:"count,omitempty"`
	At       time.Time     `bson:"at" json:"at"`
}
