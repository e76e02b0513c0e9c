package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Device is an installation record. The DeviceID is a locally
// meaningless uuid minted at registration; it is the only identity in
// the system and is not tied to any account. Resetting a device mints
// a new id and orphans everything the old one posted.
type Device struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DeviceID  string             `bson:"deviceId" json:"deviceId"`
	Platform  string             `bson:"platform,omitempty" json:"platform,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
