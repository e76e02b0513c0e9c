package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReportReason enum
type ReportReason string

const (
	ReasonFake          ReportReason = "fake"
	ReasonExpired       ReportReason = "expired"
	ReasonInappropriate ReportReason = "inappropriate"
)

// ValidReportReasons is the set of accepted report reasons.
var ValidReportReasons = map[ReportReason]bool{
	ReasonFake: true, ReasonExpired: true, ReasonInappropriate: true,
}

// Report flags a listing for review. Reports are write-only; they have
// no effect on the listing itself.
type Report struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ListingID   primitive.ObjectID `bson:"listingId" json:"listingId"`
	Reason      ReportReason       `bson:"reason" json:"reason"`
	ReporterID  string             `bson:"reporterId" json:"reporterId"`
	Description *string            `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
