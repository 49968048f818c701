package models

import (
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EmailAddress struct {
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
}

// InboundEmail is the parsed metadata of one fetched email, written by the
// mail-ingestion layer and consumed by the assignment worker. The engine
// never sees raw RFC 2822 content, only this record.
type InboundEmail struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	AccountID   string             `json:"accountId" bson:"accountId"`
	MessageID   string             `json:"messageId,omitempty" bson:"messageId,omitempty"`
	UID         uint32             `json:"uid,omitempty" bson:"uid,omitempty"`
	Subject     string             `json:"subject" bson:"subject"`
	From        EmailAddress       `json:"from" bson:"from"`
	BodyPreview string             `json:"bodyPreview" bson:"bodyPreview"`
	ReceivedAt  time.Time          `json:"receivedAt" bson:"receivedAt"`
	Processed   bool               `json:"processed" bson:"processed"`
	ProcessedAt *time.Time         `json:"processedAt,omitempty" bson:"processedAt,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
}

// Identity returns the stable identifier used for assignment uniqueness:
// the message id when present, otherwise the mailbox UID.
func (e *InboundEmail) Identity() string {
	if e.MessageID != "" {
		return e.MessageID
	}
	return "uid:" + strconv.FormatUint(uint64(e.UID), 10)
}
