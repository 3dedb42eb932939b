package receipts

import "time"

// Receipt is the journal entry for one ledger submission. Callers that lose
// track of an outstanding submission (timeout, dropped connection) look the
// receipt up by submission id instead of retrying blind.
type Receipt struct {
	SubmissionID string    `json:"submissionId" bson:"submissionId"`
	Kind         string    `json:"kind" bson:"kind"`
	DocumentID   string    `json:"documentId" bson:"documentId"`
	Actor        string    `json:"actor" bson:"actor"`
	Status       string    `json:"status" bson:"status"`
	Reason       string    `json:"reason,omitempty" bson:"reason,omitempty"`
	SubmittedAt  time.Time `json:"submittedAt" bson:"submittedAt"`
	ResolvedAt   time.Time `json:"resolvedAt,omitempty" bson:"resolvedAt,omitempty"`
}

// Receipt statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusRejected  = "rejected"
)
