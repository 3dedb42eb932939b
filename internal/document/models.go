package document

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

// Document is the persistent record for a registered document. AllowedSigners
// keeps insertion order for display; Signatures is an append-only history and
// is never purged, even when a signer is later removed from AllowedSigners.
type Document struct {
	ID             string    `json:"id" bson:"id"`
	Title          string    `json:"title" bson:"title"`
	ContentRef     string    `json:"contentRef" bson:"contentRef"`
	Owner          string    `json:"owner" bson:"owner"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
	AllowedSigners []string  `json:"allowedSigners" bson:"allowedSigners"`
	Signatures     []string  `json:"signatures" bson:"signatures"`
}

// Status is the derived signing state of a document.
type Status string

const (
	StatusDraft             Status = "draft"
	StatusPendingSignatures Status = "pending_signatures"
	StatusFullySigned       Status = "fully_signed"
)

// NewID draws a document id from a 128-bit random space. Ids are generated by
// the creating client, not assigned by storage; uniqueness is probabilistic.
func NewID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return "doc_" + hex.EncodeToString(b)
}

// NormalizeIdentity canonicalizes an address for membership comparisons.
func NormalizeIdentity(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// Status derives the document state: draft while no signers are allowed,
// fully signed once every allowed signer has a recorded signature.
func (d *Document) Status() Status {
	if len(d.AllowedSigners) == 0 {
		return StatusDraft
	}
	for _, s := range d.AllowedSigners {
		if !d.HasSigned(s) {
			return StatusPendingSignatures
		}
	}
	return StatusFullySigned
}

// IsAuthorized reports whether identity is currently in the allowed-signer list.
func (d *Document) IsAuthorized(identity string) bool {
	identity = NormalizeIdentity(identity)
	for _, s := range d.AllowedSigners {
		if NormalizeIdentity(s) == identity {
			return true
		}
	}
	return false
}

// HasSigned reports whether identity has a recorded signature.
func (d *Document) HasSigned(identity string) bool {
	identity = NormalizeIdentity(identity)
	for _, s := range d.Signatures {
		if NormalizeIdentity(s) == identity {
			return true
		}
	}
	return false
}

// Validate checks the structural preconditions for a document to exist in
// created state.
func (d *Document) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrValidation
	}
	if strings.TrimSpace(d.ContentRef) == "" {
		return ErrValidation
	}
	if NormalizeIdentity(d.Owner) == "" {
		return ErrValidation
	}
	if d.ID == "" {
		return ErrValidation
	}
	return nil
}
