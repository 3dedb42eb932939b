package signers

import "time"

// Profile is display metadata for a signer address. Profiles are owner-supplied
// and carry no authorization weight; the allowed-signer list on the document is
// the only authority for who may sign.
type Profile struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Address   string    `bson:"address" json:"address"`
	Name      string    `bson:"name,omitempty" json:"name,omitempty"`
	Email     string    `bson:"email,omitempty" json:"email,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
