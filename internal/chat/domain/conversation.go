package domain

import "farmlink_service/pkg"

// Conversation one dialogue between exactly two users, optionally scoped to a product listing.
// Records written before the participants field existed only carry BuyerID / SellerID.
type Conversation struct {
	ID               string   `bson:"_id" json:"id"`
	Participants     []string `bson:"participants" json:"participants"`
	ParticipantNames []string `bson:"participant_names,omitempty" json:"participant_names,omitempty"`
	ScopeID          string   `bson:"scope_id,omitempty" json:"scope_id,omitempty"`

	// legacy pair
	BuyerID  string `bson:"buyer_id,omitempty" json:"buyer_id,omitempty"`
	SellerID string `bson:"seller_id,omitempty" json:"seller_id,omitempty"`

	LastMessageText     string `bson:"last_message_text" json:"last_message_text"`
	LastMessageSenderID string `bson:"last_message_sender_id" json:"last_message_sender_id"`
	CreatedAt           int64  `bson:"created_at" json:"created_at"` // unix millis
	UpdatedAt           int64  `bson:"updated_at" json:"updated_at"` // unix millis
}

// LegacyPair returns the buyer/seller pair in canonical order when both are valid and distinct
func (c *Conversation) LegacyPair() ([]string, bool) {
	if !IsValidIdentifier(c.BuyerID) || !IsValidIdentifier(c.SellerID) || c.BuyerID == c.SellerID {
		return nil, false
	}
	return CanonicalPair(c.BuyerID, c.SellerID), true
}

// LegacyCounterpart returns the other legacy party when userID is one of them and the other is valid
func (c *Conversation) LegacyCounterpart(userID string) (string, bool) {
	var other string
	switch userID {
	case "":
		return "", false
	case c.BuyerID:
		other = c.SellerID
	case c.SellerID:
		other = c.BuyerID
	default:
		return "", false
	}
	if !IsValidIdentifier(other) || other == userID {
		return "", false
	}
	return other, true
}

// HasParticipant reports whether userID is in the stored participant set
func (c *Conversation) HasParticipant(userID string) bool {
	return pkg.Contains(c.Participants, userID)
}

// OtherParticipant returns the participant that is not self, only for a two member set containing self
func (c *Conversation) OtherParticipant(self string) (string, bool) {
	if len(c.Participants) != 2 || !c.HasParticipant(self) {
		return "", false
	}
	if c.Participants[0] == self {
		return c.Participants[1], c.Participants[1] != self
	}
	return c.Participants[0], true
}
