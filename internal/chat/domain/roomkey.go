package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

const (
	// RoomKeyLength hex characters kept from the digest
	RoomKeyLength  = 32
	pairSeparator  = "_"
	scopeSeparator = "_scope_"
)

// DeriveRoomKey returns the canonical conversation id for a pair of users and an optional scope.
// The pair is sorted first so the key does not depend on who asks.
func DeriveRoomKey(userA, userB, scopeID string) string {
	pair := CanonicalPair(userA, userB)
	seed := pair[0] + pairSeparator + pair[1]
	if scopeID != "" {
		seed += scopeSeparator + scopeID
	}

	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])[:RoomKeyLength]
}
