package domain

import (
	"slices"
	"strings"
)

// SanitizeParticipants trims entries, drops empty and invalid ones and removes duplicates keeping first-seen order
func SanitizeParticipants(raw []string) []string {
	cleaned := make([]string, 0, len(raw))
	for _, entry := range raw {
		entry = strings.TrimSpace(entry)
		if !IsValidIdentifier(entry) || slices.Contains(cleaned, entry) {
			continue
		}
		cleaned = append(cleaned, entry)
	}
	return cleaned
}

// CanonicalPair orders two identifiers lexicographically
func CanonicalPair(a, b string) []string {
	if b < a {
		a, b = b, a
	}
	return []string{a, b}
}

// MembershipSource tells where a normalized participant set came from
type MembershipSource int

const (
	// SourceParticipants the stored participant set was already clean
	SourceParticipants MembershipSource = iota
	// SourceLegacyPair rebuilt from buyer_id / seller_id
	SourceLegacyPair
	// SourceCorrupted the stored set is damaged and no legacy pair could replace it
	SourceCorrupted
)

func (s MembershipSource) String() string {
	switch s {
	case SourceParticipants:
		return "participants"
	case SourceLegacyPair:
		return "legacy_pair"
	default:
		return "corrupted"
	}
}

// Membership normalized view of who belongs to a conversation
type Membership struct {
	Participants []string
	Source       MembershipSource
	// Changed the normalized participants differ from what is stored
	Changed bool
}

// NormalizeMembership maps both record shapes, participant set and legacy buyer/seller pair, onto one participant set.
// A stored set that loses entries to sanitization or does not hold two members is replaced by a valid legacy pair.
func NormalizeMembership(c *Conversation) Membership {
	cleaned := SanitizeParticipants(c.Participants)
	corrupted := len(cleaned) != len(c.Participants) || len(cleaned) != 2

	m := Membership{Participants: cleaned, Source: SourceParticipants}
	if corrupted {
		if pair, ok := c.LegacyPair(); ok {
			m.Participants = pair
			m.Source = SourceLegacyPair
		} else {
			m.Source = SourceCorrupted
		}
	}
	m.Changed = !slices.Equal(m.Participants, c.Participants)
	return m
}
