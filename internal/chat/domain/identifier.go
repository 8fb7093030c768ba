package domain

import (
	"strings"
	"unicode/utf8"
)

const (
	// MaxIdentifierLength longest string accepted as a user identifier.
	// Issued identifiers are uuids (36 chars), bearer credentials run to hundreds of chars.
	MaxIdentifierLength = 100
	// CredentialDelimiter separates the segments of a bearer credential and never appears in an identifier
	CredentialDelimiter = "."
	// credentialSegments header, claims and signature
	credentialSegments = 3
)

// IsValidIdentifier reports whether s can be stored as a participant
func IsValidIdentifier(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	if utf8.RuneCountInString(s) > MaxIdentifierLength {
		return false
	}
	return !strings.Contains(s, CredentialDelimiter)
}

// LooksLikeCredential reports whether s has the shape of a bearer credential, three non-empty dot separated segments
func LooksLikeCredential(s string) bool {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, CredentialDelimiter)
	if len(parts) != credentialSegments {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
	}
	return true
}
