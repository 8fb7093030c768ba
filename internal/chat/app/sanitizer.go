package app

import (
	"context"
	"strings"
	"time"

	"farmlink_service/internal/chat/domain"
	"farmlink_service/pkg"
	"farmlink_service/pkg/logger"

	"go.uber.org/zap"
)

// ParticipantSanitizer cleans stored participant lists and can recover ids from stray credentials
type ParticipantSanitizer struct {
	verifier CredentialVerifier
	timeout  time.Duration
}

// NewParticipantSanitizer verifier may be nil, recovery is skipped then
func NewParticipantSanitizer(verifier CredentialVerifier, timeout time.Duration) *ParticipantSanitizer {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &ParticipantSanitizer{verifier: verifier, timeout: timeout}
}

// Sanitize trims, drops invalid entries and dedups keeping first-seen order
func (s *ParticipantSanitizer) Sanitize(raw []string) []string {
	return domain.SanitizeParticipants(raw)
}

// Recover sanitizes raw, then appends ids decoded from entries shaped like credentials.
// Undecodable entries are dropped.
func (s *ParticipantSanitizer) Recover(ctx context.Context, raw []string) []string {
	cleaned := domain.SanitizeParticipants(raw)
	if s.verifier == nil {
		return cleaned
	}

	for _, entry := range raw {
		entry = strings.TrimSpace(entry)
		if domain.IsValidIdentifier(entry) || !domain.LooksLikeCredential(entry) {
			continue
		}

		id, err := s.decode(ctx, entry)
		if err != nil {
			logger.Log.Debug("participant credential not decodable", zap.Error(err))
			continue
		}
		id = strings.TrimSpace(id)
		if !domain.IsValidIdentifier(id) {
			continue
		}
		cleaned = pkg.AppendIfNotExists(cleaned, id)
	}
	return cleaned
}

func (s *ParticipantSanitizer) decode(ctx context.Context, credential string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.verifier.VerifyCredential(ctx, credential)
}
