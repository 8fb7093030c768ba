package app

import (
	"context"
	"slices"

	"farmlink_service/internal/chat/domain"
	"farmlink_service/internal/chat/repository"
	"farmlink_service/pkg/logger"

	"go.uber.org/zap"
)

// MembershipAuthorizer decides whether a caller may act on a conversation, repairing stored membership on the way
type MembershipAuthorizer struct {
	roomRepo  repository.RoomRepository
	sanitizer *ParticipantSanitizer
	profiles  ProfileStore
}

// NewMembershipAuthorizer create MembershipAuthorizer
func NewMembershipAuthorizer(r repository.RoomRepository, s *ParticipantSanitizer, p ProfileStore) *MembershipAuthorizer {
	return &MembershipAuthorizer{
		roomRepo:  r,
		sanitizer: s,
		profiles:  p,
	}
}

// Authorize returns the conversation with healed participants when callerID belongs to it.
//
//  1. load, not found is returned as is
//  2. normalize; a damaged set is replaced by the legacy pair, or expanded by credential recovery, and persisted
//  3. member of the healed set: allowed
//  4. otherwise a legacy party whose slot was lost (fewer than two members left, none of them a third user)
//     gets the legacy pair back and is allowed
//  5. everything else is denied, a clean pair is never widened
func (a *MembershipAuthorizer) Authorize(ctx context.Context, conversationID, callerID string) (*domain.Conversation, error) {
	room, err := a.roomRepo.FindByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	a.heal(ctx, room)

	if room.HasParticipant(callerID) {
		return room, nil
	}

	if counterpart, ok := room.LegacyCounterpart(callerID); ok && lostSlot(room.Participants, callerID, counterpart) {
		if err := a.persist(ctx, room, domain.CanonicalPair(callerID, counterpart)); err != nil {
			logger.Log.Warn("legacy member heal failed, denying",
				zap.String("conversation_id", room.ID),
				zap.String("caller_id", callerID),
				zap.Error(err))
			return nil, domain.ErrDenied
		}
		return room, nil
	}

	logger.Log.Debug("conversation access denied",
		zap.String("conversation_id", room.ID),
		zap.String("caller_id", callerID))
	return nil, domain.ErrDenied
}

// heal rewrites room.Participants in place. When the write fails only the strictly sanitized set is kept.
func (a *MembershipAuthorizer) heal(ctx context.Context, room *domain.Conversation) {
	m := domain.NormalizeMembership(room)
	participants := m.Participants
	if m.Source == domain.SourceCorrupted {
		// undecodable credentials are dropped from storage too
		participants = a.sanitizer.Recover(ctx, room.Participants)
	}
	if slices.Equal(participants, room.Participants) {
		return
	}

	if err := a.persist(ctx, room, participants); err != nil {
		logger.Log.Warn("conversation heal failed",
			zap.String("conversation_id", room.ID),
			zap.String("source", m.Source.String()),
			zap.Error(err))
		room.Participants = a.sanitizer.Sanitize(room.Participants)
	}
}

// persist writes participants, names are refreshed best effort
func (a *MembershipAuthorizer) persist(ctx context.Context, room *domain.Conversation, participants []string) error {
	names, err := displayNames(ctx, a.profiles, participants)
	if err != nil {
		logger.Log.Warn("participant names lookup failed", zap.String("conversation_id", room.ID), zap.Error(err))
		names = make([]string, len(participants))
	}

	if err := a.roomRepo.UpdateParticipants(ctx, room.ID, participants, names); err != nil {
		return err
	}

	logger.Log.Info("conversation participants healed",
		zap.String("conversation_id", room.ID),
		zap.Int("stored_entries", len(room.Participants)),
		zap.Strings("after", participants))
	room.Participants = participants
	room.ParticipantNames = names
	return nil
}

// lostSlot reports whether participants is a damaged remnant of the legacy pair
func lostSlot(participants []string, callerID, counterpart string) bool {
	if len(participants) >= 2 {
		return false
	}
	for _, p := range participants {
		if p != callerID && p != counterpart {
			return false
		}
	}
	return true
}
