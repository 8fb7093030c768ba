package app

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strings"
	"time"

	"farmlink_service/internal/chat/domain"
	"farmlink_service/internal/chat/repository"
	"farmlink_service/pkg"
	"farmlink_service/pkg/logger"

	"go.uber.org/zap"
)

// RoomUseCase resolves the single conversation of a user pair per scope
type RoomUseCase struct {
	roomRepo   repository.RoomRepository
	sanitizer  *ParticipantSanitizer
	authorizer *MembershipAuthorizer
	profiles   ProfileStore
	products   ProductStore
	now        func() time.Time
}

// NewRoomUseCase init room use case, products may be nil when only direct conversations are served
func NewRoomUseCase(
	r repository.RoomRepository,
	s *ParticipantSanitizer,
	a *MembershipAuthorizer,
	profiles ProfileStore,
	products ProductStore,
) *RoomUseCase {
	return &RoomUseCase{
		roomRepo:   r,
		sanitizer:  s,
		authorizer: a,
		profiles:   profiles,
		products:   products,
		now:        time.Now,
	}
}

// OpenConversation find-or-create from a caller. An empty otherUserRef is resolved to the seller of scopeID.
func (uc *RoomUseCase) OpenConversation(ctx context.Context, callerID, otherUserRef, scopeID string) (*domain.Conversation, error) {
	otherID := strings.TrimSpace(otherUserRef)
	scopeID = strings.TrimSpace(scopeID)

	if otherID == "" {
		if scopeID == "" || uc.products == nil {
			return nil, domain.ErrMissingCounterpart
		}
		seller, err := uc.products.SellerOf(ctx, scopeID)
		if err != nil {
			return nil, err
		}
		otherID = seller
	}

	return uc.FindOrCreate(ctx, callerID, otherID, scopeID)
}

// FindOrCreate returns the one conversation of selfID and otherID in scopeID, creating it under the derived key when absent
func (uc *RoomUseCase) FindOrCreate(ctx context.Context, selfID, otherID, scopeID string) (*domain.Conversation, error) {
	selfID = strings.TrimSpace(selfID)
	otherID = strings.TrimSpace(otherID)

	if selfID == otherID {
		return nil, domain.ErrSelfConversation
	}
	if !domain.IsValidIdentifier(selfID) || !domain.IsValidIdentifier(otherID) {
		return nil, domain.ErrInvalidIdentifier
	}

	candidates, err := uc.roomRepo.FindByParticipant(ctx, selfID, scopeID)
	if err != nil {
		return nil, err
	}
	for _, c := range candidates {
		if pkg.Contains(uc.sanitizer.Sanitize(c.Participants), otherID) {
			return uc.settle(ctx, c, selfID, otherID), nil
		}
	}

	key := domain.DeriveRoomKey(selfID, otherID, scopeID)
	existing, err := uc.roomRepo.FindByID(ctx, key)
	if err == nil {
		return uc.settle(ctx, existing, selfID, otherID), nil
	}
	if !errors.Is(err, domain.ErrConversationNotFound) {
		return nil, err
	}

	participants := uc.sanitizer.Sanitize([]string{selfID, otherID})
	if len(participants) != 2 {
		logger.Log.Error("conversation creation with broken participant set",
			zap.String("conversation_id", key),
			zap.Int("participants", len(participants)))
		return nil, domain.ErrCreationFailed
	}
	participants = domain.CanonicalPair(participants[0], participants[1])

	names, err := displayNames(ctx, uc.profiles, participants)
	if err != nil {
		return nil, err
	}

	now := uc.now().UnixMilli()
	room := &domain.Conversation{
		ID:               key,
		Participants:     participants,
		ParticipantNames: names,
		ScopeID:          scopeID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if scopeID != "" {
		room.BuyerID = selfID
		room.SellerID = otherID
	}

	created, err := uc.roomRepo.CreateIfAbsent(ctx, room)
	if err != nil {
		return nil, err
	}
	if !created {
		// lost the race, the winner's record is the conversation
		winner, err := uc.roomRepo.FindByID(ctx, key)
		if err != nil {
			return nil, err
		}
		return uc.settle(ctx, winner, selfID, otherID), nil
	}

	logger.Log.Info("conversation created",
		zap.String("conversation_id", key),
		zap.String("scope_id", scopeID))
	return room, nil
}

// settle re-sanitizes a found record. A record found by its key belongs to the pair even when its stored set is damaged.
func (uc *RoomUseCase) settle(ctx context.Context, room *domain.Conversation, selfID, otherID string) *domain.Conversation {
	cleaned := uc.sanitizer.Sanitize(room.Participants)
	if !pkg.Contains(cleaned, selfID) || !pkg.Contains(cleaned, otherID) {
		cleaned = domain.CanonicalPair(selfID, otherID)
	}
	if slices.Equal(cleaned, room.Participants) {
		return room
	}

	// names line up with participants by position, blanks beat stale names
	names, err := displayNames(ctx, uc.profiles, cleaned)
	if err != nil {
		logger.Log.Warn("participant names lookup failed", zap.String("conversation_id", room.ID), zap.Error(err))
		names = make([]string, len(cleaned))
	}

	if err := uc.roomRepo.UpdateParticipants(ctx, room.ID, cleaned, names); err != nil {
		logger.Log.Warn("conversation heal on read failed", zap.String("conversation_id", room.ID), zap.Error(err))
	} else {
		logger.Log.Info("conversation participants healed", zap.String("conversation_id", room.ID))
	}

	room.Participants = cleaned
	room.ParticipantNames = names
	return room
}

// GetConversation a conversation the caller belongs to
func (uc *RoomUseCase) GetConversation(ctx context.Context, conversationID, callerID string) (*domain.Conversation, error) {
	return uc.authorizer.Authorize(ctx, conversationID, callerID)
}

// ListConversations conversations of userID, most recently active first.
// Records whose normalized membership does not include userID are left out.
func (uc *RoomUseCase) ListConversations(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	userID = strings.TrimSpace(userID)
	if !domain.IsValidIdentifier(userID) {
		return nil, domain.ErrInvalidIdentifier
	}

	rooms, err := uc.roomRepo.FindForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]*domain.Conversation, 0, len(rooms))
	for _, room := range rooms {
		m := domain.NormalizeMembership(room)
		if !pkg.Contains(m.Participants, userID) {
			continue
		}
		room.Participants = m.Participants
		result = append(result, room)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].UpdatedAt > result[j].UpdatedAt
	})
	return result, nil
}
