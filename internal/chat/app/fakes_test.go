package app

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"farmlink_service/internal/chat/domain"
	"farmlink_service/pkg"
	errprocess "farmlink_service/pkg/err"

	"github.com/stretchr/testify/mock"
)

// memRoomRepo in-memory RoomRepository keyed like the mongo collection
type memRoomRepo struct {
	mu        sync.Mutex
	rooms     map[string]*domain.Conversation
	order     []string
	updateErr error
	// failUpdates fails that many UpdateParticipants calls before updateErr applies
	failUpdates int
	updates     int
}

func newMemRoomRepo(rooms ...*domain.Conversation) *memRoomRepo {
	r := &memRoomRepo{rooms: map[string]*domain.Conversation{}}
	for _, room := range rooms {
		r.rooms[room.ID] = cloneRoom(room)
		r.order = append(r.order, room.ID)
	}
	return r
}

func cloneRoom(c *domain.Conversation) *domain.Conversation {
	cp := *c
	cp.Participants = slices.Clone(c.Participants)
	cp.ParticipantNames = slices.Clone(c.ParticipantNames)
	return &cp
}

func (r *memRoomRepo) get(id string) *domain.Conversation {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room, ok := r.rooms[id]; ok {
		return cloneRoom(room)
	}
	return nil
}

func (r *memRoomRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

func (r *memRoomRepo) FindByID(_ context.Context, id string) (*domain.Conversation, error) {
	if room := r.get(id); room != nil {
		return room, nil
	}
	return nil, domain.ErrConversationNotFound
}

func (r *memRoomRepo) FindByParticipant(_ context.Context, userID, scopeID string) ([]*domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Conversation
	for _, id := range r.order {
		room := r.rooms[id]
		if !pkg.Contains(room.Participants, userID) {
			continue
		}
		if scopeID != "" && room.ScopeID != scopeID {
			continue
		}
		out = append(out, cloneRoom(room))
	}
	return out, nil
}

func (r *memRoomRepo) FindForUser(_ context.Context, userID string) ([]*domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Conversation
	for _, id := range r.order {
		room := r.rooms[id]
		if pkg.Contains(room.Participants, userID) || room.BuyerID == userID || room.SellerID == userID {
			out = append(out, cloneRoom(room))
		}
	}
	return out, nil
}

func (r *memRoomRepo) CreateIfAbsent(_ context.Context, room *domain.Conversation) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[room.ID]; ok {
		return false, nil
	}
	r.rooms[room.ID] = cloneRoom(room)
	r.order = append(r.order, room.ID)
	return true, nil
}

func (r *memRoomRepo) UpdateParticipants(_ context.Context, id string, participants, names []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdates > 0 {
		r.failUpdates--
		return errors.New("write conflict")
	}
	if r.updateErr != nil {
		return r.updateErr
	}
	room, ok := r.rooms[id]
	if !ok {
		return domain.ErrConversationNotFound
	}
	r.updates++
	room.Participants = slices.Clone(participants)
	if names != nil {
		room.ParticipantNames = slices.Clone(names)
	}
	return nil
}

func (r *memRoomRepo) UpdateSummary(_ context.Context, id, text, senderID string, updatedAt int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return domain.ErrConversationNotFound
	}
	room.LastMessageText = text
	room.LastMessageSenderID = senderID
	room.UpdatedAt = updatedAt
	return nil
}

// memMessageRepo in-memory MessageRepository
type memMessageRepo struct {
	mu       sync.Mutex
	messages []domain.Message
}

func (r *memMessageRepo) all() []domain.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.messages)
}

func (r *memMessageRepo) Append(_ context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *memMessageRepo) ListByConversation(_ context.Context, conversationID string) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Message{}
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

func (r *memMessageRepo) MarkRead(_ context.Context, conversationID, receiverID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.messages {
		m := &r.messages[i]
		if m.ConversationID == conversationID && m.ReceiverID == receiverID && !m.Read {
			m.Read = true
			n++
		}
	}
	return n, nil
}

func (r *memMessageRepo) CountUnreadByRoom(_ context.Context, userID string) ([]domain.RoomUnreadInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byRoom := map[string]*domain.RoomUnreadInfo{}
	for _, m := range r.messages {
		if m.ReceiverID != userID || m.Read {
			continue
		}
		info, ok := byRoom[m.ConversationID]
		if !ok {
			info = &domain.RoomUnreadInfo{ConversationID: m.ConversationID}
			byRoom[m.ConversationID] = info
		}
		info.UnreadCount++
		info.LastUnreadTimestamp = max(info.LastUnreadTimestamp, m.Timestamp)
	}
	out := []domain.RoomUnreadInfo{}
	for _, info := range byRoom {
		out = append(out, *info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastUnreadTimestamp > out[j].LastUnreadTimestamp })
	return out, nil
}

// MockNotifier Mock Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, userID string, n domain.Notification) error {
	args := m.Called(ctx, userID, n)
	return args.Error(0)
}

// MockRoomRepository Mock RoomRepository for paths the in-memory repo cannot reach
type MockRoomRepository struct {
	mock.Mock
}

func (m *MockRoomRepository) FindByID(ctx context.Context, id string) (*domain.Conversation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRoomRepository) FindByParticipant(ctx context.Context, userID, scopeID string) ([]*domain.Conversation, error) {
	args := m.Called(ctx, userID, scopeID)
	if args.Get(0) != nil {
		return args.Get(0).([]*domain.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRoomRepository) FindForUser(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).([]*domain.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRoomRepository) CreateIfAbsent(ctx context.Context, room *domain.Conversation) (bool, error) {
	args := m.Called(ctx, room)
	return args.Bool(0), args.Error(1)
}

func (m *MockRoomRepository) UpdateParticipants(ctx context.Context, id string, participants, names []string) error {
	args := m.Called(ctx, id, participants, names)
	return args.Error(0)
}

func (m *MockRoomRepository) UpdateSummary(ctx context.Context, id, text, senderID string, updatedAt int64) error {
	args := m.Called(ctx, id, text, senderID, updatedAt)
	return args.Error(0)
}

// stubVerifier decodes only the credentials it knows
type stubVerifier struct {
	ids   map[string]string
	delay time.Duration
}

func (s stubVerifier) VerifyCredential(ctx context.Context, credential string) (string, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if id, ok := s.ids[credential]; ok {
		return id, nil
	}
	return "", errors.New("invalid token")
}

type stubProfiles map[string]string

func (s stubProfiles) DisplayName(_ context.Context, userID string) (string, error) {
	return s[userID], nil
}

type stubProducts map[string]string

func (s stubProducts) SellerOf(_ context.Context, productID string) (string, error) {
	if seller, ok := s[productID]; ok {
		return seller, nil
	}
	return "", errprocess.New(errprocess.CodeNotFound, "product not found")
}

// chatFixture wires the use cases over in-memory stores
type chatFixture struct {
	rooms    *memRoomRepo
	messages *memMessageRepo
	notifier *MockNotifier
	roomUC   *RoomUseCase
	msgUC    *MessageUseCase
}

func newChatFixture(verifier CredentialVerifier, rooms ...*domain.Conversation) *chatFixture {
	f := &chatFixture{
		rooms:    newMemRoomRepo(rooms...),
		messages: &memMessageRepo{},
		notifier: new(MockNotifier),
	}
	profiles := stubProfiles{"u1": "สมชาย", "u2": "ไร่ข้าวใหม่"}
	sanitizer := NewParticipantSanitizer(verifier, 50*time.Millisecond)
	authorizer := NewMembershipAuthorizer(f.rooms, sanitizer, profiles)
	f.roomUC = NewRoomUseCase(f.rooms, sanitizer, authorizer, profiles, stubProducts{"p1": "u2"})
	f.msgUC = NewMessageUseCase(authorizer, f.rooms, f.messages, f.notifier, 0, time.Second)
	return f
}
