package app

import (
	"context"
	"fmt"
	"slices"
	"testing"

	"farmlink_service/internal/chat/domain"
	errprocess "farmlink_service/pkg/err"
	"farmlink_service/pkg/logger"

	"github.com/cucumber/godog"
	"github.com/stretchr/testify/mock"
)

type conversationFeature struct {
	fixture  *chatFixture
	products stubProducts
	room     *domain.Conversation
	err      error
}

func (s *conversationFeature) reset(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
	s.fixture = newChatFixture(nil)
	s.fixture.notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	s.products = stubProducts{}
	s.fixture.roomUC.products = s.products
	s.room, s.err = nil, nil
	return ctx, nil
}

func (s *conversationFeature) productIsListedBy(product, seller string) error {
	s.products[product] = seller
	return nil
}

func (s *conversationFeature) opensAboutProduct(ctx context.Context, caller, product string) error {
	s.room, s.err = s.fixture.roomUC.OpenConversation(ctx, caller, "", product)
	return nil
}

func (s *conversationFeature) opensWithAboutProduct(ctx context.Context, caller, other, product string) error {
	s.room, s.err = s.fixture.roomUC.OpenConversation(ctx, caller, other, product)
	return nil
}

func (s *conversationFeature) opensWith(ctx context.Context, caller, other string) error {
	s.room, s.err = s.fixture.roomUC.OpenConversation(ctx, caller, other, "")
	return nil
}

func (s *conversationFeature) opensConversation(ctx context.Context, caller, id string) error {
	s.room, s.err = s.fixture.roomUC.GetConversation(ctx, id, caller)
	return nil
}

func (s *conversationFeature) conversationBetween(id, a, b string) error {
	return s.seed(&domain.Conversation{ID: id, Participants: []string{a, b}})
}

func (s *conversationFeature) legacyConversation(id, buyer, seller string) error {
	return s.seed(&domain.Conversation{ID: id, BuyerID: buyer, SellerID: seller})
}

func (s *conversationFeature) seed(room *domain.Conversation) error {
	created, err := s.fixture.rooms.CreateIfAbsent(context.Background(), room)
	if err != nil || !created {
		return fmt.Errorf("seed %s: created=%v err=%v", room.ID, created, err)
	}
	return nil
}

func (s *conversationFeature) posts(ctx context.Context, caller, text string) error {
	if s.err != nil || s.room == nil {
		return fmt.Errorf("no open conversation: %v", s.err)
	}
	_, s.err = s.fixture.msgUC.PostMessage(ctx, s.room.ID, caller, text)
	return s.err
}

func (s *conversationFeature) postsIn(ctx context.Context, caller, text, id string) error {
	_, s.err = s.fixture.msgUC.PostMessage(ctx, id, caller, text)
	return nil
}

func (s *conversationFeature) hasParticipants(a, b string) error {
	if s.err != nil {
		return s.err
	}
	if !slices.Equal(s.room.Participants, domain.CanonicalPair(a, b)) {
		return fmt.Errorf("participants %v, want %s and %s", s.room.Participants, a, b)
	}
	return nil
}

func (s *conversationFeature) scopeIs(scope string) error {
	if s.room.ScopeID != scope {
		return fmt.Errorf("scope %q, want %q", s.room.ScopeID, scope)
	}
	return nil
}

func (s *conversationFeature) lastSenderIs(sender string) error {
	stored := s.fixture.rooms.get(s.room.ID)
	if stored.LastMessageSenderID != sender {
		return fmt.Errorf("last sender %q, want %q", stored.LastMessageSenderID, sender)
	}
	return nil
}

func (s *conversationFeature) notificationAttemptedFor(receiver string) error {
	s.fixture.msgUC.Wait()
	for _, call := range s.fixture.notifier.Calls {
		if call.Method == "Notify" && call.Arguments.String(1) == receiver {
			return nil
		}
	}
	return fmt.Errorf("no notification for %s", receiver)
}

func (s *conversationFeature) seesWithLastMessage(ctx context.Context, user, text string) error {
	rooms, err := s.fixture.roomUC.ListConversations(ctx, user)
	if err != nil {
		return err
	}
	for _, r := range rooms {
		if r.ID == s.room.ID && r.LastMessageText == text {
			return nil
		}
	}
	return fmt.Errorf("%s does not see conversation %s with %q", user, s.room.ID, text)
}

func (s *conversationFeature) onlyOneConversation() error {
	if n := s.fixture.rooms.count(); n != 1 {
		return fmt.Errorf("%d conversations stored", n)
	}
	return nil
}

func (s *conversationFeature) rejectedWith(code string) error {
	if s.err == nil {
		return fmt.Errorf("request succeeded, want %s", code)
	}
	if got := errprocess.CodeOf(s.err); string(got) != code {
		return fmt.Errorf("code %s, want %s", got, code)
	}
	return nil
}

func (s *conversationFeature) storedParticipants(id, a, b string) error {
	stored := s.fixture.rooms.get(id)
	if stored == nil {
		return fmt.Errorf("conversation %s missing", id)
	}
	if !slices.Equal(stored.Participants, domain.CanonicalPair(a, b)) {
		return fmt.Errorf("stored participants %v", stored.Participants)
	}
	return nil
}

func initializeConversationScenario(ctx *godog.ScenarioContext) {
	s := &conversationFeature{}
	ctx.Before(s.reset)

	ctx.Step(`^product "([^"]*)" is listed by "([^"]*)"$`, s.productIsListedBy)
	ctx.Step(`^a conversation "([^"]*)" between "([^"]*)" and "([^"]*)"$`, s.conversationBetween)
	ctx.Step(`^a legacy conversation "([^"]*)" with buyer "([^"]*)" and seller "([^"]*)"$`, s.legacyConversation)
	ctx.Step(`^"([^"]*)" opens a conversation about product "([^"]*)"$`, s.opensAboutProduct)
	ctx.Step(`^"([^"]*)" opens a conversation with "([^"]*)" about product "([^"]*)"$`, s.opensWithAboutProduct)
	ctx.Step(`^"([^"]*)" opens a conversation with "([^"]*)"$`, s.opensWith)
	ctx.Step(`^"([^"]*)" opens conversation "([^"]*)"$`, s.opensConversation)
	ctx.Step(`^"([^"]*)" posts "([^"]*)"$`, s.posts)
	ctx.Step(`^"([^"]*)" posts "([^"]*)" in "([^"]*)"$`, s.postsIn)
	ctx.Step(`^the conversation has participants "([^"]*)" and "([^"]*)"$`, s.hasParticipants)
	ctx.Step(`^the conversation scope is "([^"]*)"$`, s.scopeIs)
	ctx.Step(`^the last message sender is "([^"]*)"$`, s.lastSenderIs)
	ctx.Step(`^a notification was attempted for "([^"]*)"$`, s.notificationAttemptedFor)
	ctx.Step(`^"([^"]*)" sees the conversation with last message "([^"]*)"$`, s.seesWithLastMessage)
	ctx.Step(`^only one conversation exists$`, s.onlyOneConversation)
	ctx.Step(`^the request is rejected with "([^"]*)"$`, s.rejectedWith)
	ctx.Step(`^conversation "([^"]*)" has stored participants "([^"]*)" and "([^"]*)"$`, s.storedParticipants)
}

func TestConversationFeatures(t *testing.T) {
	logger.SetNewNop()
	suite := godog.TestSuite{
		ScenarioInitializer: initializeConversationScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"testdata/features"},
			Strict:   true,
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
