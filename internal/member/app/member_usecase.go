package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"farmlink_service/internal/member/domain"
	"farmlink_service/internal/member/repository"
	"farmlink_service/pkg/database"
	"farmlink_service/pkg/encrypt"
	errprocess "farmlink_service/pkg/err"
	"farmlink_service/pkg/logger"
	"farmlink_service/pkg/token"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MemberUseCase member application service
type MemberUseCase interface {
	Register(ctx context.Context, input domain.RegisterInput) (*domain.Member, error)
	FindMember(ctx context.Context, param *domain.MemberQuery) (*domain.Member, error)
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, token string) error
	CheckSessionTimeout(ctx context.Context, token string) (bool, error)
	ReconnectSession(ctx context.Context, token string) error
}

type memberUseCase struct {
	memberRepo   repository.MemberRepository
	sessionTTL   time.Duration
	redisRepo    database.RedisRepository[domain.MemberSession]
	tokens       *token.Manager
	hashPassword func(string) (string, error)
}

// NewMemberUseCase create a MemberUseCase
func NewMemberUseCase(memberRepo repository.MemberRepository,
	sessionTTL time.Duration,
	redisRepo database.RedisRepository[domain.MemberSession],
	tokens *token.Manager,
	hashPassword func(string) (string, error),
) MemberUseCase {
	if hashPassword == nil {
		hashPassword = encrypt.HashPassword
	}
	return &memberUseCase{
		memberRepo:   memberRepo,
		sessionTTL:   sessionTTL,
		redisRepo:    redisRepo,
		tokens:       tokens,
		hashPassword: hashPassword,
	}
}

// Register creates a member with a fresh member id
func (m *memberUseCase) Register(ctx context.Context, input domain.RegisterInput) (*domain.Member, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, errprocess.Wrap(errprocess.CodeInvalidArgument, "a valid email is required", domain.ErrInvalidRegister)
	}
	if input.FarmType != "" && !input.FarmType.Valid() {
		return nil, errprocess.Wrap(errprocess.CodeInvalidArgument, "unknown farm type", domain.ErrInvalidRegister)
	}
	if err := encrypt.ValidatePasswordStrength(input.Password); err != nil {
		return nil, errprocess.Wrap(errprocess.CodeInvalidArgument, err.Error(), domain.ErrInvalidRegister)
	}

	_, err := m.memberRepo.FindByMember(ctx, &domain.MemberQuery{Email: &email})
	if err == nil {
		return nil, domain.ErrEmailExists
	}
	if !errors.Is(err, domain.ErrMemberNotFound) {
		return nil, err
	}

	pw, err := m.hashPassword(input.Password)
	if err != nil {
		logger.Log.Errorf("password hash failed", err)
		return nil, errprocess.Wrap(errprocess.CodeInternal, "register failed", err)
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = strings.TrimSpace(input.FarmName)
	}
	member := &domain.Member{
		MemberID:    uuid.New().String(),
		Email:       email,
		Password:    pw,
		DisplayName: displayName,
		FarmName:    strings.TrimSpace(input.FarmName),
		FarmType:    input.FarmType,
	}

	if err := m.memberRepo.CreateUser(ctx, member); err != nil {
		return nil, err
	}
	logger.Log.Info("member registered", zap.String("member_id", member.MemberID))

	return member, nil
}

// FindMember query a member by id, member id or email
func (m *memberUseCase) FindMember(ctx context.Context, param *domain.MemberQuery) (*domain.Member, error) {
	return m.memberRepo.FindByMember(ctx, param)
}

// Login checks the password, stores a session and returns a credential
func (m *memberUseCase) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	member, err := m.memberRepo.FindByMember(ctx, &domain.MemberQuery{Email: &email})
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			logger.Log.Debug("login with unknown email")
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}

	if err = member.IsPasswordMatch(password); err != nil {
		logger.Log.Debug("login password mismatch", zap.String("member_id", member.MemberID))
		return "", domain.ErrInvalidCredentials
	}

	t, err := m.tokens.Generate(member.MemberID, string(token.RoleMember))
	if err != nil {
		return "", errprocess.Wrap(errprocess.CodeInternal, "issue token failed", err)
	}

	now := time.Now()
	session := domain.MemberSession{
		Token:        t,
		MemberID:     member.MemberID,
		CreatedAt:    now,
		LastActivity: now,
		ExpiredAt:    now.Add(m.sessionTTL),
	}
	if err := m.redisRepo.Set(ctx, member.MemberID, session, m.sessionTTL); err != nil {
		return "", errprocess.Wrap(errprocess.CodeUnavailable, "session store unavailable", err)
	}

	member.Status = domain.MemberStatusOnLine
	if err := m.memberRepo.UpdateMemberStatus(ctx, member); err != nil {
		return "", err
	}

	return t, nil
}

// Logout drops the member's session
func (m *memberUseCase) Logout(ctx context.Context, t string) error {
	claims, err := m.tokens.Parse(t)
	if err != nil {
		return errprocess.Wrap(errprocess.CodeUnauthenticated, "invalid token", err)
	}

	if err := m.redisRepo.Del(ctx, claims.MemberID); err != nil {
		logger.Log.Warn("session delete failed", zap.String("member_id", claims.MemberID), zap.Error(err))
	}

	return m.memberRepo.UpdateMemberStatus(ctx, &domain.Member{
		MemberID: claims.MemberID,
		Status:   domain.MemberStatusOffLine,
	})
}

// CheckSessionTimeout true when the member behind t no longer has a live session
func (m *memberUseCase) CheckSessionTimeout(ctx context.Context, t string) (bool, error) {
	claims, err := m.tokens.Parse(t)
	if err != nil {
		return true, errprocess.Wrap(errprocess.CodeUnauthenticated, "invalid token", err)
	}

	ttl, err := m.redisRepo.GetTTL(ctx, claims.MemberID)
	if err != nil {
		return true, err
	}
	return ttl <= 0, nil
}

// ReconnectSession extends the session of the member behind t
func (m *memberUseCase) ReconnectSession(ctx context.Context, t string) error {
	claims, err := m.tokens.Parse(t)
	if err != nil {
		return errprocess.Wrap(errprocess.CodeUnauthenticated, "invalid token", err)
	}
	return m.redisRepo.ExtendTTL(ctx, claims.MemberID, m.sessionTTL)
}
