package repository

import (
	"context"
	"errors"

	memberdomain "farmlink_service/internal/member/domain"
	memberrepo "farmlink_service/internal/member/repository"
)

// ProfileRepository display names read from the member table
type ProfileRepository struct {
	members memberrepo.MemberRepository
}

// NewProfileRepository create ProfileRepository
func NewProfileRepository(members memberrepo.MemberRepository) *ProfileRepository {
	return &ProfileRepository{members: members}
}

// DisplayName empty when the member is unknown
func (p *ProfileRepository) DisplayName(ctx context.Context, userID string) (string, error) {
	m, err := p.members.FindByMember(ctx, &memberdomain.MemberQuery{MemberID: &userID})
	if errors.Is(err, memberdomain.ErrMemberNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if m.DisplayName != "" {
		return m.DisplayName, nil
	}
	return m.FarmName, nil
}
