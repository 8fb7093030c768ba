package repository

import (
	"context"
	"errors"
	"fmt"

	"farmlink_service/internal/member/domain"
	errprocess "farmlink_service/pkg/err"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// MemberRepository definition get Member info
type MemberRepository interface {
	CreateUser(ctx context.Context, user *domain.Member) error
	UpdateMemberStatus(ctx context.Context, user *domain.Member) error
	FindByMember(ctx context.Context, memberQuery *domain.MemberQuery) (*domain.Member, error)
}

type memberRepository struct {
	db *pgxpool.Pool
}

// NewMemberRepository create a MemberRepository
func NewMemberRepository(db *pgxpool.Pool) MemberRepository {
	return &memberRepository{db: db}
}

// Migrate creates the member table when missing
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, `CREATE TABLE IF NOT EXISTS member (
		id           BIGSERIAL PRIMARY KEY,
		member_id    VARCHAR(100) UNIQUE NOT NULL,
		email        VARCHAR(255) UNIQUE NOT NULL,
		password     VARCHAR(255) NOT NULL,
		display_name VARCHAR(255) NOT NULL DEFAULT '',
		farm_name    VARCHAR(255) NOT NULL DEFAULT '',
		farm_type    VARCHAR(32)  NOT NULL DEFAULT '',
		status       INT          NOT NULL DEFAULT 0
	)`)
	return err
}

func (r *memberRepository) CreateUser(ctx context.Context, member *domain.Member) error {
	_, err := r.db.Exec(ctx,
		"INSERT INTO member(member_id, email, password, display_name, farm_name, farm_type) VALUES ($1, $2, $3, $4, $5, $6)",
		member.MemberID, member.Email, member.Password, member.DisplayName, member.FarmName, string(member.FarmType))
	return err
}

func (r *memberRepository) UpdateMemberStatus(ctx context.Context, member *domain.Member) error {
	_, err := r.db.Exec(ctx, "UPDATE member SET status = $1 WHERE member_id = $2", member.Status, member.MemberID)
	return err
}

func (r *memberRepository) FindByMember(ctx context.Context, memberQuery *domain.MemberQuery) (*domain.Member, error) {
	queryStr := "SELECT id, member_id, email, password, display_name, farm_name, farm_type, status FROM member WHERE 1=1"
	params := []interface{}{}
	paramCount := 1

	if memberQuery.Email != nil {
		queryStr += fmt.Sprintf(" AND email = $%d", paramCount)
		params = append(params, *memberQuery.Email)
		paramCount++
	}
	if memberQuery.MemberID != nil {
		queryStr += fmt.Sprintf(" AND member_id = $%d", paramCount)
		params = append(params, *memberQuery.MemberID)
		paramCount++
	}
	if memberQuery.ID != nil {
		queryStr += fmt.Sprintf(" AND id = $%d", paramCount)
		params = append(params, *memberQuery.ID)
	}

	row := r.db.QueryRow(ctx, queryStr, params...)
	var (
		member   domain.Member
		farmType string
	)
	err := row.Scan(&member.ID, &member.MemberID, &member.Email, &member.Password,
		&member.DisplayName, &member.FarmName, &farmType, &member.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, errprocess.Wrap(errprocess.CodeUnavailable, "member store unavailable", err)
	}
	member.FarmType = domain.FarmType(farmType)

	return &member, nil
}
