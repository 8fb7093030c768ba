package domain

import (
	"time"

	"farmlink_service/pkg/encrypt"
)

// MemberStatus member state
type MemberStatus int

// 0=offline, 1=online, 2=ban, 3=delete
const (
	// MemberStatusOffLine member is offline
	MemberStatusOffLine MemberStatus = iota
	// MemberStatusOnLine member holds a live session
	MemberStatusOnLine
	// MemberStatusBan member is banned
	MemberStatusBan
	// MemberStatusDelete member is deleted
	MemberStatusDelete
)

// FarmType what the member produces or consumes
type FarmType string

const (
	FarmTypeLivestock FarmType = "livestock"
	FarmTypeCrop      FarmType = "crop"
	FarmTypeMixed     FarmType = "mixed"
)

// Valid reports whether t is a known farm type
func (t FarmType) Valid() bool {
	switch t {
	case FarmTypeLivestock, FarmTypeCrop, FarmTypeMixed:
		return true
	}
	return false
}

// Member a registered farm account
type Member struct {
	ID          int64        `json:"-"`
	MemberID    string       `json:"member_id"`
	Email       string       `json:"email"`
	Password    string       `json:"-"`
	DisplayName string       `json:"display_name"`
	FarmName    string       `json:"farm_name"`
	FarmType    FarmType     `json:"farm_type"`
	Status      MemberStatus `json:"status"`
}

// MemberSession session kept in redis per member
type MemberSession struct {
	Token        string    `json:"Token"`
	MemberID     string    `json:"MemberID"`
	CreatedAt    time.Time `json:"CreatedAt"`
	LastActivity time.Time `json:"LastActivity"`
	ExpiredAt    time.Time `json:"ExpiredAt"`
}

// RegisterInput fields accepted on sign up
type RegisterInput struct {
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	DisplayName string   `json:"display_name"`
	FarmName    string   `json:"farm_name"`
	FarmType    FarmType `json:"farm_type"`
}

// IsPasswordMatch compares inputPwd with the stored hash
func (m *Member) IsPasswordMatch(inputPwd string) error {
	return encrypt.CheckPassword(m.Password, inputPwd)
}

// IsExpired checks whether the session is past ExpiredAt
func (s *MemberSession) IsExpired() bool {
	return time.Now().After(s.ExpiredAt)
}

// MemberQuery join conditions are used to query members
type MemberQuery struct {
	ID       *int64  `db:"id"`
	MemberID *string `db:"member_id"`
	Email    *string `db:"email"`
}
