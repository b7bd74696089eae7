package dto

import (
	"time"

	"github.com/spec-kit/tarot-service/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Email    string  `json:"email"`
	Username string  `json:"username"`
	Password string  `json:"password"`
	Phone    *string `json:"phone,omitempty"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserPublic is a user stripped of credentials.
type UserPublic struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Username  string      `json:"username"`
	Role      domain.Role `json:"role"`
	Phone     *string     `json:"phone,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      UserPublic `json:"user"`
}

// UpdateRoleRequest payload for admin role changes.
type UpdateRoleRequest struct {
	Role domain.Role `json:"role"`
}

// UpgradeRecordResponse is one role-upgrade payment record.
type UpgradeRecordResponse struct {
	ID        string      `json:"id"`
	FromRole  domain.Role `json:"from_role"`
	ToRole    domain.Role `json:"to_role"`
	AmountVND int64       `json:"amount_vnd"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewUserPublic maps a domain user.
func NewUserPublic(user *domain.User) UserPublic {
	return UserPublic{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		Role:      user.Role,
		Phone:     user.Phone,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// NewUpgradeRecordResponse maps a domain upgrade record.
func NewUpgradeRecordResponse(record *domain.UpgradeRecord) UpgradeRecordResponse {
	return UpgradeRecordResponse{
		ID:        record.ID,
		FromRole:  record.FromRole,
		ToRole:    record.ToRole,
		AmountVND: record.AmountVND,
		CreatedAt: record.CreatedAt,
	}
}
