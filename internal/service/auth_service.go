package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/tarot-service/internal/auth"
	"github.com/spec-kit/tarot-service/internal/config"
	"github.com/spec-kit/tarot-service/internal/domain"
	"github.com/spec-kit/tarot-service/internal/repository"
	apperrors "github.com/spec-kit/tarot-service/pkg/util"
)

// UpgradeCostVND is the simulated price of the user -> render upgrade.
const UpgradeCostVND = 50_000

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthService coordinates registration, login, and the role-upgrade flow.
type AuthService struct {
	users      repository.UserRepository
	upgrades   repository.UpgradeRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	UpgradeRepo repository.UpgradeRepository
}

// UpgradeResult describes a completed role upgrade.
type UpgradeResult struct {
	User    *domain.User
	Record  *domain.UpgradeRecord
	Payment PaymentReceipt
	Token   string
	Expires time.Time
}

// PaymentReceipt is the simulated payment outcome. A real gateway (VNPay,
// MoMo) would replace this.
type PaymentReceipt struct {
	Method   string `json:"method"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		upgrades:   deps.UpgradeRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// TokenManager exposes the token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Register creates a new account with the default user role.
func (s *AuthService) Register(ctx context.Context, email, username, password string, phone *string) (*domain.User, string, time.Time, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	username = strings.TrimSpace(username)

	if !emailPattern.MatchString(email) {
		return nil, "", time.Time{}, apperrors.NewValidationError("invalid email address", nil)
	}
	if utf8.RuneCountInString(password) < 6 {
		return nil, "", time.Time{}, apperrors.NewValidationError("password must be at least 6 characters", nil)
	}
	if utf8.RuneCountInString(username) < 3 {
		return nil, "", time.Time{}, apperrors.NewValidationError("username must be at least 3 characters", nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user := &domain.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Phone:        phone,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// The GetByEmail pre-check races with concurrent registrations; the
		// unique index is the authority.
		if apperrors.IsUniqueViolation(err) {
			return nil, "", time.Time{}, apperrors.NewConflict("email already registered", nil)
		}
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Login authenticates by email and password. The error does not reveal
// whether the email exists.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid email or password")
		}
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid email or password")
	}
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Upgrade promotes a user to render after a simulated payment and records
// the transaction. A fresh token is issued carrying the new role.
func (s *AuthService) Upgrade(ctx context.Context, actor *domain.User) (*UpgradeResult, error) {
	switch actor.Role {
	case domain.RoleRender:
		return nil, apperrors.NewValidationError("account already has the render role", nil)
	case domain.RoleAdmin:
		return nil, apperrors.NewValidationError("admin accounts do not need an upgrade", nil)
	}

	updated, record, err := s.upgrades.RecordUpgrade(ctx, actor.ID, actor.Role, domain.RoleRender, UpgradeCostVND)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}

	token, exp, err := s.tokenMgr.GenerateToken(updated.ID, updated.Role)
	if err != nil {
		return nil, err
	}

	return &UpgradeResult{
		User:   updated,
		Record: record,
		Payment: PaymentReceipt{
			Method:   "simulated",
			Amount:   UpgradeCostVND,
			Currency: "VND",
			Status:   "success",
		},
		Token:   token,
		Expires: exp,
	}, nil
}

// UpgradeHistory returns the actor's upgrade records and whether another
// upgrade is possible.
func (s *AuthService) UpgradeHistory(ctx context.Context, actor *domain.User) ([]domain.UpgradeRecord, bool, error) {
	records, err := s.upgrades.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, false, err
	}
	return records, actor.Role == domain.RoleUser, nil
}
