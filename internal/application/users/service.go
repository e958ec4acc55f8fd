package users

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"setu-backend/internal/application/emails"
	"setu-backend/internal/domain"
	"setu-backend/internal/infrastructure/database"
	"setu-backend/internal/middleware"
	"setu-backend/internal/pkg/apperror"
	"setu-backend/internal/pkg/constants"
	"setu-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrUserNotFound     = apperror.NotFound("User not found")
	ErrInvalidUserID    = apperror.Invalid("Invalid user ID format (must be a valid UUID)")
	ErrInvalidEmail     = apperror.Invalid("Invalid email format")
	ErrInvalidPassword  = apperror.Invalid("Invalid password format")
	ErrFullnameRequired = apperror.Invalid("Full name is required and must be a non-empty string")
	ErrInvalidFullname  = apperror.Invalid("Full name contains invalid characters (only letters, spaces, hyphens, apostrophes and dots allowed)")
	ErrInvalidRole      = apperror.Invalid("Invalid role")
	ErrEmailTaken       = apperror.Conflict("Email already registered")
	ErrAdminOnly        = apperror.Conflict("Only admins can assign the admin role")
	ErrSelfRoleChange   = apperror.Conflict("Users cannot modify their own role")
	ErrLastAdmin        = apperror.Conflict("At least one admin must remain")
)

// Service holds DB and Redis for user operations. Rdb is used to revoke sessions and may be nil.
// Mailer sends the welcome email and may be nil.
type Service struct {
	DB     *gorm.DB
	Rdb    *redis.Client
	Mailer emails.Sender
}

type CreateUserInput struct {
	Email    string
	Password string
	Fullname string
	Role     string
}

// CreateUser validates and stores a new account. An empty role means viewer.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || !validation.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if !validation.IsValidPassword(in.Password) {
		return nil, ErrInvalidPassword
	}
	trimmed := strings.TrimSpace(in.Fullname)
	if trimmed == "" {
		return nil, ErrFullnameRequired
	}
	if !validation.IsValidFullname(trimmed) {
		return nil, ErrInvalidFullname
	}
	role := in.Role
	if role == "" {
		role = constants.Viewer
	}
	if !constants.IsValidRole(role) {
		return nil, ErrInvalidRole
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := domain.User{
		Fullname:     titleCaseAndNormalize(trimmed),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.DB.WithContext(ctx).Create(&u).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	log.Info().Str("user_id", u.UserID.String()).Str("role", u.Role).Msg("user created")
	if s.Mailer != nil {
		if err := s.Mailer.SendWelcome(ctx, u.Email, u.Fullname, u.Role); err != nil {
			log.Warn().Err(err).Str("user_id", u.UserID.String()).Msg("welcome email not sent")
		}
	}
	return &u, nil
}

// ViewUser returns user by ID.
func (s *Service) ViewUser(ctx context.Context, userID string) (*domain.User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrInvalidUserID
	}
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// List returns users ordered by name, optionally filtered by role.
func (s *Service) List(ctx context.Context, role string) ([]domain.User, error) {
	q := s.DB.WithContext(ctx).Model(&domain.User{})
	if role != "" {
		if !constants.IsValidRole(role) {
			return nil, ErrInvalidRole
		}
		q = q.Where("role = ?", role)
	}
	var out []domain.User
	if err := q.Order("fullname ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type UpdateRoleInput struct {
	ActorUserID  string
	ActorRole    string
	TargetUserID string
	TargetRole   string
}

// UpdateRole changes a user's role and revokes every session they hold so the new role applies on next login.
func (s *Service) UpdateRole(ctx context.Context, in UpdateRoleInput) (*domain.User, error) {
	if !constants.IsValidRole(in.TargetRole) {
		return nil, ErrInvalidRole
	}
	if in.TargetRole == constants.Admin && in.ActorRole != constants.Admin {
		return nil, ErrAdminOnly
	}
	if in.ActorUserID == in.TargetUserID {
		return nil, ErrSelfRoleChange
	}
	targetID, err := uuid.Parse(in.TargetUserID)
	if err != nil {
		return nil, ErrInvalidUserID
	}

	var u domain.User
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if database.IsPostgres(tx) {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.Where("user_id = ?", targetID).First(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if u.Role == constants.Admin && in.TargetRole != constants.Admin {
			var admins int64
			if err := tx.Model(&domain.User{}).Where("role = ?", constants.Admin).Count(&admins).Error; err != nil {
				return err
			}
			if admins <= 1 {
				return ErrLastAdmin
			}
		}
		u.Role = in.TargetRole
		return tx.Model(&u).Update("role", in.TargetRole).Error
	})
	if err != nil {
		return nil, err
	}
	middleware.DestroyUserSessions(ctx, s.Rdb, u.UserID.String())
	log.Info().Str("actor", in.ActorUserID).Str("user_id", u.UserID.String()).Str("role", u.Role).Msg("user role updated")
	return &u, nil
}

func titleCaseAndNormalize(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	var b strings.Builder
	capitalize := true
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !capitalize {
				b.WriteRune(' ')
				capitalize = true
			}
			continue
		}
		if capitalize {
			b.WriteRune(unicode.ToUpper(r))
			capitalize = false
		} else {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
