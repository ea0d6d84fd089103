package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/dealer-service/internal/domain"
	"github.com/spec-kit/dealer-service/internal/events"
	"github.com/spec-kit/dealer-service/internal/repository"
	apperrors "github.com/spec-kit/dealer-service/pkg/util/errorutil"
)

// UserService manages dealership staff accounts and profiles.
type UserService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, dispatcher events.Dispatcher, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, dispatcher: dispatcher, logger: logger}
}

// UserCreateInput carries fields for inviting a new user. The account starts
// inactive; an activation token lets the invitee set a password.
type UserCreateInput struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Role        domain.UserRole
}

// CreateUser invites a new user.
func (s *UserService) CreateUser(ctx context.Context, actor *domain.User, input UserCreateInput) (*domain.User, error) {
	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	user := &domain.User{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		PhoneNumber: input.PhoneNumber,
		Role:        input.Role,
		IsActive:    false,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventUserCreated, user.ID, actor, events.UserChangedPayload{
		Email: user.Email,
		Role:  user.Role,
	})
	return user, nil
}

// UserUpdateInput carries optional fields for updating a user.
type UserUpdateInput struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
	Role        *domain.UserRole
	IsActive    *bool
}

// UpdateUser applies the given changes to an account.
func (s *UserService) UpdateUser(ctx context.Context, actor *domain.User, id string, input UserUpdateInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.PhoneNumber != nil {
		user.PhoneNumber = *input.PhoneNumber
	}
	if input.Role != nil {
		user.Role = *input.Role
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventUserUpdated, user.ID, actor, events.UserChangedPayload{
		Email: user.Email,
		Role:  user.Role,
	})
	return user, nil
}

// ProfileUpdateInput carries self-service profile fields.
type ProfileUpdateInput struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
	AvatarURL   *string
}

// UpdateProfile lets a user edit their own profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input ProfileUpdateInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.PhoneNumber != nil {
		user.PhoneNumber = *input.PhoneNumber
	}
	if input.AvatarURL != nil {
		user.AvatarURL = input.AvatarURL
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser fetches a single user.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	return user, nil
}

// ListUsers returns users matching the filter.
func (s *UserService) ListUsers(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	return s.users.List(ctx, filter)
}

func (s *UserService) publish(ctx context.Context, eventType events.EventType, entityID string, actor *domain.User, payload any) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		EntityType: "user",
		EntityID:   entityID,
		Timestamp:  time.Now(),
		Payload:    payload,
	}
	if actor != nil {
		id := actor.ID
		event.Actor = events.Actor{UserID: &id, Name: actor.FullName()}
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event", zap.String("type", string(eventType)), zap.Error(err))
	}
}
