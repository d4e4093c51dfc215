package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Paw-Connect/user-service/internal/events"
	"github.com/Paw-Connect/user-service/internal/jwt"
	"github.com/Paw-Connect/user-service/internal/model"
	"github.com/Paw-Connect/user-service/internal/repository"
)

// ErrInvalidCredentials covers both unknown email and wrong password so the
// two cases cannot be told apart from outside.
var ErrInvalidCredentials = errors.New("invalid email or password")

type UserService interface {
	Register(ctx context.Context, name, email, password string, phone *string) (*model.User, error)
	Login(ctx context.Context, email, password string) (accessToken string, userID uuid.UUID, err error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, []model.AvailabilitySlot, error)
	UpdateSkills(ctx context.Context, userID uuid.UUID, skills []string) (*model.User, error)
	ReplaceAvailability(ctx context.Context, userID uuid.UUID, slots []model.AvailabilitySlot) error
}

type userService struct {
	userRepo  repository.UserRepository
	issuer    *jwt.TokenIssuer
	publisher events.EventPublisher
}

func NewUserService(userRepo repository.UserRepository, issuer *jwt.TokenIssuer, publisher events.EventPublisher) UserService {
	return &userService{
		userRepo:  userRepo,
		issuer:    issuer,
		publisher: publisher,
	}
}

func (s *userService) Register(ctx context.Context, name, email, password string, phone *string) (*model.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Phone:        phone,
	}

	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.publisher.PublishUserRegistered(created.ID, created.Email, created.Roles); err != nil {
		slog.Warn("Failed to publish user.registered event", "user_id", created.ID, "error", err)
	}

	return created, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (string, uuid.UUID, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", uuid.Nil, ErrInvalidCredentials
		}
		return "", uuid.Nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", uuid.Nil, ErrInvalidCredentials
	}

	accessToken, err := s.issuer.Issue(user.ID, defaultRoles(user.Roles))
	if err != nil {
		return "", uuid.Nil, err
	}

	return accessToken, user.ID, nil
}

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, []model.AvailabilitySlot, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	// Rows written before the column defaults existed may carry NULL lists.
	user.Roles = defaultRoles(user.Roles)
	if user.Skills == nil {
		user.Skills = model.StringList{}
	}
	if user.Badges == nil {
		user.Badges = model.StringList{}
	}

	slots, err := s.userRepo.ListAvailability(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	return user, slots, nil
}

func (s *userService) UpdateSkills(ctx context.Context, userID uuid.UUID, skills []string) (*model.User, error) {
	if skills == nil {
		skills = []string{}
	}
	return s.userRepo.UpdateSkills(ctx, userID, skills)
}

func (s *userService) ReplaceAvailability(ctx context.Context, userID uuid.UUID, slots []model.AvailabilitySlot) error {
	if err := s.userRepo.ReplaceAvailability(ctx, userID, slots); err != nil {
		return err
	}

	if err := s.publisher.PublishAvailabilityUpdated(userID, len(slots)); err != nil {
		slog.Warn("Failed to publish user.availability_updated event", "user_id", userID, "error", err)
	}

	return nil
}

func defaultRoles(roles model.StringList) model.StringList {
	if len(roles) == 0 {
		return model.StringList{"volunteer"}
	}
	return roles
}
