package api

import (
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Paw-Connect/user-service/internal/model"
	"github.com/Paw-Connect/user-service/internal/repository"
	"github.com/Paw-Connect/user-service/internal/service"
)

type UserHandler struct {
	userService service.UserService
	validate    *validator.Validate
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		validate:    validator.New(),
	}
}

// Presence is the only requirement here; format and length policy belong to
// the clients.
type RegisterRequest struct {
	Name     string  `json:"name" validate:"required"`
	Email    string  `json:"email" validate:"required"`
	Password string  `json:"password" validate:"required"`
	Phone    *string `json:"phone"`
}

func (h *UserHandler) Register(c *fiber.Ctx) error {
	var request RegisterRequest

	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Cannot parse JSON."})
	}

	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Please provide name, email, and password."})
	}

	user, err := h.userService.Register(c.Context(), request.Name, request.Email, request.Password, request.Phone)

	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Email already exists."})
		}

		slog.Error("User registration failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error during user registration."})
	}

	// model.User never serializes the password hash.
	return c.Status(fiber.StatusCreated).JSON(user)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string    `json:"accessToken"`
	UserID      uuid.UUID `json:"userId"`
}

func (h *UserHandler) Login(c *fiber.Ctx) error {
	var request LoginRequest

	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Cannot parse JSON."})
	}

	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Please provide email and password."})
	}

	accessToken, userID, err := h.userService.Login(c.Context(), request.Email, request.Password)

	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid credentials."})
		}

		slog.Error("User login failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error during login."})
	}

	return c.Status(fiber.StatusOK).JSON(LoginResponse{
		AccessToken: accessToken,
		UserID:      userID,
	})
}

type UpdateSkillsRequest struct {
	Skills *[]string `json:"skills"`
}

func (h *UserHandler) UpdateSkills(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid user ID format."})
	}

	var request UpdateSkillsRequest
	if err := c.BodyParser(&request); err != nil || request.Skills == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Skills must be an array."})
	}

	if _, err := h.userService.UpdateSkills(c.Context(), userID, *request.Skills); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found."})
		}

		slog.Error("Updating skills failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error updating skills."})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Skills updated successfully."})
}

type AvailabilitySlotRequest struct {
	DayOfWeek int    `json:"day_of_week" validate:"min=0,max=6"`
	StartTime string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime   string `json:"end_time" validate:"required,datetime=15:04"`
}

type UpdateAvailabilityRequest struct {
	Availability *[]AvailabilitySlotRequest `json:"availability"`
}

func (h *UserHandler) UpdateAvailability(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid user ID format."})
	}

	var request UpdateAvailabilityRequest
	if err := c.BodyParser(&request); err != nil || request.Availability == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Availability must be an array."})
	}

	slots := make([]model.AvailabilitySlot, 0, len(*request.Availability))
	for _, slot := range *request.Availability {
		if err := h.validate.Struct(&slot); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid availability slot."})
		}

		slots = append(slots, model.AvailabilitySlot{
			UserID:    userID,
			DayOfWeek: slot.DayOfWeek,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
		})
	}

	if err := h.userService.ReplaceAvailability(c.Context(), userID, slots); err != nil {
		slog.Error("Updating availability failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error updating availability."})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Availability updated successfully."})
}

type UserProfileResponse struct {
	ID           uuid.UUID                `json:"id"`
	Name         string                   `json:"name"`
	Email        string                   `json:"email"`
	Phone        *string                  `json:"phone,omitempty"`
	Roles        []string                 `json:"roles"`
	Skills       []string                 `json:"skills"`
	Points       int                      `json:"points"`
	Badges       []string                 `json:"badges"`
	Availability []model.AvailabilitySlot `json:"availability"`
	CreatedAt    time.Time                `json:"created_at"`
	UpdatedAt    time.Time                `json:"updated_at"`
}

func (h *UserHandler) GetUserByID(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid user ID format."})
	}

	user, slots, err := h.userService.GetProfile(c.Context(), userID)

	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found."})
		}

		slog.Error("Fetching user profile failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error fetching user."})
	}

	response := UserProfileResponse{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Phone:        user.Phone,
		Roles:        user.Roles,
		Skills:       user.Skills,
		Points:       user.Points,
		Badges:       user.Badges,
		Availability: slots,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// GetProfilesForMatching serves sample volunteer profiles for the AI matching
// service until real aggregation lands there.
func (h *UserHandler) GetProfilesForMatching(c *fiber.Ctx) error {
	slog.Info("Serving sample profiles for matching service")

	profiles := []fiber.Map{
		{
			"userId":   "u-abc-123",
			"skills":   []string{"dog_walking", "medical_care_basic"},
			"location": fiber.Map{"lat": 40.801, "lng": -124.164},
			"availability": []fiber.Map{
				{"day": 6, "start_time": "09:00", "end_time": "13:00"},
			},
		},
		{
			"userId":   "u-def-456",
			"skills":   []string{"social_media", "event_planning"},
			"location": fiber.Map{"lat": 40.866, "lng": -124.082},
			"availability": []fiber.Map{
				{"day": 6, "start_time": "12:00", "end_time": "17:00"},
			},
		},
	}

	return c.Status(fiber.StatusOK).JSON(profiles)
}
