package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/dealer-service/internal/api/dto"
	"github.com/spec-kit/dealer-service/internal/auth"
	"github.com/spec-kit/dealer-service/internal/domain"
	"github.com/spec-kit/dealer-service/internal/repository"
	"github.com/spec-kit/dealer-service/internal/service"
	apperrors "github.com/spec-kit/dealer-service/pkg/util/errorutil"
)

// UsersHandler exposes user administration and profile endpoints.
type UsersHandler struct {
	users *service.UserService
	auth  *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService, authService *service.AuthService) *UsersHandler {
	return &UsersHandler{users: userService, auth: authService}
}

// Create handles POST /users (superadmin only). The created account is
// inactive until the invitee redeems the returned activation token.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.FirstName == "" || req.LastName == "" {
		return apperrors.NewValidationError("firstName, lastName, email required", nil)
	}
	role, err := parseRole(req.Role)
	if err != nil {
		return err
	}

	user, err := h.users.CreateUser(c.Context(), actorOf(principal), service.UserCreateInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Role:        role,
	})
	if err != nil {
		return err
	}

	activation, err := h.auth.NewActivationToken(c.Context(), user.ID)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user":            userSummary(user),
			"activationToken": activation.Token,
		},
	})
}

// List handles GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	filter := repository.UserFilter{
		Limit:  parseIntQuery(c, "limit", 50),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if role := c.Query("role"); role != "" {
		parsed, err := parseRole(role)
		if err != nil {
			return err
		}
		filter.Role = &parsed
	}
	if active := c.Query("isActive"); active != "" {
		parsed, err := strconv.ParseBool(active)
		if err != nil {
			return apperrors.NewValidationError("invalid isActive", nil)
		}
		filter.IsActive = &parsed
	}

	users, err := h.users.ListUsers(c.Context(), filter)
	if err != nil {
		return err
	}

	items := make([]dto.UserSummary, 0, len(users))
	for i := range users {
		items = append(items, userSummary(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get handles GET /users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	user, err := h.users.GetUser(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userSummary(user)})
}

// Update handles PATCH /users/:id (superadmin only).
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.UserUpdateInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		IsActive:    req.IsActive,
	}
	if req.Role != nil {
		role, err := parseRole(*req.Role)
		if err != nil {
			return err
		}
		input.Role = &role
	}

	user, err := h.users.UpdateUser(c.Context(), actorOf(principal), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userSummary(user)})
}

// Me handles GET /users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": userSummary(principal.User)})
}

// UpdateMe handles PATCH /users/me.
func (h *UsersHandler) UpdateMe(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.users.UpdateProfile(c.Context(), principal.User.ID, service.ProfileUpdateInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userSummary(user)})
}

func userSummary(user *domain.User) dto.UserSummary {
	return dto.UserSummary{
		ID:          user.ID,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		Role:        string(user.Role),
		AvatarURL:   user.AvatarURL,
		IsActive:    user.IsActive,
		CreatedAt:   user.CreatedAt,
	}
}

func actorOf(principal *auth.Principal) *domain.User {
	if principal == nil {
		return nil
	}
	return principal.User
}

func parseRole(raw string) (domain.UserRole, error) {
	switch domain.UserRole(raw) {
	case domain.RoleSuperadmin, domain.RoleManager, domain.RoleSales:
		return domain.UserRole(raw), nil
	default:
		return "", apperrors.NewValidationError("invalid role", map[string]any{"role": raw})
	}
}

func parseIntQuery(c *fiber.Ctx, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
