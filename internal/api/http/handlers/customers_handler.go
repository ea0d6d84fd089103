package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/dealer-service/internal/api/dto"
	"github.com/spec-kit/dealer-service/internal/auth"
	"github.com/spec-kit/dealer-service/internal/domain"
	"github.com/spec-kit/dealer-service/internal/service"
	apperrors "github.com/spec-kit/dealer-service/pkg/util/errorutil"
)

// CustomersHandler exposes customer CRUD, search, and assignment endpoints.
type CustomersHandler struct {
	customers *service.CustomerService
}

// NewCustomersHandler constructs handler.
func NewCustomersHandler(customerService *service.CustomerService) *CustomersHandler {
	return &CustomersHandler{customers: customerService}
}

// Create handles POST /customers.
func (h *CustomersHandler) Create(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	var req dto.CustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.FirstName == "" || req.LastName == "" {
		return apperrors.NewValidationError("firstName, lastName, email required", nil)
	}

	customer, err := h.customers.CreateCustomer(c.Context(), actorOf(principal), service.CustomerInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": customerSummary(customer)})
}

// List handles GET /customers.
func (h *CustomersHandler) List(c *fiber.Ctx) error {
	customers, err := h.customers.ListCustomers(c.Context(), parseIntQuery(c, "limit", 50), parseIntQuery(c, "offset", 0))
	if err != nil {
		return err
	}
	items := make([]dto.CustomerSummary, 0, len(customers))
	for i := range customers {
		items = append(items, customerSummary(&customers[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Search handles GET /customers/search?email=. It returns a bare candidate
// array so the autocomplete client can consume it without unwrapping.
func (h *CustomersHandler) Search(c *fiber.Ctx) error {
	customers, err := h.customers.SearchByEmail(c.Context(), c.Query("email"))
	if err != nil {
		return err
	}
	candidates := make([]dto.CustomerCandidate, 0, len(customers))
	for i := range customers {
		candidates = append(candidates, dto.CustomerCandidate{
			ID:          customers[i].ID,
			Email:       customers[i].Email,
			FirstName:   customers[i].FirstName,
			LastName:    customers[i].LastName,
			PhoneNumber: customers[i].PhoneNumber,
		})
	}
	return c.JSON(candidates)
}

// Assign handles POST /customers/customer: find-or-create by email, then
// attach to the vehicle in the payload.
func (h *CustomersHandler) Assign(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	var req dto.AssignCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.VehicleID == "" || req.Email == "" {
		return apperrors.NewValidationError("vehicleId and email required", nil)
	}

	customer, err := h.customers.AssignCustomer(c.Context(), actorOf(principal), service.AssignInput{
		VehicleID:   req.VehicleID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": customerSummary(customer)})
}

// Get handles GET /customers/:id.
func (h *CustomersHandler) Get(c *fiber.Ctx) error {
	customer, err := h.customers.GetCustomer(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": customerSummary(customer)})
}

// Update handles PUT /customers/:id.
func (h *CustomersHandler) Update(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	var req dto.CustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	customer, err := h.customers.UpdateCustomer(c.Context(), actorOf(principal), c.Params("id"), service.CustomerInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": customerSummary(customer)})
}

// Delete handles DELETE /customers/:id.
func (h *CustomersHandler) Delete(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	if err := h.customers.DeleteCustomer(c.Context(), actorOf(principal), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func customerSummary(customer *domain.Customer) dto.CustomerSummary {
	return dto.CustomerSummary{
		ID:          customer.ID,
		FirstName:   customer.FirstName,
		LastName:    customer.LastName,
		Email:       customer.Email,
		PhoneNumber: customer.PhoneNumber,
		CreatedAt:   customer.CreatedAt,
	}
}
