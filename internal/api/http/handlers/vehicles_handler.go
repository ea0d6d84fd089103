package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/dealer-service/internal/api/dto"
	"github.com/spec-kit/dealer-service/internal/auth"
	"github.com/spec-kit/dealer-service/internal/domain"
	"github.com/spec-kit/dealer-service/internal/repository"
	"github.com/spec-kit/dealer-service/internal/service"
	apperrors "github.com/spec-kit/dealer-service/pkg/util/errorutil"
)

// VehiclesHandler exposes inventory endpoints.
type VehiclesHandler struct {
	vehicles *service.VehicleService
}

// NewVehiclesHandler constructs handler.
func NewVehiclesHandler(vehicleService *service.VehicleService) *VehiclesHandler {
	return &VehiclesHandler{vehicles: vehicleService}
}

// Create handles POST /vehicles.
func (h *VehiclesHandler) Create(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	var req dto.VehicleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.VIN == "" || req.Make == "" || req.Model == "" {
		return apperrors.NewValidationError("vin, make, model required", nil)
	}

	vehicle, err := h.vehicles.CreateVehicle(c.Context(), actorOf(principal), vehicleInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": vehicleSummary(vehicle)})
}

// List handles GET /vehicles.
func (h *VehiclesHandler) List(c *fiber.Ctx) error {
	filter := repository.VehicleFilter{
		Limit:  parseIntQuery(c, "limit", 50),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if v := c.Query("make"); v != "" {
		filter.Make = &v
	}
	if v := c.Query("model"); v != "" {
		filter.Model = &v
	}
	if v := c.Query("status"); v != "" {
		status := domain.VehicleStatus(v)
		filter.Status = &status
	}
	if v := c.Query("customerId"); v != "" {
		filter.CustomerID = &v
	}

	vehicles, err := h.vehicles.ListVehicles(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.VehicleSummary, 0, len(vehicles))
	for i := range vehicles {
		items = append(items, vehicleSummary(&vehicles[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Locations handles GET /vehicles/locations for the map locator.
func (h *VehiclesHandler) Locations(c *fiber.Ctx) error {
	locations, err := h.vehicles.ListLocations(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.VehicleLocationSummary, 0, len(locations))
	for _, loc := range locations {
		items = append(items, dto.VehicleLocationSummary{
			ID:        loc.ID,
			VIN:       loc.VIN,
			Make:      loc.Make,
			Model:     loc.Model,
			Status:    string(loc.Status),
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get handles GET /vehicles/:id.
func (h *VehiclesHandler) Get(c *fiber.Ctx) error {
	vehicle, err := h.vehicles.GetVehicle(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": vehicleSummary(vehicle)})
}

// Update handles PUT /vehicles/:id.
func (h *VehiclesHandler) Update(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	var req dto.VehicleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	vehicle, err := h.vehicles.UpdateVehicle(c.Context(), actorOf(principal), c.Params("id"), vehicleInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": vehicleSummary(vehicle)})
}

// Delete handles DELETE /vehicles/:id.
func (h *VehiclesHandler) Delete(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	if err := h.vehicles.DeleteVehicle(c.Context(), actorOf(principal), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func vehicleInput(req dto.VehicleRequest) service.VehicleInput {
	return service.VehicleInput{
		VIN:       req.VIN,
		Make:      req.Make,
		Model:     req.Model,
		Year:      req.Year,
		Price:     req.Price,
		Status:    domain.VehicleStatus(req.Status),
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
}

func vehicleSummary(vehicle *domain.Vehicle) dto.VehicleSummary {
	return dto.VehicleSummary{
		ID:         vehicle.ID,
		VIN:        vehicle.VIN,
		Make:       vehicle.Make,
		Model:      vehicle.Model,
		Year:       vehicle.Year,
		Price:      vehicle.Price,
		Status:     string(vehicle.Status),
		Latitude:   vehicle.Latitude,
		Longitude:  vehicle.Longitude,
		CustomerID: vehicle.CustomerID,
		CreatedAt:  vehicle.CreatedAt,
	}
}
