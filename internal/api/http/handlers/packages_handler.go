package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/telecom-backoffice/internal/api/dto"
	"github.com/spec-kit/telecom-backoffice/internal/domain"
	"github.com/spec-kit/telecom-backoffice/internal/service"
)

// PackagesHandler exposes the package catalog.
type PackagesHandler struct {
	catalog *service.CatalogService
}

// NewPackagesHandler constructs handler.
func NewPackagesHandler(catalog *service.CatalogService) *PackagesHandler {
	return &PackagesHandler{catalog: catalog}
}

// Create handles POST /packages.
func (h *PackagesHandler) Create(c *fiber.Ctx) error {
	var req dto.PackageRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	pkg, err := h.catalog.Create(c.UserContext(), packageInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewPackageResponse(pkg)})
}

// List handles GET /packages?active=.
func (h *PackagesHandler) List(c *fiber.Ctx) error {
	packages, err := h.catalog.List(c.UserContext(), parseBool(c.Query("active")))
	if err != nil {
		return err
	}
	items := make([]dto.PackageResponse, 0, len(packages))
	for i := range packages {
		items = append(items, dto.NewPackageResponse(&packages[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get handles GET /packages/:id.
func (h *PackagesHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	pkg, err := h.catalog.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPackageResponse(pkg)})
}

// Update handles PUT /packages/:id.
func (h *PackagesHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.PackageRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	pkg, err := h.catalog.Update(c.UserContext(), id, packageInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPackageResponse(pkg)})
}

// Delete handles DELETE /packages/:id.
func (h *PackagesHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.catalog.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func packageInput(req dto.PackageRequest) service.PackageInput {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return service.PackageInput{
		PackageID:    req.PackageID,
		Name:         req.Name,
		Price:        req.Price,
		DataLimitGB:  domain.QuantityFromLimit(req.DataLimitGB),
		VoiceMinutes: domain.QuantityFromLimit(req.VoiceMinutes),
		SMSCount:     domain.QuantityFromLimit(req.SMSCount),
		Features:     req.Features,
		IsActive:     active,
	}
}
