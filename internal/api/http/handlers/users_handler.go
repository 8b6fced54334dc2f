package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/telecom-backoffice/internal/api/dto"
	"github.com/spec-kit/telecom-backoffice/internal/domain"
	"github.com/spec-kit/telecom-backoffice/internal/service"
)

// UsersHandler exposes subscriber CRUD.
type UsersHandler struct {
	customers *service.CustomerService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(customers *service.CustomerService) *UsersHandler {
	return &UsersHandler{customers: customers}
}

// Create handles POST /users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	input := service.CustomerInput{
		CustomerID:       req.CustomerID,
		PhoneNumber:      req.PhoneNumber,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		NationalID:       req.NationalID,
		CurrentPackageID: req.CurrentPackageID,
		PaymentStatus:    domain.PaymentStatus(req.PaymentStatus),
		Address:          req.Address,
		City:             req.City,
	}
	if req.BirthDate != nil {
		input.BirthDate = *req.BirthDate
	}
	user, err := h.customers.Create(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// List handles GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	limit, offset := page(c, 50)
	users, err := h.customers.List(c.UserContext(), service.CustomerListFilter{
		PaymentStatus: optional[domain.PaymentStatus](c.Query("payment_status")),
		PackageID:     optional[string](c.Query("package_id")),
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get handles GET /users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.customers.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Update handles PUT /users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	patch := service.CustomerPatch{
		PhoneNumber:       req.PhoneNumber,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		CurrentPackageID:  req.CurrentPackageID,
		Balance:           req.Balance,
		DataUsageGB:       req.DataUsageGB,
		VoiceUsageMinutes: req.VoiceUsageMinutes,
		Address:           req.Address,
		City:              req.City,
	}
	if req.PaymentStatus != nil {
		patch.PaymentStatus = optional[domain.PaymentStatus](*req.PaymentStatus)
	}
	user, err := h.customers.Update(c.UserContext(), id, patch)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}
