package dto

import (
	"time"

	"github.com/spec-kit/telecom-backoffice/internal/domain"
)

// CreateUserRequest payload for provisioning a subscriber.
type CreateUserRequest struct {
	CustomerID       string     `json:"customer_id" validate:"omitempty,max=20"`
	PhoneNumber      string     `json:"phone_number" validate:"required,min=7,max=20"`
	FirstName        string     `json:"first_name" validate:"required,max=50"`
	LastName         string     `json:"last_name" validate:"required,max=50"`
	Email            string     `json:"email" validate:"omitempty,email"`
	NationalID       string     `json:"national_id" validate:"omitempty,max=20"`
	BirthDate        *time.Time `json:"birth_date"`
	CurrentPackageID *string    `json:"current_package_id" validate:"omitempty,max=20"`
	PaymentStatus    string     `json:"payment_status" validate:"omitempty,oneof=paid pending overdue"`
	Address          string     `json:"address"`
	City             string     `json:"city" validate:"omitempty,max=50"`
}

// UpdateUserRequest payload; absent fields are left unchanged.
type UpdateUserRequest struct {
	PhoneNumber       *string  `json:"phone_number" validate:"omitempty,min=7,max=20"`
	FirstName         *string  `json:"first_name" validate:"omitempty,max=50"`
	LastName          *string  `json:"last_name" validate:"omitempty,max=50"`
	Email             *string  `json:"email" validate:"omitempty,email"`
	CurrentPackageID  *string  `json:"current_package_id" validate:"omitempty,max=20"`
	PaymentStatus     *string  `json:"payment_status" validate:"omitempty,oneof=paid pending overdue"`
	Balance           *float64 `json:"balance"`
	DataUsageGB       *float64 `json:"data_usage_gb" validate:"omitempty,gte=0"`
	VoiceUsageMinutes *int64   `json:"voice_usage_minutes" validate:"omitempty,gte=0"`
	Address           *string  `json:"address"`
	City              *string  `json:"city" validate:"omitempty,max=50"`
}

// UserResponse is the full subscriber record.
type UserResponse struct {
	ID                int64                `json:"id"`
	CustomerID        string               `json:"customer_id"`
	PhoneNumber       string               `json:"phone_number"`
	FirstName         string               `json:"first_name"`
	LastName          string               `json:"last_name"`
	Email             string               `json:"email,omitempty"`
	NationalID        string               `json:"national_id,omitempty"`
	BirthDate         *time.Time           `json:"birth_date,omitempty"`
	CurrentPackageID  *string              `json:"current_package_id"`
	PaymentStatus     domain.PaymentStatus `json:"payment_status"`
	Balance           float64              `json:"balance"`
	DataUsageGB       float64              `json:"data_usage_gb"`
	VoiceUsageMinutes int64                `json:"voice_usage_minutes"`
	Address           string               `json:"address,omitempty"`
	City              string               `json:"city,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

// UserInfo is the short identity block embedded in account views.
type UserInfo struct {
	ID            int64                `json:"id"`
	CustomerID    string               `json:"customer_id"`
	Name          string               `json:"name"`
	PhoneNumber   string               `json:"phone_number"`
	Email         string               `json:"email,omitempty"`
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
	Balance       float64              `json:"balance"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	resp := UserResponse{
		ID:                u.ID,
		CustomerID:        u.CustomerID,
		PhoneNumber:       u.PhoneNumber,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Email:             u.Email,
		NationalID:        u.NationalID,
		CurrentPackageID:  u.CurrentPackageID,
		PaymentStatus:     u.PaymentStatus,
		Balance:           u.Balance,
		DataUsageGB:       u.DataUsageGB,
		VoiceUsageMinutes: u.VoiceUsageMinutes,
		Address:           u.Address,
		City:              u.City,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
	if !u.BirthDate.IsZero() {
		bd := u.BirthDate
		resp.BirthDate = &bd
	}
	return resp
}

// NewUserInfo maps the identity block.
func NewUserInfo(u *domain.User) UserInfo {
	return UserInfo{
		ID:            u.ID,
		CustomerID:    u.CustomerID,
		Name:          u.FullName(),
		PhoneNumber:   u.PhoneNumber,
		Email:         u.Email,
		PaymentStatus: u.PaymentStatus,
		Balance:       u.Balance,
	}
}
