package domain

import (
	"strings"
	"time"
)

// PaymentStatus represents the billing standing of a customer or a single bill.
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusOverdue PaymentStatus = "overdue"
)

// Valid reports whether the status is a known value.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPaid, PaymentStatusPending, PaymentStatusOverdue:
		return true
	}
	return false
}

// User is a telecom subscriber account.
type User struct {
	ID                int64
	CustomerID        string
	PhoneNumber       string
	FirstName         string
	LastName          string
	Email             string
	NationalID        string
	BirthDate         time.Time
	CurrentPackageID  *string
	PaymentStatus     PaymentStatus
	Balance           float64
	DataUsageGB       float64
	VoiceUsageMinutes int64
	Address           string
	City              string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// PackageKey returns the business key of the current package or "" when unset.
func (u *User) PackageKey() string {
	if u == nil || u.CurrentPackageID == nil {
		return ""
	}
	return *u.CurrentPackageID
}
