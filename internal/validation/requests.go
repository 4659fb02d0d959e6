package validation

import (
	"strings"

	"finemed-server/internal/entity"
)

// OrderItemInput is one requested line item. The product id stays a string
// until the workflow resolves it against the catalog.
type OrderItemInput struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// CreateOrderRequest is the payload for placing an order.
type CreateOrderRequest struct {
	UserEmail             string           `json:"userEmail" validate:"required,email"`
	Products              []OrderItemInput `json:"products" validate:"required,min=1,dive"`
	TotalPrice            float64          `json:"totalPrice" validate:"min=0"`
	Address               string           `json:"address" validate:"required"`
	ContactNumber         string           `json:"contactNumber" validate:"required"`
	Status                string           `json:"status" validate:"omitempty,oneof=pending processing shipped delivered"`
	PrescriptionVerified  *bool            `json:"prescriptionVarified"`
	PrescriptionImageLink string           `json:"prescriptionImageLink"`
	TransactionID         string           `json:"transactionId"`
}

// Normalize applies the schema transforms: trimmed lower-cased email and the
// default status. Call it before validation.
func (r *CreateOrderRequest) Normalize() {
	r.UserEmail = strings.ToLower(strings.TrimSpace(r.UserEmail))
	if r.Status == "" {
		r.Status = entity.StatusPending
	}
}

// UpdateOrderRequest mirrors CreateOrderRequest with every field optional.
// Pointer fields distinguish "absent" from zero values.
type UpdateOrderRequest struct {
	UserEmail             *string          `json:"userEmail" validate:"omitempty,email"`
	Products              []OrderItemInput `json:"products" validate:"omitempty,dive"`
	TotalPrice            *float64         `json:"totalPrice" validate:"omitempty,min=0"`
	Address               *string          `json:"address" validate:"omitempty,min=1"`
	ContactNumber         *string          `json:"contactNumber" validate:"omitempty,min=1"`
	Status                *string          `json:"status" validate:"omitempty,oneof=pending processing shipped delivered"`
	PrescriptionVerified  *bool            `json:"prescriptionVarified"`
	PrescriptionImageLink *string          `json:"prescriptionImageLink"`
	TransactionID         *string          `json:"transactionId"`
}

func (r *UpdateOrderRequest) Normalize() {
	if r.UserEmail != nil {
		email := strings.ToLower(strings.TrimSpace(*r.UserEmail))
		r.UserEmail = &email
	}
}

// LoginRequest authenticates a registered buyer.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
