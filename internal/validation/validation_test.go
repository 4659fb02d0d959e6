package validation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validCreate() CreateOrderRequest {
	return CreateOrderRequest{
		UserEmail:     "a@x.com",
		Products:      []OrderItemInput{{ProductID: "64f1c0ffee0ddba11ad0b001", Quantity: 2}},
		TotalPrice:    25,
		Address:       "12 Lake Road, Dhaka",
		ContactNumber: "01711111111",
		Status:        "pending",
	}
}

func TestCreateRequestValid(t *testing.T) {
	v := New()
	req := validCreate()
	require.NoError(t, v.Validate(&req))
}

func TestCreateRequestNormalize(t *testing.T) {
	req := CreateOrderRequest{UserEmail: "  USER@Example.COM "}
	req.Normalize()
	require.Equal(t, "user@example.com", req.UserEmail)
	require.Equal(t, "pending", req.Status)

	req.Status = "shipped"
	req.Normalize()
	require.Equal(t, "shipped", req.Status)
}

func TestCreateRequestRejections(t *testing.T) {
	v := New()

	req := validCreate()
	req.UserEmail = "not-an-email"
	err := v.Validate(&req)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "ValidationError", ve.Name)
	fe, ok := ve.Errors["userEmail"]
	require.True(t, ok)
	require.Equal(t, "Invalid email format", fe.Message)
	require.Equal(t, "email", fe.Name)

	req = validCreate()
	req.Products = nil
	err = v.Validate(&req)
	require.ErrorAs(t, err, &ve)
	_, ok = ve.Errors["products"]
	require.True(t, ok)

	req = validCreate()
	req.TotalPrice = -1
	err = v.Validate(&req)
	require.ErrorAs(t, err, &ve)
	_, ok = ve.Errors["totalPrice"]
	require.True(t, ok)

	req = validCreate()
	req.Status = "lost"
	err = v.Validate(&req)
	require.ErrorAs(t, err, &ve)
	_, ok = ve.Errors["status"]
	require.True(t, ok)

	req = validCreate()
	req.Products = []OrderItemInput{{ProductID: "", Quantity: 0}}
	err = v.Validate(&req)
	require.ErrorAs(t, err, &ve)
	_, ok = ve.Errors["products[0].productId"]
	require.True(t, ok)
	_, ok = ve.Errors["products[0].quantity"]
	require.True(t, ok)
}

func TestUpdateRequestAllFieldsOptional(t *testing.T) {
	v := New()
	req := UpdateOrderRequest{}
	require.NoError(t, v.Validate(&req))
}

func TestUpdateRequestRejectsInvalidValues(t *testing.T) {
	v := New()
	var ve *ValidationError

	bad := "not-an-email"
	err := v.Validate(&UpdateOrderRequest{UserEmail: &bad})
	require.ErrorAs(t, err, &ve)
	_, ok := ve.Errors["userEmail"]
	require.True(t, ok)

	status := "lost"
	err = v.Validate(&UpdateOrderRequest{Status: &status})
	require.ErrorAs(t, err, &ve)
	_, ok = ve.Errors["status"]
	require.True(t, ok)

	price := -5.0
	err = v.Validate(&UpdateOrderRequest{TotalPrice: &price})
	require.ErrorAs(t, err, &ve)
	_, ok = ve.Errors["totalPrice"]
	require.True(t, ok)
}
