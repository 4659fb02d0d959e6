package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"finemed-server/internal/apperror"
	"finemed-server/internal/service"
	"finemed-server/internal/validation"
)

// OrderHandler maps workflow results and errors onto HTTP status codes and the
// {success, message, data|error} envelope.
type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func ok(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, map[string]interface{}{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func fail(c echo.Context, err error) error {
	var ve *validation.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Validation failed",
			"error":   ve,
		})
	}

	var ae *apperror.AppError
	if errors.As(err, &ae) {
		return c.JSON(ae.Status, map[string]interface{}{
			"success": false,
			"message": ae.Message,
			"error":   ae.Message,
		})
	}

	return c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"success": false,
		"message": "Internal Server Error",
		"error":   err.Error(),
	})
}

// CreateOrder expects the candidate order under the payload's "order" key.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	var body struct {
		Order validation.CreateOrderRequest `json:"order"`
	}
	if err := c.Bind(&body); err != nil {
		return fail(c, apperror.New(http.StatusBadRequest, "Invalid request payload"))
	}
	body.Order.Normalize()
	if err := c.Validate(&body.Order); err != nil {
		return fail(c, err)
	}

	order, err := h.orderService.CreateOrder(c.Request().Context(), &body.Order)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusCreated, "Order placed successfully.", order)
}

func (h *OrderHandler) GetAllOrders(c echo.Context) error {
	params := make(map[string]string)
	for key, values := range c.QueryParams() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	orders, err := h.orderService.GetAllOrders(c.Request().Context(), params)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, "Orders retrieved successfully", orders)
}

func (h *OrderHandler) GetRevenue(c echo.Context) error {
	total, err := h.orderService.CalculateRevenue(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, "Revenue calculated successfully", map[string]float64{
		"totalRevenue": total,
	})
}

// GetSingleOrder returns null data when the order does not exist; that is the
// retrieval contract, distinct from update and delete.
func (h *OrderHandler) GetSingleOrder(c echo.Context) error {
	order, err := h.orderService.GetSingleOrder(c.Request().Context(), c.Param("orderId"))
	if err != nil {
		return fail(c, err)
	}
	if order == nil {
		return ok(c, http.StatusOK, "Order retrieved successfully", nil)
	}
	return ok(c, http.StatusOK, "Order retrieved successfully", order)
}

func (h *OrderHandler) UpdateOrder(c echo.Context) error {
	var req validation.UpdateOrderRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, apperror.New(http.StatusBadRequest, "Invalid request payload"))
	}
	req.Normalize()
	if err := c.Validate(&req); err != nil {
		return fail(c, err)
	}

	order, err := h.orderService.UpdateOrder(c.Request().Context(), c.Param("orderId"), &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, "Order updated successfully", order)
}

func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	order, err := h.orderService.DeleteOrder(c.Request().Context(), c.Param("orderId"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, "Order deleted successfully", order)
}

func (h *OrderHandler) GetOrdersByEmail(c echo.Context) error {
	orders, err := h.orderService.GetOrdersByEmail(c.Request().Context(), c.Param("email"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, "Orders retrieved successfully", orders)
}

func (h *OrderHandler) VerifyPrescription(c echo.Context) error {
	order, err := h.orderService.VerifyPrescription(c.Request().Context(), c.Param("orderId"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, "Prescription verified successfully", order)
}

// UserHandler serves the auth slice.
type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Login(c echo.Context) error {
	var req validation.LoginRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, apperror.New(http.StatusBadRequest, "Invalid request payload"))
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, err)
	}

	token, err := h.userService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, "Login successful", map[string]string{"token": token})
}
