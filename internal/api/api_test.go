package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"finemed-server/internal/entity"
	"finemed-server/internal/repository"
	"finemed-server/internal/service"
	"finemed-server/internal/validation"
)

type testMailer struct{ sent int }

func (m *testMailer) Send(context.Context, string, string, string) error {
	m.sent++
	return nil
}

type testServer struct {
	e        *echo.Echo
	orders   *repository.MemoryOrderRepository
	products *repository.MemoryProductRepository
	users    *repository.MemoryUserRepository
	userSvc  *service.UserService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		orders:   repository.NewMemoryOrderRepository(),
		products: repository.NewMemoryProductRepository(),
		users:    repository.NewMemoryUserRepository(),
	}

	orderSvc := service.NewOrderService(ts.orders, ts.products, ts.users, &testMailer{}, nil)
	ts.userSvc = service.NewUserService(ts.users, nil, []byte("test-secret"))

	h := NewOrderHandler(orderSvc)
	uh := NewUserHandler(ts.userSvc)

	e := echo.New()
	e.Validator = validation.New()
	e.POST("/api/auth/login", uh.Login)
	e.POST("/api/orders", h.CreateOrder)
	e.GET("/api/orders", h.GetAllOrders)
	e.GET("/api/orders/revenue", h.GetRevenue)
	e.GET("/api/orders/email/:email", h.GetOrdersByEmail)
	e.GET("/api/orders/:orderId", h.GetSingleOrder)
	e.PUT("/api/orders/:orderId", h.UpdateOrder)
	e.DELETE("/api/orders/:orderId", h.DeleteOrder)
	e.PATCH("/api/orders/:orderId/verify-prescription", h.VerifyPrescription)
	ts.e = e
	return ts
}

func (ts *testServer) seed(t *testing.T) (user *entity.User, product *entity.Product) {
	t.Helper()
	var err error
	user, err = ts.users.Create(context.Background(), &entity.User{Name: "Rahim", Email: "a@x.com"})
	require.NoError(t, err)
	product, err = ts.products.Create(context.Background(), &entity.Product{Name: "Napa", Price: 2.5, Quantity: 5})
	require.NoError(t, err)
	return user, product
}

func (ts *testServer) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return rec, envelope
}

func orderPayload(productID string, quantity int) string {
	return fmt.Sprintf(`{"order": {
		"userEmail": "a@x.com",
		"products": [{"productId": %q, "quantity": %d}],
		"totalPrice": 25,
		"address": "12 Lake Road, Dhaka",
		"contactNumber": "01711111111"
	}}`, productID, quantity)
}

func TestCreateOrderEndpoint(t *testing.T) {
	ts := newTestServer(t)
	_, product := ts.seed(t)

	rec, envelope := ts.do(t, http.MethodPost, "/api/orders", orderPayload(product.ID.Hex(), 2))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, true, envelope["success"])
	require.Equal(t, "Order placed successfully.", envelope["message"])

	data := envelope["data"].(map[string]interface{})
	require.Equal(t, "pending", data["status"])
	require.Equal(t, false, data["prescriptionRequired"])

	p, err := ts.products.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	require.Equal(t, 3, p.Quantity)
}

func TestCreateOrderEndpointValidationFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t)

	body := `{"order": {"userEmail": "nope", "products": [], "totalPrice": -1, "address": "", "contactNumber": ""}}`
	rec, envelope := ts.do(t, http.MethodPost, "/api/orders", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, false, envelope["success"])
	require.Equal(t, "Validation failed", envelope["message"])

	verr := envelope["error"].(map[string]interface{})
	require.Equal(t, "ValidationError", verr["name"])
	fields := verr["errors"].(map[string]interface{})
	require.Contains(t, fields, "userEmail")
	require.Contains(t, fields, "products")
}

func TestCreateOrderEndpointPrescriptionGate(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t)
	gated, err := ts.products.Create(context.Background(), &entity.Product{
		Name: "Tramadol", Quantity: 5, PrescriptionRequired: true,
	})
	require.NoError(t, err)

	rec, envelope := ts.do(t, http.MethodPost, "/api/orders", orderPayload(gated.ID.Hex(), 1))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, false, envelope["success"])
	require.Equal(t, "Prescription Required but not provided!", envelope["message"])
}

func TestGetSingleOrderEndpointAbsent(t *testing.T) {
	ts := newTestServer(t)

	rec, envelope := ts.do(t, http.MethodGet, "/api/orders/"+primitive.NewObjectID().Hex(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, envelope["success"])
	require.Nil(t, envelope["data"])
}

func TestDeleteOrderEndpointNotFound(t *testing.T) {
	ts := newTestServer(t)

	rec, envelope := ts.do(t, http.MethodDelete, "/api/orders/"+primitive.NewObjectID().Hex(), "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, false, envelope["success"])
	require.Equal(t, "Order not found", envelope["message"])
}

func TestUpdateOrderEndpoint(t *testing.T) {
	ts := newTestServer(t)
	_, product := ts.seed(t)

	_, created := ts.do(t, http.MethodPost, "/api/orders", orderPayload(product.ID.Hex(), 1))
	id := created["data"].(map[string]interface{})["id"].(string)

	rec, envelope := ts.do(t, http.MethodPut, "/api/orders/"+id, `{"status": "shipped"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	data := envelope["data"].(map[string]interface{})
	require.Equal(t, "shipped", data["status"])
}

func TestRevenueEndpoint(t *testing.T) {
	ts := newTestServer(t)
	_, product := ts.seed(t)
	ts.do(t, http.MethodPost, "/api/orders", orderPayload(product.ID.Hex(), 2))

	rec, envelope := ts.do(t, http.MethodGet, "/api/orders/revenue", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := envelope["data"].(map[string]interface{})
	require.InDelta(t, 25.0, data["totalRevenue"].(float64), 0.001)
}

func TestLoginEndpoint(t *testing.T) {
	ts := newTestServer(t)
	_, err := ts.userSvc.Register(context.Background(), "Rahim", "a@x.com", "hunter2")
	require.NoError(t, err)

	rec, envelope := ts.do(t, http.MethodPost, "/api/auth/login", `{"email": "a@x.com", "password": "hunter2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	data := envelope["data"].(map[string]interface{})
	require.NotEmpty(t, data["token"])

	rec, envelope = ts.do(t, http.MethodPost, "/api/auth/login", `{"email": "a@x.com", "password": "nope"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, false, envelope["success"])
}
