package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"finemed-server/internal/apperror"
	"finemed-server/internal/entity"
	"finemed-server/internal/events"
	"finemed-server/internal/mailer"
	"finemed-server/internal/query"
	"finemed-server/internal/repository"
	"finemed-server/internal/validation"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// OrderService orchestrates the order workflows: existence checks, stock
// decrement, prescription gating and update-time stock reconciliation.
type OrderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	users    repository.UserRepository
	notifier mailer.Notifier
	events   events.Publisher
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(orders repository.OrderRepository, products repository.ProductRepository, users repository.UserRepository, notifier mailer.Notifier, publisher events.Publisher) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		users:    users,
		notifier: notifier,
		events:   publisher,
	}
}

// CreateOrder places a new order. Stock is decremented per item as the items
// are checked; the prescription gate runs after the loop, so a gate failure
// leaves earlier decrements in place.
func (s *OrderService) CreateOrder(ctx context.Context, req *validation.CreateOrderRequest) (*entity.Order, error) {
	user, err := s.users.GetByEmail(ctx, req.UserEmail)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.New(http.StatusNotFound, "User not found")
	}
	if err != nil {
		return nil, err
	}

	prescriptionRequired := false
	items := make([]entity.OrderItem, 0, len(req.Products))
	for _, item := range req.Products {
		productID, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			return nil, apperror.New(http.StatusBadRequest, fmt.Sprintf("Invalid product ID %s", item.ProductID))
		}

		product, err := s.products.GetByID(ctx, productID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.New(http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", item.ProductID))
		}
		if err != nil {
			return nil, err
		}

		if product.Quantity < item.Quantity {
			return nil, apperror.New(http.StatusBadRequest, fmt.Sprintf("Insufficient stock for product %s", item.ProductID))
		}

		applied, err := s.products.DecrementStock(ctx, productID, item.Quantity)
		if err != nil {
			return nil, err
		}
		if !applied {
			return nil, apperror.New(http.StatusInternalServerError, "Error updating product stock!")
		}

		if product.PrescriptionRequired {
			prescriptionRequired = true
		}
		items = append(items, entity.OrderItem{ProductID: productID, Quantity: item.Quantity})
	}

	// Stock decrements above are not rolled back when this gate fails.
	if prescriptionRequired && req.PrescriptionImageLink == "" {
		return nil, apperror.New(http.StatusUnauthorized, "Prescription Required but not provided!")
	}

	order := &entity.Order{
		UserEmail:             req.UserEmail,
		UserName:              user.Name,
		Products:              items,
		TotalPrice:            req.TotalPrice,
		Address:               req.Address,
		ContactNumber:         req.ContactNumber,
		Status:                req.Status,
		PrescriptionRequired:  prescriptionRequired,
		PrescriptionImageLink: req.PrescriptionImageLink,
		TransactionID:         req.TransactionID,
		CreatedAt:             time.Now().UTC(),
	}
	if req.PrescriptionVerified != nil {
		order.PrescriptionVerified = *req.PrescriptionVerified
	}

	created, err := s.orders.Create(ctx, order)
	if err != nil {
		logger.Error().Err(err).Msg("Error creating order")
		return nil, err
	}

	s.publishEvent(ctx, "created", created)
	return created, nil
}

// GetAllOrders applies the opaque list parameters to the order collection.
// Any underlying failure maps to a single BadRequest; no partial results.
func (s *OrderService) GetAllOrders(ctx context.Context, params map[string]string) ([]entity.Order, error) {
	opts, err := query.Parse(params)
	if err != nil {
		logger.Error().Err(err).Msg("Error parsing order query")
		return nil, apperror.New(http.StatusBadRequest, "Failed to fetch orders")
	}

	orders, err := s.orders.Find(ctx, opts)
	if err != nil {
		logger.Error().Err(err).Msg("Error fetching orders")
		return nil, apperror.New(http.StatusBadRequest, "Failed to fetch orders")
	}

	if err := s.expandOrders(ctx, orders); err != nil {
		logger.Error().Err(err).Msg("Error expanding order products")
		return nil, apperror.New(http.StatusBadRequest, "Failed to fetch orders")
	}
	if orders == nil {
		orders = []entity.Order{}
	}
	return orders, nil
}

// GetSingleOrder fetches one order with product expansion. Absence is not an
// error here: the caller receives nil and decides what that means.
func (s *OrderService) GetSingleOrder(ctx context.Context, id string) (*entity.Order, error) {
	orderID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperror.New(http.StatusBadRequest, "Invalid order ID")
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := s.expandOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateOrder applies a partial update. A status change triggers the email
// notification first; its failure never blocks the update. Updated line items
// are checked for stock-delta feasibility against the catalog, but the product
// records themselves are not written here.
func (s *OrderService) UpdateOrder(ctx context.Context, id string, req *validation.UpdateOrderRequest) (*entity.Order, error) {
	orderID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperror.New(http.StatusBadRequest, "Invalid order ID")
	}

	existing, err := s.orders.GetByID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.New(http.StatusNotFound, "Order not found")
	}
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		s.sendStatusNotification(ctx, existing, *req.Status)
	}

	merged := *existing
	if req.Products != nil {
		items, err := s.reconcileItems(ctx, existing, req.Products)
		if err != nil {
			return nil, err
		}
		merged.Products = items
	}
	if req.UserEmail != nil {
		merged.UserEmail = *req.UserEmail
	}
	if req.TotalPrice != nil {
		merged.TotalPrice = *req.TotalPrice
	}
	if req.Address != nil {
		merged.Address = *req.Address
	}
	if req.ContactNumber != nil {
		merged.ContactNumber = *req.ContactNumber
	}
	if req.Status != nil {
		merged.Status = *req.Status
	}
	if req.PrescriptionVerified != nil {
		merged.PrescriptionVerified = *req.PrescriptionVerified
	}
	if req.PrescriptionImageLink != nil {
		merged.PrescriptionImageLink = *req.PrescriptionImageLink
	}
	if req.TransactionID != nil {
		merged.TransactionID = *req.TransactionID
	}

	saved, err := s.orders.Update(ctx, &merged)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.New(http.StatusNotFound, "Order not found")
	}
	if err != nil {
		logger.Error().Err(err).Msg("Error updating order")
		return nil, err
	}

	s.publishEvent(ctx, "updated", saved)
	if err := s.expandOrder(ctx, saved); err != nil {
		return nil, err
	}
	return saved, nil
}

// reconcileItems validates the stock delta of every updated item that matches
// an existing line item by product id. This is a feasibility check only.
func (s *OrderService) reconcileItems(ctx context.Context, existing *entity.Order, updated []validation.OrderItemInput) ([]entity.OrderItem, error) {
	items := make([]entity.OrderItem, 0, len(updated))
	for _, item := range updated {
		productID, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			return nil, apperror.New(http.StatusBadRequest, fmt.Sprintf("Invalid product ID %s", item.ProductID))
		}

		for _, existingItem := range existing.Products {
			if existingItem.ProductID != productID {
				continue
			}
			product, err := s.products.GetByID(ctx, productID)
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperror.New(http.StatusNotFound, "Associated product not found")
			}
			if err != nil {
				return nil, err
			}

			diff := existingItem.Quantity - item.Quantity
			if product.Quantity+diff < 0 {
				return nil, apperror.New(http.StatusBadRequest, "Insufficient stock to update order")
			}
			break
		}
		items = append(items, entity.OrderItem{ProductID: productID, Quantity: item.Quantity})
	}
	return items, nil
}

// DeleteOrder removes an order unconditionally once it exists and returns the
// removed record.
func (s *OrderService) DeleteOrder(ctx context.Context, id string) (*entity.Order, error) {
	orderID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperror.New(http.StatusBadRequest, "Invalid order ID")
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.New(http.StatusNotFound, "Order not found")
	}
	if err != nil {
		return nil, err
	}

	if err := s.orders.Delete(ctx, orderID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.New(http.StatusNotFound, "Order not found")
		}
		logger.Error().Err(err).Msg("Error deleting order")
		return nil, err
	}

	s.publishEvent(ctx, "deleted", order)
	return order, nil
}

// GetOrdersByEmail returns the buyer's orders newest first. No orders is an
// empty sequence, not an error.
func (s *OrderService) GetOrdersByEmail(ctx context.Context, email string) ([]entity.Order, error) {
	orders, err := s.orders.FindByEmail(ctx, email)
	if err != nil {
		logger.Error().Err(err).Msgf("Error fetching orders for %s", email)
		return nil, err
	}
	if err := s.expandOrders(ctx, orders); err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []entity.Order{}
	}
	return orders, nil
}

// VerifyPrescription marks the order's prescription as verified. Repeating the
// call on an already verified order succeeds with the same outcome.
func (s *OrderService) VerifyPrescription(ctx context.Context, id string) (*entity.Order, error) {
	orderID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperror.New(http.StatusBadRequest, "Invalid order ID")
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.New(http.StatusNotFound, "Order not found")
	}
	if err != nil {
		return nil, err
	}

	if !order.PrescriptionRequired {
		return nil, apperror.New(http.StatusBadRequest, "Prescription verification not required for this order")
	}

	order.PrescriptionVerified = true
	saved, err := s.orders.Update(ctx, order)
	if err != nil {
		logger.Error().Err(err).Msg("Error verifying prescription")
		return nil, err
	}
	return saved, nil
}

// CalculateRevenue sums totalPrice across all orders.
func (s *OrderService) CalculateRevenue(ctx context.Context) (float64, error) {
	total, err := s.orders.TotalRevenue(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error calculating revenue")
		return 0, err
	}
	return total, nil
}

// sendStatusNotification renders and dispatches the status email. Failure is
// logged and swallowed; the update proceeds regardless.
func (s *OrderService) sendStatusNotification(ctx context.Context, order *entity.Order, status string) {
	html, err := mailer.RenderStatusUpdate(order.UserName, order.ID.Hex(), status)
	if err != nil {
		logger.Error().Err(err).Msg("Error rendering status update email")
		return
	}
	if err := s.notifier.Send(ctx, order.UserEmail, mailer.StatusUpdateSubject, html); err != nil {
		logger.Error().Err(err).Msgf("Error sending status update email for order %s", order.ID.Hex())
	}
}

// publishEvent emits an order lifecycle event. Publishing never blocks the
// caller's response; failures are only logged.
func (s *OrderService) publishEvent(ctx context.Context, verb string, order *entity.Order) {
	if s.events == nil {
		return
	}
	key := fmt.Sprintf("order-%s-%s", verb, order.ID.Hex())
	if err := s.events.Publish(ctx, key, order); err != nil {
		logger.Error().Err(err).Msgf("Error publishing order %s event", verb)
	}
}

// expandOrder attaches the referenced product document to each line item.
// Dangling references stay unexpanded.
func (s *OrderService) expandOrder(ctx context.Context, order *entity.Order) error {
	for i := range order.Products {
		product, err := s.products.GetByID(ctx, order.Products[i].ProductID)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		order.Products[i].Product = product
	}
	return nil
}

func (s *OrderService) expandOrders(ctx context.Context, orders []entity.Order) error {
	for i := range orders {
		if err := s.expandOrder(ctx, &orders[i]); err != nil {
			return err
		}
	}
	return nil
}
