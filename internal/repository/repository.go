package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"finemed-server/internal/entity"
	"finemed-server/internal/query"
)

// ErrNotFound is returned when an entity does not exist. The service layer
// decides whether that is an error for the caller or an empty result.
var ErrNotFound = errors.New("not found")

// OrderRepository persists orders.
type OrderRepository interface {
	Create(ctx context.Context, o *entity.Order) (*entity.Order, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Order, error)
	Find(ctx context.Context, opts query.Options) ([]entity.Order, error)
	FindByEmail(ctx context.Context, email string) ([]entity.Order, error)
	Update(ctx context.Context, o *entity.Order) (*entity.Order, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	TotalRevenue(ctx context.Context) (float64, error)
}

// ProductRepository reads catalog items and applies stock mutations.
type ProductRepository interface {
	Create(ctx context.Context, p *entity.Product) (*entity.Product, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Product, error)
	// DecrementStock atomically subtracts quantity from the product's stock.
	// It reports false when the guarded update did not apply.
	DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) (bool, error)
}

// UserRepository looks up registered buyers.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}
