package repository

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"finemed-server/internal/entity"
	"finemed-server/internal/query"
)

// In-memory implementations backing the test suites. They honor the same
// contracts as the Mongo ones; list filtering and sorting cover the fields the
// workflow actually queries on.

type MemoryOrderRepository struct {
	mu     sync.Mutex
	orders map[primitive.ObjectID]entity.Order
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: make(map[primitive.ObjectID]entity.Order)}
}

func (r *MemoryOrderRepository) Create(_ context.Context, o *entity.Order) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	r.orders[o.ID] = cloneOrder(*o)
	return o, nil
}

func (r *MemoryOrderRepository) GetByID(_ context.Context, id primitive.ObjectID) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	o = cloneOrder(o)
	return &o, nil
}

func (r *MemoryOrderRepository) Find(_ context.Context, opts query.Options) ([]entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []entity.Order
	for _, o := range r.orders {
		if matchesOrder(o, opts.Filter) {
			matched = append(matched, cloneOrder(o))
		}
	}
	sortOrders(matched, opts.Sort)

	if opts.Skip >= int64(len(matched)) {
		return []entity.Order{}, nil
	}
	matched = matched[opts.Skip:]
	if opts.Limit > 0 && opts.Limit < int64(len(matched)) {
		matched = matched[:opts.Limit]
	}
	return matched, nil
}

func (r *MemoryOrderRepository) FindByEmail(_ context.Context, email string) ([]entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := []entity.Order{}
	for _, o := range r.orders {
		if o.UserEmail == email {
			matched = append(matched, cloneOrder(o))
		}
	}
	sortOrders(matched, []query.SortField{{Key: "createdAt", Desc: true}})
	return matched, nil
}

func (r *MemoryOrderRepository) Update(_ context.Context, o *entity.Order) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.ID]; !ok {
		return nil, ErrNotFound
	}
	r.orders[o.ID] = cloneOrder(*o)
	return o, nil
}

func (r *MemoryOrderRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

func (r *MemoryOrderRepository) TotalRevenue(_ context.Context) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total float64
	for _, o := range r.orders {
		total += o.TotalPrice
	}
	return total, nil
}

func matchesOrder(o entity.Order, filter map[string]string) bool {
	for key, value := range filter {
		switch key {
		case "status":
			if o.Status != value {
				return false
			}
		case "userEmail":
			if o.UserEmail != value {
				return false
			}
		case "prescriptionRequired":
			if strconv.FormatBool(o.PrescriptionRequired) != value {
				return false
			}
		case "prescriptionVarified":
			if strconv.FormatBool(o.PrescriptionVerified) != value {
				return false
			}
		default:
			// Unknown field: equality with nothing, same as the document store.
			return false
		}
	}
	return true
}

func sortOrders(orders []entity.Order, fields []query.SortField) {
	sort.SliceStable(orders, func(i, j int) bool {
		for _, f := range fields {
			var less, equal bool
			switch f.Key {
			case "totalPrice":
				less = orders[i].TotalPrice < orders[j].TotalPrice
				equal = orders[i].TotalPrice == orders[j].TotalPrice
			default: // createdAt
				less = orders[i].CreatedAt.Before(orders[j].CreatedAt)
				equal = orders[i].CreatedAt.Equal(orders[j].CreatedAt)
			}
			if equal {
				continue
			}
			if f.Desc {
				return !less
			}
			return less
		}
		return false
	})
}

func cloneOrder(o entity.Order) entity.Order {
	items := make([]entity.OrderItem, len(o.Products))
	copy(items, o.Products)
	o.Products = items
	return o
}

type MemoryProductRepository struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]entity.Product
}

func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{products: make(map[primitive.ObjectID]entity.Product)}
}

func (r *MemoryProductRepository) Create(_ context.Context, p *entity.Product) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	r.products[p.ID] = *p
	return p, nil
}

func (r *MemoryProductRepository) GetByID(_ context.Context, id primitive.ObjectID) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *MemoryProductRepository) DecrementStock(_ context.Context, id primitive.ObjectID, quantity int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.Quantity < quantity {
		return false, nil
	}
	p.Quantity -= quantity
	r.products[id] = p
	return true, nil
}

type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[string]entity.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]entity.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, u *entity.User) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	r.users[u.Email] = *u
	return u, nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}
