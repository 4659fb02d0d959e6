package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses. An order starts as "pending" and moves forward from there.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
)

// OrderStatuses lists every status an order may hold.
var OrderStatuses = []string{StatusPending, StatusProcessing, StatusShipped, StatusDelivered}

// OrderItem is a single line item. Product is filled in on reads when the
// referenced product still exists; it is never persisted with the order.
type OrderItem struct {
	ProductID primitive.ObjectID `json:"productId" bson:"productId"`
	Quantity  int                `json:"quantity" bson:"quantity"`
	Product   *Product           `json:"product,omitempty" bson:"-"`
}

// Order is a customer order. PrescriptionRequired is derived at creation time
// from the ordered products. The persisted field name "prescriptionVarified"
// keeps its historical spelling.
type Order struct {
	ID                    primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserEmail             string             `json:"userEmail" bson:"userEmail"`
	UserName              string             `json:"userName" bson:"userName"`
	Products              []OrderItem        `json:"products" bson:"products"`
	TotalPrice            float64            `json:"totalPrice" bson:"totalPrice"`
	Address               string             `json:"address" bson:"address"`
	ContactNumber         string             `json:"contactNumber" bson:"contactNumber"`
	Status                string             `json:"status" bson:"status"`
	PrescriptionRequired  bool               `json:"prescriptionRequired" bson:"prescriptionRequired"`
	PrescriptionVerified  bool               `json:"prescriptionVarified" bson:"prescriptionVarified"`
	PrescriptionImageLink string             `json:"prescriptionImageLink,omitempty" bson:"prescriptionImageLink,omitempty"`
	TransactionID         string             `json:"transactionId,omitempty" bson:"transactionId,omitempty"`
	CreatedAt             time.Time          `json:"createdAt" bson:"createdAt"`
}
