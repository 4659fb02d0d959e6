package entity

import "go.mongodb.org/mongo-driver/bson/primitive"

// Product is a catalog item. Quantity is the available stock; it is only
// mutated by the creation-time decrement, never on order reads or deletes.
type Product struct {
	ID                   primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name                 string             `json:"name" bson:"name"`
	Price                float64            `json:"price" bson:"price"`
	Quantity             int                `json:"quantity" bson:"quantity"`
	PrescriptionRequired bool               `json:"prescriptionRequired" bson:"prescriptionRequired"`
}
