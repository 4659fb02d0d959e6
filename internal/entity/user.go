package entity

import "go.mongodb.org/mongo-driver/bson/primitive"

// User is a registered buyer. Email is the lookup key for the order workflow.
type User struct {
	ID       primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name     string             `json:"name" bson:"name"`
	Email    string             `json:"email" bson:"email"`
	Password string             `json:"-" bson:"password"` // bcrypt hash
}
