// internal/domain/models/account.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoleMember is the default role assigned to provisioned accounts.
const RoleMember = "member"

// Account is a provisioned login identity, created when a submission is
// approved and no account for that email exists yet. Email is the logical
// key (unique index on the collection); the password hash is bcrypt and
// never reversible.
//
// Accounts are only created by this subsystem, never updated or deleted.
type Account struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	FullName     string             `bson:"full_name" json:"fullName"`
	Role         string             `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	Verified     bool               `bson:"verified" json:"verified"`
}
