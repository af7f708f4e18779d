package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleDoctor  Role = "DOCTOR"
	RolePatient Role = "PATIENT"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient:
		return true
	}
	return false
}

type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username    string             `bson:"username" json:"username"`
	Password    string             `bson:"password" json:"-"` // bcrypt hash, never serialized
	PhoneNumber string             `bson:"phoneNumber" json:"phoneNumber"`
	Role        Role               `bson:"role" json:"role"`
}

// NewUser is the input for creating an account. Password is plaintext here
// and only here.
type NewUser struct {
	Username    string `json:"username" validate:"required,max=64"`
	Password    string `json:"password" validate:"required,min=6,max=72,bcrypt_len"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,max=32"`
	Role        Role   `json:"role" validate:"required,user_role"`
}

// UserPatch carries a partial user update. Blank fields are left untouched.
type UserPatch struct {
	Username    string
	Password    string
	PhoneNumber string
	Role        *Role
}
