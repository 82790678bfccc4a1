package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the permission tier assigned to a user.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// IsAdmin reports whether the role grants cross-user back-office access.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Permissions are the fine-grained admin flags stored alongside the role.
type Permissions struct {
	CanManageUsers  bool `bson:"canManageUsers" json:"canManageUsers"`
	CanManageClaims bool `bson:"canManageClaims" json:"canManageClaims"`
	CanViewReports  bool `bson:"canViewReports" json:"canViewReports"`
}

// User represents an application user keyed by the identity provider's id.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClerkID        string             `bson:"clerkId" json:"clerkId"`
	Email          string             `bson:"email,omitempty" json:"email"`
	FirstName      string             `bson:"firstName" json:"firstName"`
	LastName       string             `bson:"lastName" json:"lastName"`
	Role           Role               `bson:"role" json:"role"`
	IsActive       bool               `bson:"isActive" json:"isActive"`
	Permissions    Permissions        `bson:"permissions" json:"permissions"`
	ClaimsCount    int                `bson:"claimsCount" json:"claimsCount"`
	DocumentsCount int                `bson:"documentsCount" json:"documentsCount"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
