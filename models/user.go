package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// UserRole enum
type UserRole string

const (
	RoleCitizen   UserRole = "citizen"
	RoleAdmin     UserRole = "admin"
	RoleVolunteer UserRole = "volunteer"
)

// ValidRoles is the closed set of user roles.
var ValidRoles = map[UserRole]bool{
	RoleCitizen: true, RoleAdmin: true, RoleVolunteer: true,
}

type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"uid"`
	Email          string             `bson:"email" json:"email"`
	DisplayName    string             `bson:"displayName" json:"displayName"`
	Password       string             `bson:"password,omitempty" json:"-"`
	Role           UserRole           `bson:"role" json:"role"`
	IssuesReported int                `bson:"issuesReported" json:"issuesReported"`
	IssuesUpvoted  int                `bson:"issuesUpvoted" json:"issuesUpvoted"`
	IsActive       bool               `bson:"isActive" json:"isActive"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	LastLoginAt    *time.Time         `bson:"lastLoginAt,omitempty" json:"lastLoginAt,omitempty"`
}

func (u *User) HashPassword() error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

func (u *User) ComparePassword(candidate string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(candidate))
	return err == nil
}
