package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	Id               primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username         string             `bson:"username" json:"username"`
	Email            string             `bson:"email,omitempty" json:"email,omitempty"`
	PasswordHash     string             `bson:"password,omitempty" json:"-"`
	FederatedId      string             `bson:"googleId,omitempty" json:"-"`
	ResetToken       string             `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetTokenExpiry *time.Time         `bson:"resetPasswordExpires,omitempty" json:"-"`
	PhotoUrl         string             `bson:"photoUrl" json:"photoUrl"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

type RegisterReq struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type FederatedLoginReq struct {
	Token string `json:"token" validate:"required"`
}

type RequestResetReq struct {
	Email string `json:"email"`
}

type ResetPasswordReq struct {
	Password string `json:"password" validate:"required,min=6"`
}

type UploadPhotoRes struct {
	Message  string `json:"message"`
	PhotoUrl string `json:"photoUrl"`
}

// FederatedIdentity is what a verified external identity token tells us about the user.
type FederatedIdentity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}
