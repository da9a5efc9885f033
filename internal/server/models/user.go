// Package models defines the records persisted by the server and the token
// payload derived from them.
package models

import "time"

// User is an account. Password and RefreshToken only ever hold argon2id
// hashes and are never serialised.
type User struct {
	ID                           string     `json:"id"`
	Name                         string     `json:"name"`
	Email                        string     `json:"email"`
	Password                     string     `json:"-"`
	RefreshToken                 string     `json:"-"`
	ResetPasswordToken           *string    `json:"-"`
	ResetPasswordTokenExpiration *time.Time `json:"-"`
	CreatedAt                    time.Time  `json:"createdAt"`
	UpdatedAt                    time.Time  `json:"updatedAt"`
}

func (u User) RecordID() string { return u.ID }

// WithoutPassword returns a copy with the password hash cleared.
func (u *User) WithoutPassword() *User {
	c := *u
	c.Password = ""
	return &c
}

// Payload returns the claims embedded in this user's tokens.
func (u *User) Payload() Payload {
	return Payload{ID: u.ID, Email: u.Email, Name: u.Name}
}
