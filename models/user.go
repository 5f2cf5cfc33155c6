package models

import "time"

// User is the identity record the storefront keeps for a signed-in session.
// Absence of the record means logged out.
type User struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

// Account 代表 users 表中的一筆帳號資料
type Account struct {
	ID           uint64    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Newsletter   bool      `json:"newsletter"`
	CreatedAt    time.Time `json:"created_at"`
}

// User derives the session identity record from the account row.
func (a *Account) User() User {
	return User{
		Email:   a.Email,
		Name:    a.FirstName + " " + a.LastName,
		IsAdmin: a.Role == "admin",
	}
}
