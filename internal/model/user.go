// Package model defines the core domain models used throughout the application.
package model

import "time"

// User is a person whose purchase history can be analyzed.
type User struct {
	CreatedAt time.Time
	ID        string
	Username  string
	Email     string
	Goals     []string
	Budget    float64
}

// UserProfile is the financial context that accompanies every generation request.
type UserProfile struct {
	Goals  []string `json:"goals"`
	Budget float64  `json:"budget"`
}

// Profile returns the user's goals and monthly budget.
func (u *User) Profile() UserProfile {
	goals := make([]string, len(u.Goals))
	copy(goals, u.Goals)
	return UserProfile{Goals: goals, Budget: u.Budget}
}
