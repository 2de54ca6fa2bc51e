package users

import "time"

// Auth providers recorded on a user.
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

// User is an account. Email is stored lowercased and is unique.
type User struct {
	ID                string
	Email             string
	Name              string
	PasswordHash      string
	AuthProvider      string
	IsActive          bool
	EmailVerified     bool
	VerificationToken string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	LastLogin         *time.Time
}

// Response is the public view of a user; credentials never leave the service.
type Response struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	IsActive      bool       `json:"isActive"`
	EmailVerified bool       `json:"emailVerified"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	LastLogin     *time.Time `json:"lastLogin,omitempty"`
}

// ToResponse strips credentials from a user.
func ToResponse(u User) Response {
	return Response{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		IsActive:      u.IsActive,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
		LastLogin:     u.LastLogin,
	}
}

// Stats summarizes the user base.
type Stats struct {
	TotalUsers       int `json:"totalUsers"`
	ActiveUsers      int `json:"activeUsers"`
	NewUsersToday    int `json:"newUsersToday"`
	NewUsersThisWeek int `json:"newUsersThisWeek"`
}
