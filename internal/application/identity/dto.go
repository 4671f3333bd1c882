package identity

import "time"

// SignupInput contains the input for creating an operator account
type SignupInput struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// LoginInput contains the input for user login
type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserInfo is the public view of an operator
type UserInfo struct {
	ID          uint64     `json:"id"`
	Username    string     `json:"username"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// SessionResult carries a newly issued session. The token is set as a
// cookie by the handler and echoed for API clients.
type SessionResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserInfo  `json:"user"`
}

// LogoutInput identifies the session being ended
type LogoutInput struct {
	UserID    uint64
	JTI       string
	ExpiresAt time.Time
}
