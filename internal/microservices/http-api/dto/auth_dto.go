package dto

// Data Transfer Objects for the registration flow

// SignupRequest: payload for POST /auth/signup/
type SignupRequest struct {
	Username string `json:"username" binding:"required,max=150,username,notme"`
	Email    string `json:"email" binding:"required,email,max=254"`
}

// SignupResponse echoes the accepted payload; the code itself goes out by email.
type SignupResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenRequest: payload for POST /auth/token/
type TokenRequest struct {
	Username         string `json:"username" binding:"required"`
	ConfirmationCode string `json:"confirmation_code" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}
