package dto

// LoginRequest is the organizer login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"organizer@hackfest.app"`
	Password string `json:"password" binding:"required" example:"s3cret!"`
}

// TokenResponse carries an access token
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int    `json:"expiresIn" example:"3600"`
	Role        string `json:"role" example:"ORGANIZER"`
}
