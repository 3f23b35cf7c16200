package dto

// AuthRequest describes login/password payload.
type AuthRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// ProfileRequest is the customer contact data used for checkout prefill.
type ProfileRequest struct {
	FullName   string `json:"full_name"`
	NationalID string `json:"national_id"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
}

// ProfileResponse mirrors ProfileRequest.
type ProfileResponse = ProfileRequest

// TokenResponse carries the issued bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}
