package dto

type UserLogin struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Username  string  `json:"username"`
	IsAdmin   bool    `json:"is_admin"`
	IsStore   bool    `json:"is_store"`
	StoreName *string `json:"store_name,omitempty"`
	Expiry    float64 `json:"exp"`
	Iat       float64 `json:"iat"`
}

type SetPasswordRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
	IsStore  bool   `json:"is_store"`
}
