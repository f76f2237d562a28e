package domain

// LoginRequest lleva el ID token de Firebase que el backend canjea por su token de sesión.
type LoginRequest struct {
	Token string `json:"token"`
}

// TokenResponse es el token de sesión del backend. Es opaco para la tienda.
type TokenResponse struct {
	Token string `json:"token"`
}
