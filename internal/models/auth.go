package models

// The feed speaks a client-credentials OAuth dialect: a token exchange on
// startup, then refresh-token exchanges as expiry approaches.

type AuthRequest struct {
	GrantType    string `json:"grant_type"`
	ClientId     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type AuthResponse struct {
	Success bool      `json:"success"`
	Data    TokenData `json:"data,omitempty"`
	Message string    `json:"message,omitempty"`
}

type TokenData struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope,omitempty"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type TokenRefreshRequest struct {
	GrantType    string `json:"grant_type"`
	ClientId     string `json:"client_id"`
	RefreshToken string `json:"refresh_token"`
}

type StationFeedResponse struct {
	Success  bool         `json:"success"`
	Data     []GasStation `json:"data"`
	Message  string       `json:"message,omitempty"`
	MetaData MetaData     `json:"metadata"`
}

type MetaData struct {
	BatchNumber  int  `json:"batch_number"`
	BatchSize    int  `json:"batch_size"`
	TotalBatches int  `json:"total_batches"`
	Cached       bool `json:"cached"`
}
