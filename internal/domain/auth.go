package domain

// Credentials — вход администратора.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session — ответ /auth/login.
type Session struct {
	AccessToken string `json:"access_token"`
}
