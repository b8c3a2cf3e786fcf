package domain

// StoreConfig holds display and theming settings edited from the admin panel.
type StoreConfig struct {
	StoreName      string `json:"storeName"`
	TotemName      string `json:"totemName"`
	Slogan         string `json:"slogan"`
	LogoURL        string `json:"logoUrl"`
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
	AccentColor    string `json:"accentColor"`
	WelcomeMessage string `json:"welcomeMessage"`
	AdminPIN       string `json:"adminPin"`
}

// Public strips fields the kiosk screen must not see.
func (c StoreConfig) Public() StoreConfig {
	c.AdminPIN = ""
	return c
}
