package types

type UserProfile struct {
	BaseDocument `json:",inline"` // Address is the user's id
	Name         string           `json:"name,omitempty"`
	Surname      string           `json:"surname,omitempty"`
	Email        string           `json:"email" validate:"required,email"`
	Phone        string           `json:"phone,omitempty"`
	Occupation   string           `json:"occupation,omitempty"`
	Company      string           `json:"company,omitempty"`
	ColorScheme  string           `json:"colorScheme,omitempty"`  // accent color token driving client theming
	ProfileImage string           `json:"profileImage,omitempty"` // path to the uploaded avatar
	CompanyLogo  string           `json:"companyLogo,omitempty"`  // path to the uploaded company logo
	Social       *SocialHandles   `json:"social,omitempty"`
	PasswordHash string           `json:"passwordHash,omitempty"` // base64 scrypt hash, never returned to clients
	Created      int64            `json:"created,omitempty"`
	Modified     int64            `json:"modified,omitempty"`
}

// SocialHandles is the closed set of supported platforms. An absent handle is
// an empty string with omitempty, never an explicit null.
type SocialHandles struct {
	WhatsApp  string `json:"whatsapp,omitempty"`
	X         string `json:"x,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Website   string `json:"website,omitempty"`
	TikTok    string `json:"tiktok,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}
