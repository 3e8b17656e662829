package types

// CardProfile is the public facing card owned by exactly one UserProfile.
// Card fields take display precedence over the corresponding user fields.
type CardProfile struct {
	BaseDocument `json:",inline"`
	OwnerAddress string       `json:"ownerAddress" validate:"required"`
	Company      string       `json:"company,omitempty"`
	Email        string       `json:"email,omitempty"`
	PhoneNumber  string       `json:"phoneNumber,omitempty"`
	Title        string       `json:"title,omitempty"`
	SocialLinks  []SocialLink `json:"socialLinks,omitempty"`
	Created      int64        `json:"created,omitempty"`
	Modified     int64        `json:"modified,omitempty"`
}

type SocialLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}
