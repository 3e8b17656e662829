package types

// for login
type InputEmailPassword struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// for register
type InputRegister struct {
	InputEmailPassword
	Name    string `json:"name" validate:"required"`
	Surname string `json:"surname,omitempty"`
}

// InputContactEntry is the contact payload a scanner submits when saving a card
type InputContactEntry struct {
	Name     string `json:"name" validate:"required"`
	Surname  string `json:"surname,omitempty"`
	Phone    string `json:"phone" validate:"required"`
	HowWeMet string `json:"howWeMet,omitempty"`
}

// InputSaveContact is the body of the public save-contact endpoint
type InputSaveContact struct {
	UserID      string             `json:"userId" validate:"required"`
	ContactInfo *InputContactEntry `json:"contactInfo" validate:"required"`
}

// InputContactUpdate is the body of the authenticated append endpoint
type InputContactUpdate struct {
	ContactInfo *InputContactEntry `json:"contactInfo" validate:"required"`
}

// InputWalletPass proxies a pass creation request to the third party provider
type InputWalletPass struct {
	Description string `json:"description,omitempty"`
}
