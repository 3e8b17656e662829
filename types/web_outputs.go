package types

type OutputLogin struct {
	Token   string       `json:"token"`
	Address string       `json:"address"`
	Profile *UserProfile `json:"profile,omitempty"`
}

// OutputSaveContact distinguishes full success from saved-but-email-failed
type OutputSaveContact struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	EmailSent bool   `json:"emailSent"`
}

type OutputContactAdded struct {
	ID string `json:"id"`
}

type OutputDeletedDocument struct {
	ID string `json:"id"`
}

// OutputEntryDeleted returns the list length after a positional delete
type OutputEntryDeleted struct {
	ID        string `json:"id"`
	Remaining int    `json:"remaining"`
}

type OutputWalletPass struct {
	PassURL string `json:"passUrl"`
}

type OutputMediaUploaded struct {
	Path string `json:"path"`
}
