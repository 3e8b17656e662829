package types

// ContactList is the single document holding every contact a user collected.
// Entries keep insertion order; the order is the index space for positional deletion.
// Duplicate entries (same name and phone) are permitted.
type ContactList struct {
	BaseDocument `json:",inline"`
	OwnerAddress string         `json:"ownerAddress" validate:"required"` // address of the owner of this list
	Entries      []ContactEntry `json:"entries"`
}

// ContactEntry is one saved contact. Created is stamped server side at append
// time and immutable thereafter. EntryID is assigned at append so clients can
// reference an entry without relying on its position.
type ContactEntry struct {
	EntryID  string `json:"entryId,omitempty"`
	Name     string `json:"name,omitempty"`
	Surname  string `json:"surname,omitempty"`
	Phone    string `json:"phone,omitempty"`
	HowWeMet string `json:"howWeMet,omitempty"`
	Created  int64  `json:"created,omitempty"`
}
