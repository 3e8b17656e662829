package types

type OK struct {
	IsOK bool `json:"ok"`
}

type CouchDBError struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

// BaseDocument carries the CouchDB document identity and revision
type BaseDocument struct {
	UnderscoreRev string `json:"_rev,omitempty"`
	Rev           string `json:"rev,omitempty"`
	ID            string `json:"id,omitempty"`
	UnderscoreID  string `json:"_id,omitempty"`
	OK            bool   `json:"ok,omitempty"`
}

// Index is a CouchDB Mango index definition
type Index struct {
	DesignDoc  string      `json:"ddoc,omitempty"`
	Name       string      `json:"name"`
	Type       string      `json:"type"`
	Definition interface{} `json:"def"`
}
