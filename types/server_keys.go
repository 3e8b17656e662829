package types

// ServerKeys is the on disk format of the servers ed25519 signing keypair
type ServerKeys struct {
	PrivateKey string `json:"privateKey"` // base64 standard encoding
	PublicKey  string `json:"publicKey"`
	Created    int64  `json:"created"`
}
