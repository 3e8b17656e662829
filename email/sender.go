package email

import (
	"context"
	"sync"
)

// Sender delivers transactional notification emails through a provider
type Sender interface {
	// Send returns the provider message id or an error
	Send(ctx context.Context, to string, subject string, body string) (string, error)
}

var (
	sendersMu sync.RWMutex
	senders   = make(map[string]Sender)
)

// RegisterSender makes a sender available by the provided name.
// If RegisterSender is called twice with the same name or if sender is nil,
// it panics.
func RegisterSender(name string, s Sender) {
	sendersMu.Lock()
	defer sendersMu.Unlock()
	if s == nil {
		panic("email: Register sender is nil")
	}
	if _, dup := senders[name]; dup {
		panic("email: Register called twice for sender " + name)
	}
	senders[name] = s
}

// GetSender returns a registered sender or nil
func GetSender(name string) Sender {
	sendersMu.RLock()
	defer sendersMu.RUnlock()
	return senders[name]
}

// Senders returns the names of the registered senders
func Senders() []string {
	sendersMu.RLock()
	defer sendersMu.RUnlock()
	names := make([]string, 0, len(senders))
	for name := range senders {
		names = append(names, name)
	}
	return names
}

// for tests only
func unregisterAllSenders() {
	sendersMu.Lock()
	defer sendersMu.Unlock()
	senders = make(map[string]Sender)
}
