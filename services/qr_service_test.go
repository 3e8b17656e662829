package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cardlink/go-cardlink-server/global"
	"github.com/cardlink/go-cardlink-server/repository"
	"github.com/cardlink/go-cardlink-server/types"
)

func TestGenerateQRUnknownOwner(t *testing.T) {
	_, selector := newMockCouch(t, repository.Users)
	svc := NewQRService(selector, nil)

	_, err := svc.Generate(context.Background(), "ghost")
	assert.Equal(t, types.ErrNotFound, err)
}

func TestGenerateQR(t *testing.T) {
	global.Conf.Cardlink.CardBaseURL = "http://localhost:8080/card"
	mc, selector := newMockCouch(t, repository.Users)
	svc := NewQRService(selector, nil)

	mc.putDoc(repository.Users, "owner-1", map[string]interface{}{
		"name":  "Ada",
		"email": "ada@example.com",
	})

	png, err := svc.Generate(context.Background(), "owner-1")
	if err != nil {
		t.Fatal(err)
	}
	assert.NotEmpty(t, png)
	// PNG signature
	assert.True(t, bytes.HasPrefix(png, []byte{0x89, 'P', 'N', 'G'}))

	// same owner encodes the same payload
	again, _ := svc.Generate(context.Background(), "owner-1")
	assert.Equal(t, png, again)
}

func TestCardURL(t *testing.T) {
	global.Conf.Cardlink.CardBaseURL = "http://localhost:8080/card/"
	assert.Equal(t, "http://localhost:8080/card/owner-1", CardURL("owner-1"))
}
