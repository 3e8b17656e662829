package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"

	"github.com/cardlink/go-cardlink-server/global"
	"github.com/cardlink/go-cardlink-server/repository"
	"github.com/cardlink/go-cardlink-server/types"
)

func newWalletService(t *testing.T) (*mockCouch, *WalletPassService) {
	t.Helper()
	global.Conf.WalletPass.URL = "http://wallet.test"
	mc, selector := newMockCouch(t, repository.Users, repository.Cards)
	svc := NewWalletPassService(selector, nil)
	httpmock.ActivateNonDefault(svc.client.GetClient())
	return mc, svc
}

func TestCreatePass(t *testing.T) {
	mc, svc := newWalletService(t)

	mc.putDoc(repository.Users, "owner-1", map[string]interface{}{
		"name":  "Ada",
		"email": "ada@example.com",
	})
	resp, _ := httpmock.NewJsonResponder(200, map[string]string{"url": "https://wallet.test/p/123"})
	httpmock.RegisterResponder("POST", "http://wallet.test/passes", resp)

	pass, err := svc.CreatePass(context.Background(), "owner-1", "my card")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "https://wallet.test/p/123", pass.PassURL)
}

func TestCreatePassProviderFailure(t *testing.T) {
	mc, svc := newWalletService(t)

	mc.putDoc(repository.Users, "owner-1", map[string]interface{}{
		"name":  "Ada",
		"email": "ada@example.com",
	})
	httpmock.RegisterResponder("POST", "http://wallet.test/passes",
		httpmock.NewStringResponder(502, `{"error":"upstream broken"}`))

	_, err := svc.CreatePass(context.Background(), "owner-1", "my card")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrUpstream))
}

func TestCreatePassUnknownOwner(t *testing.T) {
	_, svc := newWalletService(t)

	_, err := svc.CreatePass(context.Background(), "ghost", "my card")
	assert.Equal(t, types.ErrNotFound, err)
}
