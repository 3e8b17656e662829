package repository

import (
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/cardlink/go-cardlink-server/types"
)

// CreateOwnerAddressIndex creates a Mango index over ownerAddress so the
// contacts and cards databases can be queried by owner
func CreateOwnerAddressIndex(repo Repository) error {
	client := repo.GetClient().(*resty.Client)

	index := map[string]interface{}{
		"index": map[string]interface{}{
			"fields": []string{"ownerAddress"},
		},
		"name": "owner-address-index",
		"type": "json",
		"ddoc": "owner-address",
	}

	return postIndex(client, repo.GetDBName(), index, "owner")
}

// CreateEmailIndex creates a Mango index over email so the users database
// can be queried at login
func CreateEmailIndex(repo Repository) error {
	client := repo.GetClient().(*resty.Client)

	index := map[string]interface{}{
		"index": map[string]interface{}{
			"fields": []string{"email"},
		},
		"name": "email-index",
		"type": "json",
		"ddoc": "email",
	}

	return postIndex(client, repo.GetDBName(), index, "email")
}

func postIndex(client *resty.Client, dbName string, index map[string]interface{}, label string) error {
	var dbErr types.CouchDBError
	res, err := client.R().SetBody(index).SetError(&dbErr).Post(fmt.Sprintf("%s/_index", dbName))
	if err != nil {
		return err
	}
	if dbErr.Error != "" {
		return fmt.Errorf("failed to create %s index on %s: %s", label, dbName, dbErr.Error)
	}
	if res.IsError() {
		return fmt.Errorf("failed to create %s index on %s: %s", label, dbName, res.Status())
	}
	return nil
}
