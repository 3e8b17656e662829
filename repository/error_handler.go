package repository

import (
	"encoding/json"
	"errors"

	"github.com/go-kit/log/level"
	"github.com/go-resty/resty/v2"

	"github.com/cardlink/go-cardlink-server/global"
	"github.com/cardlink/go-cardlink-server/types"
)

func handleError(reqErr *resty.Response) error {
	if reqErr.StatusCode() == 404 {
		return types.ErrNotFound
	}
	if reqErr.StatusCode() == 409 {
		return types.ErrConflict
	}
	if reqErr.IsError() {
		var body map[string]interface{}
		uErr := json.Unmarshal(reqErr.Body(), &body)
		if uErr != nil {
			level.Error(global.Logger).Log("msg", "failed to unmarshal couchdb error response", "error", uErr.Error())
			return uErr
		}
		if errDesc, ok := body["error"]; ok {
			return errors.New(errDesc.(string))
		}
		return types.ErrBadRequest
	}
	return nil
}
