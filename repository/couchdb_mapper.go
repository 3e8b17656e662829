package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/go-resty/resty/v2"
)

/**
* Object Mapper (from couchdb resty response to object)
**/

func MapToObject(resp interface{}, obj interface{}) error {
	if response, ok := resp.(*resty.Response); ok {
		data := response.Body()

		// Check if obj is a pointer to a struct
		val := reflect.ValueOf(obj)
		if val.Kind() != reflect.Ptr || val.Elem().Kind() != reflect.Struct {
			return errors.New("obj is not a pointer to a struct")
		}

		err := json.Unmarshal(data, obj)
		if err != nil {
			return fmt.Errorf("%s cannot be mapped to the given object", response.Body())
		}

		return nil
	}
	return errors.New("resp is not a resty.Response")
}

// MapFindToList maps a _find response into a slice of documents
func MapFindToList(resp interface{}, docs interface{}) error {
	if response, ok := resp.(*resty.Response); ok {
		var envelope struct {
			Docs json.RawMessage `json:"docs"`
		}
		if err := json.Unmarshal(response.Body(), &envelope); err != nil {
			return fmt.Errorf("%s is not a find response", response.Body())
		}
		if err := json.Unmarshal(envelope.Docs, docs); err != nil {
			return fmt.Errorf("failed to map find response docs: %w", err)
		}
		return nil
	}
	return errors.New("resp is not a resty.Response")
}
