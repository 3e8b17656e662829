package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jarcoal/httpmock"

	"github.com/cardlink/go-cardlink-server/types"
)

// implements Repository interface using CouchDB
type CouchDBRepository struct {
	client *resty.Client
	dbName string
}

func NewCouchDBRepository(url, dbName string, username string, password string, mock bool) (Repository, error) {
	cl := resty.New().SetBaseURL(url).SetTimeout(time.Second * 10)
	cl.SetHeader("Content-Type", "application/json")
	cl.SetHeader("Accept", "application/json")
	cl.SetBasicAuth(username, password)

	if mock {
		httpmock.ActivateNonDefault(cl.GetClient())
	}

	existsRes, existsErr := cl.R().Head(dbName)
	if existsErr != nil {
		return nil, fmt.Errorf("failed to check if database exists: %s", existsErr.Error())
	}
	if existsRes.StatusCode() == 200 {
		return &CouchDBRepository{cl, dbName}, nil
	}

	var ok types.OK
	var dbErr types.CouchDBError
	// create DB since it doesn't exist
	cl.R().SetResult(&ok).SetError(&dbErr).Put(dbName)
	if dbErr.Error != "" {
		return nil, fmt.Errorf("failed to create database %s: %s", dbName, dbErr.Error)
	}
	if !ok.IsOK {
		return nil, fmt.Errorf("failed to create database %s", dbName)
	}
	return &CouchDBRepository{cl, dbName}, nil
}

// GetByID returns a document by its ID
func (c *CouchDBRepository) GetByID(ctx context.Context, id string) (interface{}, error) {
	response, err := c.client.R().SetContext(ctx).Get(fmt.Sprintf("%s/%s", c.dbName, id))
	if err != nil {
		return nil, err
	}
	if hErr := handleError(response); hErr != nil {
		return nil, hErr
	}
	return response, nil
}

// Find runs a Mango selector query against the database
func (c *CouchDBRepository) Find(ctx context.Context, selector map[string]interface{}, limit int, skip int) (interface{}, error) {
	if limit <= 0 {
		limit = 25
	}
	response, err := c.client.R().SetContext(ctx).SetBody(map[string]interface{}{
		"selector": selector,
		"limit":    limit,
		"skip":     skip,
	}).Post(fmt.Sprintf("%s/_find", c.dbName))
	if err != nil {
		return nil, err
	}
	if hErr := handleError(response); hErr != nil {
		return nil, hErr
	}
	return response, nil
}

// Save creates a new doc or overwrites an existing one. The current revision is
// re-read immediately before the PUT, so the write always lands on the latest
// revision and fully replaces whatever is stored (last-write-wins at whole
// document granularity; concurrent writers are not detected).
func (c *CouchDBRepository) Save(ctx context.Context, docID string, data interface{}) error {
	body, mErr := json.Marshal(data)
	if mErr != nil {
		return mErr
	}
	var doc map[string]interface{}
	if uErr := json.Unmarshal(body, &doc); uErr != nil {
		return uErr
	}
	delete(doc, "id")
	delete(doc, "rev")

	// refresh the revision; a 404 means a fresh document
	var existing types.BaseDocument
	headRes, headErr := c.client.R().SetContext(ctx).SetResult(&existing).Get(fmt.Sprintf("%s/%s", c.dbName, docID))
	if headErr == nil && headRes.StatusCode() == 200 && existing.UnderscoreRev != "" {
		doc["_rev"] = existing.UnderscoreRev
	} else {
		delete(doc, "_rev")
	}

	var ok types.OK
	var dbErr types.CouchDBError
	res, err := c.client.R().SetContext(ctx).SetBody(doc).SetResult(&ok).SetError(&dbErr).Put(fmt.Sprintf("%s/%s", c.dbName, docID))
	if err != nil {
		return err
	}
	if dbErr.Error != "" {
		return fmt.Errorf("failed to save document: %s", dbErr.Error)
	}
	if hErr := handleError(res); hErr != nil {
		return hErr
	}
	return nil
}

// Update updates an existing document (same write path as Save)
func (c *CouchDBRepository) Update(ctx context.Context, id string, data interface{}) error {
	return c.Save(ctx, id, data)
}

// Delete deletes a document by its ID
func (c *CouchDBRepository) Delete(ctx context.Context, id string) error {
	resp, err := c.GetByID(ctx, id)
	if err != nil {
		return err
	}
	var d types.BaseDocument
	if mErr := MapToObject(resp, &d); mErr != nil {
		return mErr
	}
	rev := d.UnderscoreRev
	if rev == "" {
		rev = d.Rev
	}

	var delErr types.CouchDBError
	res, dErr := c.client.R().SetContext(ctx).SetError(&delErr).SetQueryParam("rev", rev).Delete(fmt.Sprintf("%s/%s", c.dbName, id))
	if dErr != nil {
		return dErr
	}
	if delErr.Error != "" {
		return fmt.Errorf("failed to delete document: %s", delErr.Error)
	}
	return handleError(res)
}

// return name of the database
func (c *CouchDBRepository) GetDBName() string {
	return c.dbName
}

// returns a resty client
func (c *CouchDBRepository) GetClient() interface{} {
	return c.client
}
