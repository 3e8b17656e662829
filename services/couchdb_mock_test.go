package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/jarcoal/httpmock"

	"github.com/cardlink/go-cardlink-server/repository"
)

var mockURL = "http://localhost:5989"

// mockCouch is a stateful in-memory stand-in for CouchDB behind httpmock. It
// implements just enough of the document API for the services: get by id,
// put (full overwrite with a bumped revision), delete and _find with an
// equality selector. Like the real write path, a put always lands and fully
// replaces the stored document.
type mockCouch struct {
	mu   sync.Mutex
	dbs  map[string]map[string]map[string]interface{}
	revs int
}

func newMockCouch(t *testing.T, dbNames ...string) (*mockCouch, *repository.CouchDBSelector) {
	t.Helper()
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	mc := &mockCouch{dbs: map[string]map[string]map[string]interface{}{}}
	for _, name := range dbNames {
		mc.dbs[name] = map[string]map[string]interface{}{}
	}

	httpmock.RegisterResponder("HEAD", fmt.Sprintf(`=~^%s/[^/]+$`, mockURL),
		httpmock.NewStringResponder(200, ""))
	httpmock.RegisterResponder("POST", fmt.Sprintf(`=~^%s/[^/]+/_find$`, mockURL), mc.find)
	httpmock.RegisterResponder("GET", fmt.Sprintf(`=~^%s/[^/]+/[^/]+$`, mockURL), mc.get)
	httpmock.RegisterResponder("PUT", fmt.Sprintf(`=~^%s/[^/]+/[^/]+$`, mockURL), mc.put)
	httpmock.RegisterResponder("DELETE", fmt.Sprintf(`=~^%s/[^/]+/[^/]+$`, mockURL), mc.del)

	selector := repository.NewCouchDBSelector()
	for _, name := range dbNames {
		repo, err := repository.NewCouchDBRepository(mockURL, name, "test", "test", true)
		if err != nil {
			t.Fatal(err)
		}
		selector.AddDB(repo)
	}
	return mc, selector
}

func splitDocPath(req *http.Request) (string, string) {
	parts := strings.Split(strings.Trim(req.URL.Path, "/"), "/")
	return parts[0], parts[1]
}

func (m *mockCouch) get(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	db, id := splitDocPath(req)
	doc, ok := m.dbs[db][id]
	if !ok {
		return httpmock.NewJsonResponse(404, map[string]string{"error": "not_found", "reason": "missing"})
	}
	return httpmock.NewJsonResponse(200, doc)
}

func (m *mockCouch) put(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	db, id := splitDocPath(req)
	var doc map[string]interface{}
	if err := json.NewDecoder(req.Body).Decode(&doc); err != nil {
		return httpmock.NewJsonResponse(400, map[string]string{"error": "bad_request"})
	}
	m.revs++
	rev := fmt.Sprintf("%d-mock", m.revs)
	doc["_id"] = id
	doc["_rev"] = rev
	if m.dbs[db] == nil {
		m.dbs[db] = map[string]map[string]interface{}{}
	}
	m.dbs[db][id] = doc
	return httpmock.NewJsonResponse(201, map[string]interface{}{"ok": true, "id": id, "rev": rev})
}

func (m *mockCouch) del(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	db, id := splitDocPath(req)
	if _, ok := m.dbs[db][id]; !ok {
		return httpmock.NewJsonResponse(404, map[string]string{"error": "not_found", "reason": "missing"})
	}
	delete(m.dbs[db], id)
	return httpmock.NewJsonResponse(200, map[string]interface{}{"ok": true})
}

func (m *mockCouch) find(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	db := strings.Split(strings.Trim(req.URL.Path, "/"), "/")[0]
	var query struct {
		Selector map[string]interface{} `json:"selector"`
		Limit    int                    `json:"limit"`
	}
	if err := json.NewDecoder(req.Body).Decode(&query); err != nil {
		return httpmock.NewJsonResponse(400, map[string]string{"error": "bad_request"})
	}

	docs := []map[string]interface{}{}
	for _, doc := range m.dbs[db] {
		matches := true
		for k, v := range query.Selector {
			if doc[k] != v {
				matches = false
				break
			}
		}
		if matches {
			docs = append(docs, doc)
		}
		if query.Limit > 0 && len(docs) >= query.Limit {
			break
		}
	}
	return httpmock.NewJsonResponse(200, map[string]interface{}{"docs": docs})
}

// putDoc seeds a document directly into the store, bypassing the HTTP layer
func (m *mockCouch) putDoc(db, id string, doc map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.revs++
	doc["_id"] = id
	doc["_rev"] = fmt.Sprintf("%d-mock", m.revs)
	m.dbs[db][id] = doc
}
