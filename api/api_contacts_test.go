package api

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// The nil services prove the store is never consulted: reaching it would panic.
func newContactsRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	contactsApi := NewContactsApi(nil, nil)

	router := gin.New()
	router.POST("/api/v1/saveContactInfo", contactsApi.SaveContactInfo)
	router.DELETE("/api/v1/contacts/:id/contact/:index", contactsApi.DeleteContactByIndex)
	return router
}

func TestDeleteContactByIndexRejectsNonInteger(t *testing.T) {
	router := newContactsRouter()

	for _, index := range []string{"abc", "1.5", "one", " "} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("DELETE", "/api/v1/contacts/doc-1/contact/"+url.PathEscape(index), nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "index must be an integer")
	}
}

func TestSaveContactInfoRejectsMissingFields(t *testing.T) {
	router := newContactsRouter()

	cases := []string{
		`{}`,
		`{"userId":"owner-1"}`,
		`{"userId":"owner-1","contactInfo":{"name":"Ada"}}`,
		`{"userId":"owner-1","contactInfo":{"phone":"+111"}}`,
		`{"contactInfo":{"name":"Ada","phone":"+111"}}`,
	}
	for _, body := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/v1/saveContactInfo", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "body: %s", body)
	}
}
