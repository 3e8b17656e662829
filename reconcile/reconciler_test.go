package reconcile

import (
	"context"
	"strings"
	"testing"

	"github.com/go-kit/log"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"

	"github.com/cardlink/go-cardlink-server/types"
)

const (
	testBaseURL      = "http://server.test"
	testDefaultColor = "#1E88E5"
)

func newTestReconciler(t *testing.T) (*Reconciler, *MemorySessionStore) {
	t.Helper()
	store := NewMemorySessionStore()
	r := NewReconciler(testBaseURL, store, testDefaultColor, log.NewNopLogger())
	httpmock.ActivateNonDefault(r.client.GetClient())
	t.Cleanup(httpmock.DeactivateAndReset)
	return r, store
}

func signedIn(t *testing.T, store *MemorySessionStore) {
	t.Helper()
	if err := store.Set(&Session{Address: "owner-1", Token: "tok", Name: "Ada", Email: "ada@example.com"}); err != nil {
		t.Fatal(err)
	}
}

func mockUser(user types.UserProfile) {
	resp, _ := httpmock.NewJsonResponder(200, user)
	httpmock.RegisterResponder("GET", testBaseURL+"/api/v1/user/me", resp)
}

func mockCard(card types.CardProfile) {
	resp, _ := httpmock.NewJsonResponder(200, card)
	httpmock.RegisterResponder("GET", testBaseURL+"/api/v1/card/owner-1", resp)
}

func mockQR(png []byte) {
	httpmock.RegisterResponder("GET", testBaseURL+"/api/v1/generateQR/owner-1",
		httpmock.NewBytesResponder(200, png))
}

func TestRefreshLoggedOut(t *testing.T) {
	r, _ := newTestReconciler(t)

	state := r.Refresh(context.Background())

	assert.False(t, state.LoggedIn)
	assert.Nil(t, state.User)
	assert.Equal(t, testDefaultColor, state.ThemeColor)
	assert.Empty(t, state.QRDataURI)
}

func TestRefreshBuildsViewState(t *testing.T) {
	r, store := newTestReconciler(t)
	signedIn(t, store)

	mockUser(types.UserProfile{
		Name:        "Ada",
		Surname:     "Lovelace",
		Email:       "ada@example.com",
		Occupation:  "Engineer",
		Company:     "Analytical Engines",
		ColorScheme: "#FF5722",
	})
	mockCard(types.CardProfile{
		OwnerAddress: "owner-1",
		Title:        "Founder",
		Email:        "ada@cards.example.com",
	})
	mockQR([]byte{0x89, 'P', 'N', 'G'})

	state := r.Refresh(context.Background())

	assert.True(t, state.LoggedIn)
	assert.Equal(t, "owner-1", state.Address)
	assert.Equal(t, "#FF5722", state.ThemeColor)
	// card fields win, user fields fill the gaps
	assert.Equal(t, "Ada Lovelace", state.Display.Name)
	assert.Equal(t, "Founder", state.Display.Title)
	assert.Equal(t, "Analytical Engines", state.Display.Company)
	assert.Equal(t, "ada@cards.example.com", state.Display.Email)
	assert.True(t, strings.HasPrefix(state.QRDataURI, "data:image/png;base64,"))
}

func TestRefreshThemeFallsBackToDefault(t *testing.T) {
	r, store := newTestReconciler(t)
	signedIn(t, store)

	mockUser(types.UserProfile{Name: "Ada", Email: "ada@example.com"})
	httpmock.RegisterResponder("GET", testBaseURL+"/api/v1/card/owner-1",
		httpmock.NewStringResponder(404, `{"error":"not found"}`))
	mockQR([]byte{0x89})

	state := r.Refresh(context.Background())

	assert.Equal(t, testDefaultColor, state.ThemeColor)
	assert.Nil(t, state.Card)
	// without a card the user profile carries the display
	assert.Equal(t, "ada@example.com", state.Display.Email)
}

// One endpoint failing must not blank what the other steps refreshed, and a
// previously loaded value survives a failed re-fetch.
func TestRefreshStepFailureKeepsPriorState(t *testing.T) {
	r, store := newTestReconciler(t)
	signedIn(t, store)

	mockUser(types.UserProfile{Name: "Ada", Email: "ada@example.com", ColorScheme: "#FF5722"})
	mockCard(types.CardProfile{OwnerAddress: "owner-1", Company: "Analytical Engines"})
	mockQR([]byte{0x89})

	first := r.Refresh(context.Background())
	assert.NotNil(t, first.User)
	assert.NotEmpty(t, first.QRDataURI)

	// user endpoint starts failing, card changes company
	httpmock.RegisterResponder("GET", testBaseURL+"/api/v1/user/me",
		httpmock.NewStringResponder(500, `{"error":"boom"}`))
	mockCard(types.CardProfile{OwnerAddress: "owner-1", Company: "Babbage & Co"})

	second := r.Refresh(context.Background())

	// stale user retained, fresh card applied
	assert.Equal(t, "Ada", second.User.Name)
	assert.Equal(t, "#FF5722", second.ThemeColor)
	assert.Equal(t, "Babbage & Co", second.Display.Company)
}

func TestRefreshContactsMissingRendersEmpty(t *testing.T) {
	r, store := newTestReconciler(t)
	signedIn(t, store)

	httpmock.RegisterResponder("GET", testBaseURL+"/api/v1/user/me/contacts",
		httpmock.NewStringResponder(404, `{"error":"contact list not found"}`))

	state := r.RefreshContacts(context.Background())

	assert.True(t, state.ContactsLoaded)
	assert.NotNil(t, state.Contacts)
	assert.Len(t, state.Contacts, 0)
}

func TestRefreshContactsLoadsEntries(t *testing.T) {
	r, store := newTestReconciler(t)
	signedIn(t, store)

	resp, _ := httpmock.NewJsonResponder(200, types.ContactList{
		OwnerAddress: "owner-1",
		Entries: []types.ContactEntry{
			{EntryID: "e1", Name: "Grace", Phone: "+222"},
			{EntryID: "e2", Name: "Edsger", Phone: "+333"},
		},
	})
	httpmock.RegisterResponder("GET", testBaseURL+"/api/v1/user/me/contacts", resp)

	state := r.RefreshContacts(context.Background())

	assert.True(t, state.ContactsLoaded)
	assert.Len(t, state.Contacts, 2)
	assert.Equal(t, "Grace", state.Contacts[0].Name)
}

func TestRefreshContactsFailureKeepsPriorEntries(t *testing.T) {
	r, store := newTestReconciler(t)
	signedIn(t, store)

	resp, _ := httpmock.NewJsonResponder(200, types.ContactList{
		OwnerAddress: "owner-1",
		Entries:      []types.ContactEntry{{EntryID: "e1", Name: "Grace"}},
	})
	httpmock.RegisterResponder("GET", testBaseURL+"/api/v1/user/me/contacts", resp)
	r.RefreshContacts(context.Background())

	httpmock.RegisterResponder("GET", testBaseURL+"/api/v1/user/me/contacts",
		httpmock.NewStringResponder(500, `{"error":"boom"}`))
	state := r.RefreshContacts(context.Background())

	assert.Len(t, state.Contacts, 1)
	assert.Equal(t, "Grace", state.Contacts[0].Name)
}

func TestSignInPersistsSession(t *testing.T) {
	r, store := newTestReconciler(t)

	resp, _ := httpmock.NewJsonResponder(200, types.OutputLogin{
		Token:   "tok",
		Address: "owner-1",
		Profile: &types.UserProfile{Name: "Ada"},
	})
	httpmock.RegisterResponder("POST", testBaseURL+"/api/v1/login", resp)

	if err := r.SignIn(context.Background(), "ada@example.com", "s3cret"); err != nil {
		t.Fatal(err)
	}

	session, err := store.Get()
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "owner-1", session.Address)
	assert.Equal(t, "tok", session.Token)
	assert.Equal(t, "Ada", session.Name)
}

func TestSignOutClearsSessionAndState(t *testing.T) {
	r, store := newTestReconciler(t)
	signedIn(t, store)

	mockUser(types.UserProfile{Name: "Ada", Email: "ada@example.com"})
	mockCard(types.CardProfile{OwnerAddress: "owner-1"})
	mockQR([]byte{0x89})
	r.Refresh(context.Background())

	if err := r.SignOut(); err != nil {
		t.Fatal(err)
	}
	_, err := store.Get()
	assert.Equal(t, ErrNoSession, err)
	assert.False(t, r.State().LoggedIn)
	assert.Nil(t, r.State().User)
}

func TestFileSessionStoreRoundTrip(t *testing.T) {
	store := NewFileSessionStore(t.TempDir())

	_, err := store.Get()
	assert.Equal(t, ErrNoSession, err)

	in := &Session{Address: "owner-1", Token: "tok"}
	if sErr := store.Set(in); sErr != nil {
		t.Fatal(sErr)
	}
	out, gErr := store.Get()
	if gErr != nil {
		t.Fatal(gErr)
	}
	assert.Equal(t, in.Address, out.Address)
	assert.Equal(t, in.Token, out.Token)

	if cErr := store.Clear(); cErr != nil {
		t.Fatal(cErr)
	}
	_, err = store.Get()
	assert.Equal(t, ErrNoSession, err)
}
