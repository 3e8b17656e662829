package reconcile

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/go-resty/resty/v2"

	"github.com/cardlink/go-cardlink-server/types"
)

// DisplayProfile is what the card screen renders after merging the card
// document over the user profile. Card fields win; user fields fill the gaps.
type DisplayProfile struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Company string `json:"company"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

// ViewState is the full client-side view model one reconciliation pass
// produces. Fields a failed step could not refresh keep their previous value.
type ViewState struct {
	LoggedIn       bool
	Address        string
	User           *types.UserProfile
	Card           *types.CardProfile
	Display        DisplayProfile
	ThemeColor     string
	QRDataURI      string
	Contacts       []types.ContactEntry
	ContactsLoaded bool
}

// Reconciler rebuilds the view state from the server on every screen focus.
// It never trusts cached view state across focuses; the persisted session is
// the only durable client-side record. Steps are isolated: one endpoint
// failing leaves the rest of the state refreshed.
type Reconciler struct {
	client       *resty.Client
	store        SessionStore
	logger       log.Logger
	defaultColor string
	state        ViewState
}

func NewReconciler(baseURL string, store SessionStore, defaultColor string, logger log.Logger) *Reconciler {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(time.Second * 10).
		SetHeader("Content-Type", "application/json")
	return &Reconciler{
		client:       client,
		store:        store,
		logger:       logger,
		defaultColor: defaultColor,
	}
}

// State returns the view state produced by the last reconciliation pass
func (r *Reconciler) State() ViewState {
	return r.state
}

// SignIn exchanges credentials for a session token and persists the session
func (r *Reconciler) SignIn(ctx context.Context, email, password string) error {
	var out types.OutputLogin
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(types.InputEmailPassword{Email: email, Password: password}).
		SetResult(&out).
		Post("/api/v1/login")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("login failed: %s", resp.Status())
	}
	session := &Session{
		Address: out.Address,
		Token:   out.Token,
		Email:   email,
	}
	if out.Profile != nil {
		session.Name = out.Profile.Name
	}
	return r.store.Set(session)
}

// SignOut clears the persisted session and resets the view state
func (r *Reconciler) SignOut() error {
	r.state = ViewState{ThemeColor: r.defaultColor}
	return r.store.Clear()
}

// Refresh is the card-screen reconciliation pass: resolve the session, then
// re-fetch the user profile, the card, and the QR image. Called on every
// screen focus.
func (r *Reconciler) Refresh(ctx context.Context) ViewState {
	session, err := r.store.Get()
	if err != nil {
		// logged out: drop everything, keep only the default theme
		r.state = ViewState{ThemeColor: r.defaultColor}
		return r.state
	}
	r.state.LoggedIn = true
	r.state.Address = session.Address

	r.refreshUser(ctx, session)
	r.refreshThemeColor()
	r.refreshCard(ctx, session)
	r.mergeDisplay()
	r.refreshQR(ctx, session)

	return r.state
}

// RefreshContacts is the contacts-screen pass: resolve the session and
// re-fetch the contact list. A 404 means nothing was saved yet and renders
// the same as an empty list.
func (r *Reconciler) RefreshContacts(ctx context.Context) ViewState {
	session, err := r.store.Get()
	if err != nil {
		r.state = ViewState{ThemeColor: r.defaultColor}
		return r.state
	}
	r.state.LoggedIn = true
	r.state.Address = session.Address

	var list types.ContactList
	resp, rErr := r.authRequest(ctx, session).
		SetResult(&list).
		Get("/api/v1/user/me/contacts")
	if rErr != nil {
		level.Error(r.logger).Log("msg", "contacts fetch failed", "err", rErr)
		return r.state
	}
	switch {
	case resp.StatusCode() == 404:
		r.state.Contacts = []types.ContactEntry{}
		r.state.ContactsLoaded = true
	case resp.IsError():
		level.Error(r.logger).Log("msg", "contacts fetch failed", "status", resp.Status())
	default:
		r.state.Contacts = list.Entries
		if r.state.Contacts == nil {
			r.state.Contacts = []types.ContactEntry{}
		}
		r.state.ContactsLoaded = true
	}
	return r.state
}

func (r *Reconciler) authRequest(ctx context.Context, session *Session) *resty.Request {
	return r.client.R().
		SetContext(ctx).
		SetHeader("Authorization", session.Token)
}

func (r *Reconciler) refreshUser(ctx context.Context, session *Session) {
	var user types.UserProfile
	resp, err := r.authRequest(ctx, session).
		SetResult(&user).
		Get("/api/v1/user/me")
	if err != nil {
		level.Error(r.logger).Log("msg", "user fetch failed", "err", err)
		return
	}
	if resp.IsError() {
		level.Error(r.logger).Log("msg", "user fetch failed", "status", resp.Status())
		return
	}
	r.state.User = &user
}

// refreshThemeColor derives the accent color from the freshest known profile,
// falling back to the app default when nothing is set
func (r *Reconciler) refreshThemeColor() {
	if r.state.User != nil && r.state.User.ColorScheme != "" {
		r.state.ThemeColor = r.state.User.ColorScheme
		return
	}
	r.state.ThemeColor = r.defaultColor
}

func (r *Reconciler) refreshCard(ctx context.Context, session *Session) {
	var card types.CardProfile
	resp, err := r.authRequest(ctx, session).
		SetResult(&card).
		Get("/api/v1/card/" + session.Address)
	if err != nil {
		level.Error(r.logger).Log("msg", "card fetch failed", "err", err)
		return
	}
	if resp.StatusCode() == 404 {
		// no card published yet, the user profile carries the display
		r.state.Card = nil
		return
	}
	if resp.IsError() {
		level.Error(r.logger).Log("msg", "card fetch failed", "status", resp.Status())
		return
	}
	r.state.Card = &card
}

// mergeDisplay folds the card over the user profile. Card title, company and
// email take precedence; the user's occupation, company and email fill in
// when the card leaves them blank.
func (r *Reconciler) mergeDisplay() {
	display := DisplayProfile{}
	if r.state.User != nil {
		display.Name = r.state.User.Name
		if r.state.User.Surname != "" {
			display.Name = display.Name + " " + r.state.User.Surname
		}
		display.Title = r.state.User.Occupation
		display.Company = r.state.User.Company
		display.Email = r.state.User.Email
		display.Phone = r.state.User.Phone
	}
	if r.state.Card != nil {
		if r.state.Card.Title != "" {
			display.Title = r.state.Card.Title
		}
		if r.state.Card.Company != "" {
			display.Company = r.state.Card.Company
		}
		if r.state.Card.Email != "" {
			display.Email = r.state.Card.Email
		}
		if r.state.Card.PhoneNumber != "" {
			display.Phone = r.state.Card.PhoneNumber
		}
	}
	r.state.Display = display
}

func (r *Reconciler) refreshQR(ctx context.Context, session *Session) {
	resp, err := r.client.R().
		SetContext(ctx).
		Get("/api/v1/generateQR/" + session.Address)
	if err != nil {
		level.Error(r.logger).Log("msg", "qr fetch failed", "err", err)
		return
	}
	if resp.IsError() {
		level.Error(r.logger).Log("msg", "qr fetch failed", "status", resp.Status())
		return
	}
	encoded := base64.StdEncoding.EncodeToString(resp.Body())
	r.state.QRDataURI = "data:image/png;base64," + encoded
}
