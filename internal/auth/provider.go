// Package auth signs users in through an OAuth identity provider
// (authorization code + PKCE) and keeps the resulting sessions in memory.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/oauth2"

	"github.com/petervdpas/codeseed/internal/errs"
)

var log = logging.Logger("codeseed/auth")

// SessionCookie carries the session id in the browser.
const SessionCookie = "codeseed_session"

// pendingTTL bounds how long a login may take between Begin and Complete.
const pendingTTL = 10 * time.Minute

type Config struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	RedirectURL  string
	Scopes       []string
}

// UserMetadata mirrors the identity provider's user_metadata object.
type UserMetadata struct {
	FullName          string `json:"full_name,omitempty"`
	AvatarURL         string `json:"avatar_url,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
	Phone             string `json:"phone,omitempty"`
}

type User struct {
	ID       string       `json:"id"`
	Email    string       `json:"email"`
	Metadata UserMetadata `json:"user_metadata"`
}

// Session is one signed-in browser.
type Session struct {
	ID        string
	User      User
	Token     *oauth2.Token
	CreatedAt time.Time
}

type pending struct {
	verifier string
	created  time.Time
}

type Provider struct {
	oauth    oauth2.Config
	userinfo string

	mu       sync.Mutex
	pending  map[string]pending
	sessions map[string]*Session
}

func NewProvider(c Config) *Provider {
	return &Provider{
		oauth: oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			Endpoint:     oauth2.Endpoint{AuthURL: c.AuthURL, TokenURL: c.TokenURL},
			RedirectURL:  c.RedirectURL,
			Scopes:       c.Scopes,
		},
		userinfo: c.UserInfoURL,
		pending:  make(map[string]pending),
		sessions: make(map[string]*Session),
	}
}

// Begin starts a login and returns the provider URL to redirect to and the
// state value that Complete must receive back.
func (p *Provider) Begin() (authURL, state string) {
	state = uuid.NewString()
	verifier := oauth2.GenerateVerifier()

	p.mu.Lock()
	p.prunePendingLocked(time.Now())
	p.pending[state] = pending{verifier: verifier, created: time.Now()}
	p.mu.Unlock()

	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.S256ChallengeOption(verifier)), state
}

// Complete exchanges the authorization code, fetches the user profile and
// creates a session. An unknown or expired state is a ValidationError.
func (p *Provider) Complete(ctx context.Context, state, code string) (*Session, error) {
	if code == "" {
		return nil, errs.Invalid("code", "missing authorization code")
	}
	p.mu.Lock()
	pd, ok := p.pending[state]
	delete(p.pending, state)
	p.mu.Unlock()
	if !ok || time.Since(pd.created) > pendingTTL {
		return nil, errs.Invalid("state", "unknown or expired login")
	}

	tok, err := p.oauth.Exchange(ctx, code, oauth2.VerifierOption(pd.verifier))
	if err != nil {
		return nil, &errs.TransportError{Op: "token exchange", Message: "Sign-in failed.", Err: err}
	}

	user, err := p.fetchUser(ctx, tok)
	if err != nil {
		return nil, err
	}

	s := &Session{ID: uuid.NewString(), User: user, Token: tok, CreatedAt: time.Now()}
	p.mu.Lock()
	p.sessions[s.ID] = s
	p.mu.Unlock()
	log.Infof("signed in %s (session %s)", user.Email, s.ID[:8])
	return s, nil
}

// Lookup returns the live session with id.
func (p *Provider) Lookup(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sessions[id]
	return s, ok
}

// SignOut destroys the session and reports whether it existed.
func (p *Provider) SignOut(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.sessions[id]; !ok {
		return false
	}
	delete(p.sessions, id)
	return true
}

func (p *Provider) prunePendingLocked(now time.Time) {
	for k, v := range p.pending {
		if now.Sub(v.created) > pendingTTL {
			delete(p.pending, k)
		}
	}
}

// userInfo accepts both the nested user_metadata shape and the flat OIDC
// claims most providers return.
type userInfo struct {
	ID       string       `json:"id"`
	Sub      string       `json:"sub"`
	Email    string       `json:"email"`
	Metadata UserMetadata `json:"user_metadata"`
	Name     string       `json:"name"`
	Picture  string       `json:"picture"`
	Login    string       `json:"login"`
	Username string       `json:"preferred_username"`
	Phone    string       `json:"phone_number"`
}

func (p *Provider) fetchUser(ctx context.Context, tok *oauth2.Token) (User, error) {
	if p.userinfo == "" {
		return User{}, &errs.TransportError{Op: "userinfo", Message: "Sign-in failed.", Err: fmt.Errorf("no userinfo url configured")}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userinfo, nil)
	if err != nil {
		return User{}, err
	}
	resp, err := p.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		return User{}, &errs.TransportError{Op: "userinfo", Message: "Sign-in failed.", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return User{}, &errs.TransportError{Op: "userinfo", Status: resp.StatusCode, Message: "Sign-in failed.", Err: fmt.Errorf("userinfo returned %s", resp.Status)}
	}

	var ui userInfo
	if err := readJSON(resp, &ui); err != nil {
		return User{}, &errs.TransportError{Op: "userinfo", Message: "Sign-in failed.", Err: err}
	}

	u := User{ID: firstNonEmpty(ui.ID, ui.Sub), Email: ui.Email, Metadata: ui.Metadata}
	m := &u.Metadata
	m.FullName = firstNonEmpty(m.FullName, ui.Name)
	m.AvatarURL = firstNonEmpty(m.AvatarURL, ui.Picture)
	m.PreferredUsername = firstNonEmpty(m.PreferredUsername, ui.Username, ui.Login)
	m.Phone = firstNonEmpty(m.Phone, ui.Phone)
	if u.ID == "" {
		u.ID = u.Email
	}
	return u, nil
}

// readJSON reads resp.Body and unmarshals JSON into v.
func readJSON(resp *http.Response, v any) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
