package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	oauthgoogle "golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
)

const defaultUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// ErrNoIdentity means the provider exchange succeeded but returned nothing
// usable (no email).
var ErrNoIdentity = errors.New("identity provider returned no usable identity")

// Identity is the subset of the userinfo response this service needs.
type Identity struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type Client struct {
	conf        *oauth2.Config
	httpClient  *http.Client
	userinfoURL string
	limiter     *rate.Limiter
}

func NewClient(clientID, clientSecret, redirectURL string) *Client {
	return &Client{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     oauthgoogle.Endpoint,
		},
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		userinfoURL: defaultUserinfoURL,
		limiter:     rate.NewLimiter(rate.Every(time.Second), 5),
	}
}

// AuthCodeURL builds the provider's consent-screen URL for state.
func (c *Client) AuthCodeURL(state string) string {
	return c.conf.AuthCodeURL(state,
		oauth2.SetAuthURLParam("access_type", "online"),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

// Exchange trades the authorization code for a token.
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	if token.AccessToken == "" {
		return nil, ErrNoIdentity
	}
	return token, nil
}

// Userinfo fetches the authenticated user's profile.
func (c *Client) Userinfo(ctx context.Context, token *oauth2.Token) (Identity, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Identity{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userinfoURL, nil)
	if err != nil {
		return Identity{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Identity{}, fmt.Errorf("fetch userinfo: unexpected status %d", resp.StatusCode)
	}

	var id Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return Identity{}, fmt.Errorf("decode userinfo: %w", err)
	}
	if id.Email == "" {
		return Identity{}, ErrNoIdentity
	}
	if id.Name == "" {
		id.Name = id.Email
	}
	return id, nil
}
