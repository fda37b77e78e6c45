package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Credential is one named secret from the automation platform's store.
// Data carries connection details beyond username/password (hostname,
// port, database name, instance).
type Credential struct {
	Name     string            `json:"name"`
	Username string            `json:"username"`
	Password string            `json:"password"`
	Data     map[string]string `json:"data"`
}

// PostgresURL builds a connection string from a database credential whose
// Data carries hostname, port and database_name. url.UserPassword handles
// userinfo escaping; query-style escaping would turn a space into a literal
// plus on the other side.
func (c *Credential) PostgresURL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   c.Data["hostname"] + ":" + c.Data["port"],
		Path:   "/" + c.Data["database_name"],
	}
	return u.String()
}

// Client fetches credentials from the automation platform over HTTP.
// The base URL and token are injected from config so tests can point to a
// local mock.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Get resolves a credential by name. A missing credential is an error:
// callers resolve everything at startup and treat any failure as fatal.
func (c *Client) Get(ctx context.Context, name string) (*Credential, error) {
	endpoint := fmt.Sprintf("%s/api/v1/credentials/%s", c.baseURL, url.PathEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch credential %q: %w", name, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("credential %q not found", name)
	default:
		return nil, fmt.Errorf("fetch credential %q: unexpected status %d", name, resp.StatusCode)
	}

	var cred Credential
	if err := json.NewDecoder(resp.Body).Decode(&cred); err != nil {
		return nil, fmt.Errorf("decode credential %q: %w", name, err)
	}
	cred.Name = name
	return &cred, nil
}
