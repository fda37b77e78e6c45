package nexus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/odense-rpa/grant-reminder/internal/credentials"
	"github.com/odense-rpa/grant-reminder/internal/grant"
)

// supplierFieldName is the grant field holding the supplier name.
const supplierFieldName = "leverandør"

// HTTPClient talks to the case-management platform's REST API.
// Every call waits on the shared rate limiter first so a long queue drain
// does not hammer the remote system.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New constructs a client against baseURL using the given http.Client,
// which is expected to carry authentication. Tests inject httptest servers
// here; production wiring goes through NewFromCredential.
func New(baseURL string, httpClient *http.Client, callsPerSecond int) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(callsPerSecond), callsPerSecond),
	}
}

// NewFromCredential builds the production client. The credential's
// username/password are the OAuth2 client id and secret; Data["instance"]
// names the platform instance.
func NewFromCredential(ctx context.Context, cred *credentials.Credential, timeout time.Duration, callsPerSecond int) (*HTTPClient, error) {
	instance := cred.Data["instance"]
	if instance == "" {
		return nil, fmt.Errorf("credential %q is missing the instance name", cred.Name)
	}

	oauthCfg := clientcredentials.Config{
		ClientID:     cred.Username,
		ClientSecret: cred.Password,
		TokenURL:     fmt.Sprintf("https://iam.nexus.kmd.dk/authx/realms/%s/protocol/openid-connect/token", instance),
	}
	httpClient := oauthCfg.Client(ctx)
	httpClient.Timeout = timeout

	baseURL := fmt.Sprintf("https://%s.nexus.kmd.dk/api", instance)
	return New(baseURL, httpClient, callsPerSecond), nil
}

func (c *HTTPClient) Citizen(ctx context.Context, cpr string) (*grant.Citizen, error) {
	var citizen grant.Citizen
	found, err := c.get(ctx, "/citizens/"+url.PathEscape(cpr), &citizen)
	if err != nil {
		return nil, fmt.Errorf("look up citizen: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &citizen, nil
}

func (c *HTTPClient) PathwayTree(ctx context.Context, citizen *grant.Citizen) (*PathwayNode, error) {
	var root PathwayNode
	found, err := c.get(ctx, fmt.Sprintf("/citizens/%s/pathway", url.PathEscape(citizen.ID)), &root)
	if err != nil {
		return nil, fmt.Errorf("fetch pathway tree: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &root, nil
}

func (c *HTTPClient) Grant(ctx context.Context, ref *PathwayNode) (*grant.Grant, error) {
	var g grant.Grant
	found, err := c.get(ctx, fmt.Sprintf("/grants/%d", ref.GrantID), &g)
	if err != nil {
		return nil, fmt.Errorf("resolve grant %d: %w", ref.GrantID, err)
	}
	if !found {
		return nil, nil
	}
	return &g, nil
}

// fieldValue is one entry of the grant's field-value list on the wire.
type fieldValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (c *HTTPClient) GrantFieldValues(ctx context.Context, g *grant.Grant) (*grant.FieldValues, error) {
	var fields []fieldValue
	found, err := c.get(ctx, fmt.Sprintf("/grants/%d/fields", g.ID), &fields)
	if err != nil {
		return nil, fmt.Errorf("fetch field values for grant %d: %w", g.ID, err)
	}
	if !found {
		return nil, nil
	}

	values := &grant.FieldValues{}
	for _, f := range fields {
		if strings.EqualFold(f.Name, supplierFieldName) {
			values.Supplier = f.Value
		}
	}
	return values, nil
}

func (c *HTTPClient) Tasks(ctx context.Context, g *grant.Grant) ([]grant.Task, error) {
	var tasks []grant.Task
	found, err := c.get(ctx, fmt.Sprintf("/grants/%d/tasks", g.ID), &tasks)
	if err != nil {
		return nil, fmt.Errorf("fetch task history for grant %d: %w", g.ID, err)
	}
	if !found {
		return nil, nil // no history yet
	}
	return tasks, nil
}

// createTaskRequest is the wire form of a new task. Dates go out as plain
// calendar dates; the platform attaches its own time-of-day semantics.
type createTaskRequest struct {
	Type            string `json:"type"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	ResponsibleOrg  string `json:"responsibleOrganisation"`
	ResponsibleUser string `json:"responsibleUser,omitempty"`
	StartDate       string `json:"startDate"`
	DueDate         string `json:"dueDate"`
}

func (c *HTTPClient) CreateTask(ctx context.Context, g *grant.Grant, task grant.NewTask) error {
	body, err := json.Marshal(createTaskRequest{
		Type:            task.Type,
		Title:           task.Title,
		Description:     task.Description,
		ResponsibleOrg:  task.ResponsibleOrg,
		ResponsibleUser: task.ResponsibleUser,
		StartDate:       task.StartDate.Format("2006-01-02"),
		DueDate:         task.DueDate.Format("2006-01-02"),
	})
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/grants/%d/tasks", c.baseURL, g.ID), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("create task for grant %d: %w", g.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("create task for grant %d: unexpected status %d", g.ID, resp.StatusCode)
	}
	return nil
}

// get performs a rate-limited GET and decodes the body into out.
// Returns false without an error on 404: absence is a business condition
// here, not a transport failure.
func (c *HTTPClient) get(ctx context.Context, path string, out any) (bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return true, nil
}

// compile-time check that HTTPClient implements Client
var _ Client = (*HTTPClient)(nil)
