package clickup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"snagaudit/pkg/types"
)

const DefaultBaseURL = "https://api.clickup.com/api/v2"

// Client talks to the ClickUp REST API v2. Every failure wraps
// types.ErrExternalService.
type Client struct {
	baseURL    string
	token      string
	listID     string
	httpClient *http.Client
}

func New(config *types.Config) *Client {
	baseURL := config.ClickUpBaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := time.Duration(config.ClickUpTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      config.ClickUpAPIToken,
		listID:     config.ClickUpListID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type createTaskRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	DueDate     *int64 `json:"due_date,omitempty"`
	Priority    int    `json:"priority"`
	Status      string `json:"status"`
}

// CreateTask creates task in the configured list.
func (c *Client) CreateTask(ctx context.Context, task types.ExternalTask) (types.TaskRef, error) {
	if c.listID == "" {
		return types.TaskRef{}, fmt.Errorf("CLICKUP_LIST_ID not configured: %w", types.ErrExternalService)
	}

	body := createTaskRequest{
		Name:        task.Name,
		Description: task.Description,
		Priority:    int(task.Priority),
		Status:      task.Status,
	}
	if task.DueDate != nil {
		ms := task.DueDate.UnixMilli()
		body.DueDate = &ms
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return types.TaskRef{}, fmt.Errorf("failed to encode task: %w", err)
	}

	var ref types.TaskRef
	path := "/list/" + url.PathEscape(c.listID) + "/task"
	if err := c.do(ctx, http.MethodPost, path, "application/json", bytes.NewReader(payload), &ref); err != nil {
		return types.TaskRef{}, err
	}
	if ref.ID == "" {
		return types.TaskRef{}, fmt.Errorf("clickup returned a task without an id: %w", types.ErrExternalService)
	}

	return ref, nil
}

// AttachFile uploads r as a task attachment under filename.
func (c *Client) AttachFile(ctx context.Context, taskID, filename string, r io.Reader) error {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	part, err := form.CreateFormFile("attachment", filename)
	if err != nil {
		return fmt.Errorf("failed to create attachment part: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("failed to read attachment %s: %w", filename, err)
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("failed to finish attachment form: %w", err)
	}

	path := "/task/" + url.PathEscape(taskID) + "/attachment"
	return c.do(ctx, http.MethodPost, path, form.FormDataContentType(), &buf, nil)
}

type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Space struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type List struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Teams lists the workspaces the token can see.
func (c *Client) Teams(ctx context.Context) ([]Team, error) {
	var out struct {
		Teams []Team `json:"teams"`
	}
	if err := c.do(ctx, http.MethodGet, "/team", "", nil, &out); err != nil {
		return nil, err
	}
	return out.Teams, nil
}

func (c *Client) Spaces(ctx context.Context, teamID string) ([]Space, error) {
	var out struct {
		Spaces []Space `json:"spaces"`
	}
	if err := c.do(ctx, http.MethodGet, "/team/"+url.PathEscape(teamID)+"/space", "", nil, &out); err != nil {
		return nil, err
	}
	return out.Spaces, nil
}

// Lists returns the folderless lists of a space.
func (c *Client) Lists(ctx context.Context, spaceID string) ([]List, error) {
	var out struct {
		Lists []List `json:"lists"`
	}
	if err := c.do(ctx, http.MethodGet, "/space/"+url.PathEscape(spaceID)+"/list", "", nil, &out); err != nil {
		return nil, err
	}
	return out.Lists, nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	if c.token == "" {
		return fmt.Errorf("CLICKUP_API_TOKEN not configured: %w", types.ErrExternalService)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", c.token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("clickup %s %s: %w: %w", method, path, types.ErrExternalService, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read clickup response: %w: %w", types.ErrExternalService, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("clickup api error %d: %s: %w", resp.StatusCode, strings.TrimSpace(string(data)), types.ErrExternalService)
	}

	if out == nil || len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode clickup response: %w: %w", types.ErrExternalService, err)
	}

	return nil
}
