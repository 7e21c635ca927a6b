package missionapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cybercase/internal/quiz"
)

const DefaultServer = "http://127.0.0.1:8080"

var ErrServiceUnavailable = errors.New("mission service unavailable")

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// HTTPClient talks to the mission backend. It is safe for concurrent use as
// long as the underlying http.Client is.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Verdict is the decoded body of a validation call. Validators read it by
// field name because the two endpoints disagree on naming.
type Verdict map[string]any

func (v Verdict) Text(field string) string {
	value, ok := v[field]
	if !ok || value == nil {
		return ""
	}
	if text, ok := value.(string); ok {
		return text
	}
	return fmt.Sprint(value)
}

type Status struct {
	Status string   `json:"status,omitempty"`
	Score  *float64 `json:"score,omitempty"`
}

type LeaderboardEntry struct {
	Player        string    `json:"player"`
	Score         int       `json:"score"`
	Badge         string    `json:"badge"`
	LastAttemptAt time.Time `json:"last_attempt_at"`
}

type leaderboardResponse struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type submitRequest struct {
	Answers quiz.AnswerMap `json:"answers"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	baseURL = strings.TrimSpace(baseURL)
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultServer
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// Panel returns the raw HTML fragment served for an app panel.
func (c *HTTPClient) Panel(ctx context.Context, name string) (string, error) {
	name = strings.Trim(strings.TrimSpace(name), "/")
	if name == "" {
		return "", errors.New("panel name is required")
	}

	response, err := c.do(ctx, http.MethodGet, "/"+name, nil)
	if err != nil {
		return "", err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *HTTPClient) Validate(ctx context.Context, path, answer string) (Verdict, error) {
	verdict := Verdict{}
	if err := c.doJSON(ctx, http.MethodPost, path, answerRequest{Answer: answer}, &verdict); err != nil {
		return nil, err
	}
	return verdict, nil
}

func (c *HTTPClient) Status(ctx context.Context) (Status, error) {
	var status Status
	if err := c.doJSON(ctx, http.MethodGet, "/status", nil, &status); err != nil {
		return Status{}, err
	}
	return status, nil
}

func (c *HTTPClient) StartQuiz(ctx context.Context) (quiz.Start, error) {
	var start quiz.Start
	if err := c.doJSON(ctx, http.MethodPost, "/quiz/start", nil, &start); err != nil {
		return quiz.Start{}, err
	}
	return start, nil
}

func (c *HTTPClient) SubmitQuiz(ctx context.Context, answers quiz.AnswerMap) (quiz.Result, error) {
	if answers == nil {
		answers = quiz.AnswerMap{}
	}

	var result quiz.Result
	if err := c.doJSON(ctx, http.MethodPost, "/quiz/submit", submitRequest{Answers: answers}, &result); err != nil {
		return quiz.Result{}, err
	}
	return result, nil
}

func (c *HTTPClient) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	path := "/quiz/leaderboard"
	if limit > 0 {
		query := url.Values{}
		query.Set("limit", strconv.Itoa(limit))
		path += "?" + query.Encode()
	}

	var response leaderboardResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &response); err != nil {
		return nil, err
	}
	return response.Leaderboard, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, requestBody any, responseBody any) error {
	response, err := c.do(ctx, method, path, requestBody)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if responseBody == nil {
		return nil
	}
	return json.NewDecoder(response.Body).Decode(responseBody)
}

// do sends the request and turns transport failures and non-2xx statuses into
// errors. The caller owns the response body on success.
func (c *HTTPClient) do(ctx context.Context, method, path string, requestBody any) (*http.Response, error) {
	fullURL := c.baseURL + path

	var body io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, err
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		defer response.Body.Close()
		apiErr := APIError{StatusCode: response.StatusCode}
		var payload errorResponse
		if err := json.NewDecoder(response.Body).Decode(&payload); err == nil && strings.TrimSpace(payload.Error) != "" {
			apiErr.Message = payload.Error
		}
		if apiErr.Message == "" {
			apiErr.Message = response.Status
		}
		return nil, &apiErr
	}

	return response, nil
}
