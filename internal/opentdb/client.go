package opentdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

const (
	DefaultEndpoint = "https://opentdb.com/api.php"

	// CategoryComputers is the "Science: Computers" category.
	CategoryComputers = 18

	// MaxAmount is the largest batch the API hands out per call.
	MaxAmount = 50

	defaultAmount = 10
)

var (
	ErrNoResults   = errors.New("opentdb: not enough questions for the query")
	ErrRateLimited = errors.New("opentdb: rate limited")
)

// ResponseCodeError reports a non-zero response_code in an otherwise
// successful reply.
type ResponseCodeError struct {
	Code int
}

func (e *ResponseCodeError) Error() string {
	switch e.Code {
	case 1:
		return ErrNoResults.Error()
	case 2:
		return "opentdb: invalid parameter"
	case 5:
		return ErrRateLimited.Error()
	default:
		return fmt.Sprintf("opentdb: response_code=%d", e.Code)
	}
}

func (e *ResponseCodeError) Is(target error) bool {
	switch target {
	case ErrNoResults:
		return e.Code == 1
	case ErrRateLimited:
		return e.Code == 5
	}
	return false
}

// RawQuestion is one entry of the API's results array. Text fields arrive
// HTML-escaped.
type RawQuestion struct {
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Category         string   `json:"category"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

type reply struct {
	ResponseCode int           `json:"response_code"`
	Results      []RawQuestion `json:"results"`
}

type Option func(*Client)

func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithCategory narrows the query; zero asks for any category.
func WithCategory(category int) Option {
	return func(c *Client) { c.category = category }
}

// WithDifficulty accepts "easy", "medium" or "hard"; empty means any.
func WithDifficulty(difficulty string) Option {
	return func(c *Client) { c.difficulty = difficulty }
}

type Client struct {
	httpClient *http.Client
	endpoint   string
	category   int
	difficulty string
}

func NewClient(httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		httpClient: httpClient,
		endpoint:   DefaultEndpoint,
		category:   CategoryComputers,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchQuestions asks for a batch of multiple-choice questions. amount is
// clamped to [1, MaxAmount], with non-positive values meaning the default.
func (c *Client) FetchQuestions(ctx context.Context, amount int) ([]RawQuestion, error) {
	endpoint, err := c.queryURL(amount)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("opentdb: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("opentdb: unexpected status %d", resp.StatusCode)
	}

	var body reply
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("opentdb: decode reply: %w", err)
	}
	if body.ResponseCode != 0 {
		return nil, &ResponseCodeError{Code: body.ResponseCode}
	}
	return body.Results, nil
}

func (c *Client) queryURL(amount int) (string, error) {
	switch {
	case amount <= 0:
		amount = defaultAmount
	case amount > MaxAmount:
		amount = MaxAmount
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("opentdb: endpoint: %w", err)
	}
	query := u.Query()
	query.Set("amount", strconv.Itoa(amount))
	query.Set("type", "multiple")
	if c.category > 0 {
		query.Set("category", strconv.Itoa(c.category))
	}
	if c.difficulty != "" {
		query.Set("difficulty", c.difficulty)
	}
	u.RawQuery = query.Encode()
	return u.String(), nil
}
