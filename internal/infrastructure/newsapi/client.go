package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"TechNewsAgent/internal/config"
	"TechNewsAgent/internal/domain"
	"TechNewsAgent/internal/infrastructure/parser"
	"TechNewsAgent/internal/ports"
)

const statusOK = "ok"

// APIError is an error reported by the provider in its response body.
type APIError struct {
	HTTPStatus int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("newsapi error (http %d): %s", e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("newsapi error %s (http %d): %s", e.Code, e.HTTPStatus, e.Message)
}

// Client implements ports.NewsSearcher against the /v2/everything endpoint.
type Client struct {
	endpoint   string
	apiKey     string
	language   string
	sortBy     string
	httpClient *http.Client
}

var _ ports.NewsSearcher = (*Client)(nil)

// NewClient builds a client from configuration. A missing API key is a configuration error.
func NewClient(cfg config.NewsConfig, httpClient *http.Client) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("news api key: %w", config.ErrMissingCredential)
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		language:   cfg.Language,
		sortBy:     cfg.SortBy,
		httpClient: httpClient,
	}, nil
}

type response struct {
	Status   string    `json:"status"`
	Code     string    `json:"code"`
	Message  string    `json:"message"`
	Articles []article `json:"articles"`
}

type article struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

// Search returns up to limit articles for keyword published since from.
func (c *Client) Search(ctx context.Context, keyword string, from time.Time, limit int) ([]domain.RawArticle, error) {
	reqURL, err := c.buildURL(keyword, from, limit)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", "TechNewsAgent/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request articles: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var payload response
	decodeErr := json.Unmarshal(body, &payload)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{HTTPStatus: resp.StatusCode, Message: resp.Status}
		if decodeErr == nil && payload.Message != "" {
			apiErr.Code = payload.Code
			apiErr.Message = payload.Message
		}
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	if payload.Status != statusOK {
		msg := payload.Message
		if msg == "" {
			msg = "Unknown error"
		}
		return nil, &APIError{HTTPStatus: resp.StatusCode, Code: payload.Code, Message: msg}
	}

	articles := make([]domain.RawArticle, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		articles = append(articles, toRawArticle(a))
	}
	return articles, nil
}

func (c *Client) buildURL(keyword string, from time.Time, limit int) (string, error) {
	parsed, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %s: %w", c.endpoint, err)
	}

	query := parsed.Query()
	query.Set("q", keyword)
	query.Set("from", from.Format("2006-01-02"))
	query.Set("sortBy", c.sortBy)
	query.Set("language", c.language)
	query.Set("apiKey", c.apiKey)
	query.Set("pageSize", strconv.Itoa(limit))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func toRawArticle(a article) domain.RawArticle {
	content := parser.PlainText(a.Description)
	if content == "" {
		content = parser.PlainText(a.Content)
	}
	return domain.RawArticle{
		Title:       strings.TrimSpace(a.Title),
		Source:      a.Source.Name,
		URL:         a.URL,
		Content:     content,
		PublishedAt: a.PublishedAt,
	}
}
