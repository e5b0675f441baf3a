// File path: internal/research/service.go
package research

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aastha-batta/course-agent/internal/common"
)

const (
	defaultTavilyURL = "https://api.tavily.com/search"
	defaultArxivURL  = "http://export.arxiv.org/api/query"

	defaultWebResults      = 5
	defaultAcademicResults = 5
)

// Source is one normalized result from any provider.
type Source struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url,omitempty"`
}

// Research is the combined result of one gather call.
type Research struct {
	Topic           string   `json:"topic"`
	Depth           string   `json:"depth"`
	WebSources      []Source `json:"web_sources"`
	AcademicSources []Source `json:"academic_sources"`
}

// Service queries the web and academic search providers. Provider failures
// never surface as errors from Gather; each failing provider contributes a
// single placeholder source carrying the error text instead.
type Service struct {
	httpClient *http.Client
	tavilyKey  string
	tavilyURL  string
	arxivURL   string
}

// Option adjusts a Service, primarily so tests can point it at fake
// providers.
type Option func(*Service)

func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		if client != nil {
			s.httpClient = client
		}
	}
}

func WithTavilyURL(rawURL string) Option {
	return func(s *Service) {
		if strings.TrimSpace(rawURL) != "" {
			s.tavilyURL = rawURL
		}
	}
}

func WithArxivURL(rawURL string) Option {
	return func(s *Service) {
		if strings.TrimSpace(rawURL) != "" {
			s.arxivURL = rawURL
		}
	}
}

func WithTavilyKey(key string) Option {
	return func(s *Service) { s.tavilyKey = strings.TrimSpace(key) }
}

// NewService builds a Service configured from the environment
// (TAVILY_API_KEY) with a conservative request timeout.
func NewService(opts ...Option) *Service {
	svc := &Service{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tavilyKey:  strings.TrimSpace(os.Getenv("TAVILY_API_KEY")),
		tavilyURL:  defaultTavilyURL,
		arxivURL:   defaultArxivURL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Gather queries both providers once each and returns their normalized
// results. The academic query is widened or narrowed by the depth hint.
func (s *Service) Gather(ctx context.Context, topic, depth string) (Research, error) {
	academicQuery := strings.TrimSpace(fmt.Sprintf("%s education %s", topic, depthQualifier(depth)))
	web := s.searchTavily(ctx, topic, defaultWebResults)
	academic := s.searchArxiv(ctx, academicQuery, defaultAcademicResults)
	common.Logger().Info("research: gather complete", "topic", topic, "web", len(web), "academic", len(academic))
	return Research{
		Topic:           topic,
		Depth:           depth,
		WebSources:      web,
		AcademicSources: academic,
	}, nil
}

func depthQualifier(depth string) string {
	switch strings.ToLower(strings.TrimSpace(depth)) {
	case "advanced":
		return "advanced concepts"
	case "beginner":
		return "basics"
	default:
		return ""
	}
}

type tavilyRequest struct {
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		URL     string `json:"url"`
	} `json:"results"`
}

func (s *Service) searchTavily(ctx context.Context, query string, maxResults int) []Source {
	if s.tavilyKey == "" {
		return []Source{{
			Title:   "Tavily API key not configured",
			Content: "Set TAVILY_API_KEY in the environment to enable web search.",
		}}
	}
	payload, err := json.Marshal(tavilyRequest{Query: query, SearchDepth: "advanced", MaxResults: maxResults})
	if err != nil {
		return []Source{errorSource(fmt.Errorf("encode tavily request: %w", err))}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tavilyURL, bytes.NewReader(payload))
	if err != nil {
		return []Source{errorSource(fmt.Errorf("build tavily request: %w", err))}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", s.tavilyKey)
	resp, err := s.httpClient.Do(req)
	if err != nil {
		common.Logger().Warn("research: tavily request failed", "error", err)
		return []Source{errorSource(fmt.Errorf("search tavily: %w", err))}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return []Source{errorSource(fmt.Errorf("read tavily response: %w", err))}
	}
	if resp.StatusCode != http.StatusOK {
		common.Logger().Warn("research: tavily returned non-200", "status", resp.StatusCode)
		return []Source{{
			Title:   fmt.Sprintf("Error: %d", resp.StatusCode),
			Content: strings.TrimSpace(string(body)),
		}}
	}
	var decoded tavilyResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return []Source{errorSource(fmt.Errorf("decode tavily response: %w", err))}
	}
	sources := make([]Source, 0, len(decoded.Results))
	for _, result := range decoded.Results {
		sources = append(sources, Source{Title: result.Title, Content: result.Content, URL: result.URL})
	}
	return sources
}

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title   string     `xml:"title"`
	Summary string     `xml:"summary"`
	Links   []atomLink `xml:"link"`
}

type atomLink struct {
	Href  string `xml:"href,attr"`
	Title string `xml:"title,attr"`
}

func (s *Service) searchArxiv(ctx context.Context, query string, maxResults int) []Source {
	endpoint := fmt.Sprintf("%s?search_query=all:%s&start=0&max_results=%d", s.arxivURL, url.QueryEscape(query), maxResults)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return []Source{errorSource(fmt.Errorf("build arxiv request: %w", err))}
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		common.Logger().Warn("research: arxiv request failed", "error", err)
		return []Source{errorSource(fmt.Errorf("search arxiv: %w", err))}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return []Source{errorSource(fmt.Errorf("read arxiv response: %w", err))}
	}
	if resp.StatusCode != http.StatusOK {
		common.Logger().Warn("research: arxiv returned non-200", "status", resp.StatusCode)
		return []Source{{
			Title:   fmt.Sprintf("Error: %d", resp.StatusCode),
			Content: strings.TrimSpace(string(body)),
		}}
	}
	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return []Source{errorSource(fmt.Errorf("parse arxiv feed: %w", err))}
	}
	sources := make([]Source, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		source := Source{
			Title:   strings.TrimSpace(entry.Title),
			Content: strings.TrimSpace(entry.Summary),
		}
		for _, link := range entry.Links {
			if link.Title == "pdf" {
				source.URL = link.Href
				break
			}
		}
		if source.Title == "" && source.Content == "" {
			continue
		}
		sources = append(sources, source)
	}
	return sources
}

func errorSource(err error) Source {
	return Source{Title: "Error", Content: err.Error()}
}
