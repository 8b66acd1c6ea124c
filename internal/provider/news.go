package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"crypto-query-lab/internal/domain"
)

const (
	cryptoPanicBaseURL = "https://cryptopanic.com/api/developer/v2"
	summaryMaxRunes    = 400
	fullTextItems      = 3
)

// CryptoPanicNews reads the CryptoPanic aggregated news feed. It requires an API key.
type CryptoPanicNews struct {
	http   *HTTPClient
	apiKey string
}

// NewCryptoPanicNews creates the CryptoPanic provider.
func NewCryptoPanicNews(opts Options) *CryptoPanicNews {
	return &CryptoPanicNews{
		http:   opts.newClient("cryptopanic", cryptoPanicBaseURL),
		apiKey: opts.APIKey,
	}
}

func (p *CryptoPanicNews) Name() string { return "cryptopanic" }

type cryptoPanicResponse struct {
	Results []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		OriginalURL string `json:"original_url"`
		PublishedAt string `json:"published_at"`
		Source      struct {
			Title string `json:"title"`
		} `json:"source"`
		Currencies []struct {
			Code string `json:"code"`
		} `json:"currencies"`
		Instruments []struct {
			Code string `json:"code"`
		} `json:"instruments"`
	} `json:"results"`
}

// Fetch implements Provider.
func (p *CryptoPanicNews) Fetch(ctx context.Context, criteria domain.Criteria) ([]domain.Record, error) {
	if p.apiKey == "" {
		return nil, NetworkError(p.Name(), errors.New("api key not configured"))
	}
	q := url.Values{}
	q.Set("auth_token", p.apiKey)
	q.Set("public", "true")
	q.Set("kind", "news")
	if len(criteria.Symbols) > 0 {
		q.Set("currencies", strings.Join(criteria.Symbols, ","))
	}

	var resp cryptoPanicResponse
	if err := p.http.GetJSON(ctx, "/posts/", q, &resp); err != nil {
		return nil, err
	}

	records := make([]domain.Record, 0, len(resp.Results))
	for _, r := range resp.Results {
		link := r.OriginalURL
		if link == "" {
			link = r.URL
		}
		rec := &domain.NewsRecord{
			Title:   strings.TrimSpace(r.Title),
			URL:     link,
			Source:  r.Source.Title,
			Summary: clip(r.Description, summaryMaxRunes),
		}
		for _, c := range append(r.Currencies, r.Instruments...) {
			rec.Symbols = append(rec.Symbols, strings.ToUpper(c.Code))
		}
		if ts, err := time.Parse(time.RFC3339, r.PublishedAt); err == nil {
			rec.PublishedAt = ts.UTC()
		}
		records = append(records, rec)
	}
	return nonEmpty(p.Name(), records)
}

// ArticleTextFunc extracts the readable text of the page at pageURL.
type ArticleTextFunc func(ctx context.Context, pageURL string) (string, error)

// ReadabilityText downloads pageURL with client and extracts the article
// text with go-readability. The download is bound to ctx.
func ReadabilityText(ctx context.Context, client *http.Client, userAgent, pageURL string) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}

	article, err := readability.FromReader(io.LimitReader(resp.Body, maxResponseBytes), parsed)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", pageURL, err)
	}
	return article.TextContent, nil
}

// RSSOptions configures RSSNews.
type RSSOptions struct {
	Feeds         []string
	Timeout       time.Duration
	UserAgent     string
	HTTPClient    *http.Client
	FetchFullText bool
	// ArticleText replaces ReadabilityText when set.
	ArticleText ArticleTextFunc
}

// RSSNews merges the items of several crypto news RSS feeds, newest first.
type RSSNews struct {
	feeds       []string
	client      *http.Client
	userAgent   string
	timeout     time.Duration
	fullText    bool
	articleText ArticleTextFunc
}

// NewRSSNews creates the RSS news provider.
func NewRSSNews(opts RSSOptions) *RSSNews {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	articleText := opts.ArticleText
	if articleText == nil {
		articleText = func(ctx context.Context, pageURL string) (string, error) {
			return ReadabilityText(ctx, client, ua, pageURL)
		}
	}
	return &RSSNews{
		feeds:       opts.Feeds,
		client:      client,
		userAgent:   ua,
		timeout:     timeout,
		fullText:    opts.FetchFullText,
		articleText: articleText,
	}
}

func (p *RSSNews) Name() string { return "rss" }

// Fetch implements Provider. A failing feed is skipped as long as another
// feed answers. With symbols, items mentioning them are preferred; when none
// do, the unfiltered headlines are returned.
func (p *RSSNews) Fetch(ctx context.Context, criteria domain.Criteria) ([]domain.Record, error) {
	if len(p.feeds) == 0 {
		return nil, EmptyError(p.Name())
	}

	results := make([][]*domain.NewsRecord, len(p.feeds))
	errs := make([]error, len(p.feeds))
	var g errgroup.Group
	for i, feedURL := range p.feeds {
		g.Go(func() error {
			results[i], errs[i] = p.fetchFeed(ctx, feedURL)
			return nil
		})
	}
	_ = g.Wait()

	var items []*domain.NewsRecord
	var failed []error
	for i := range p.feeds {
		if errs[i] != nil {
			failed = append(failed, errs[i])
			continue
		}
		items = append(items, results[i]...)
	}
	if len(failed) == len(p.feeds) {
		return nil, NetworkError(p.Name(), errors.Join(failed...))
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].PublishedAt.After(items[j].PublishedAt) })

	if len(criteria.Symbols) > 0 {
		var matched []*domain.NewsRecord
		for _, it := range items {
			if syms := mentionedSymbols(it.Title+" "+it.Summary, criteria.Symbols); len(syms) > 0 {
				it.Symbols = syms
				matched = append(matched, it)
			}
		}
		if len(matched) > 0 {
			items = matched
		}
	}

	if p.fullText {
		p.enrich(ctx, items)
	}

	records := make([]domain.Record, len(items))
	for i, it := range items {
		records[i] = it
	}
	return nonEmpty(p.Name(), records)
}

func (p *RSSNews) fetchFeed(ctx context.Context, feedURL string) ([]*domain.NewsRecord, error) {
	fp := gofeed.NewParser()
	fp.Client = p.client
	fp.UserAgent = p.userAgent

	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", feedURL, err)
	}

	out := make([]*domain.NewsRecord, 0, len(feed.Items))
	for _, item := range feed.Items {
		rec := &domain.NewsRecord{
			Title:   strings.TrimSpace(item.Title),
			URL:     item.Link,
			Source:  feed.Title,
			Summary: clip(stripTags(item.Description), summaryMaxRunes),
		}
		switch {
		case item.PublishedParsed != nil:
			rec.PublishedAt = item.PublishedParsed.UTC()
		case item.UpdatedParsed != nil:
			rec.PublishedAt = item.UpdatedParsed.UTC()
		}
		out = append(out, rec)
	}
	return out, nil
}

// enrich fills empty summaries of the leading items from the article page.
func (p *RSSNews) enrich(ctx context.Context, items []*domain.NewsRecord) {
	var g errgroup.Group
	for i, it := range items {
		if i >= fullTextItems {
			break
		}
		if it.Summary != "" || it.URL == "" {
			continue
		}
		g.Go(func() error {
			pageCtx, cancel := context.WithTimeout(ctx, p.timeout)
			defer cancel()
			text, err := p.articleText(pageCtx, it.URL)
			if err == nil {
				it.Summary = clip(text, summaryMaxRunes)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// mentionedSymbols returns the symbols text refers to by ticker or alias.
func mentionedSymbols(text string, symbols []string) []string {
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '$'
	}) {
		w = strings.TrimPrefix(w, "$")
		words[w] = true
		words[strings.ToLower(w)] = true
	}

	var out []string
	for _, s := range symbols {
		s = strings.ToUpper(s)
		hit := words[s]
		if a, ok := domain.LookupAsset(s); ok && !hit {
			hit = words[strings.ToLower(a.Name)]
		}
		if hit {
			out = append(out, s)
		}
	}
	return out
}

func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func clip(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "..."
}
