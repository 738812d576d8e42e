package source

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"cascs/internal"
	"cascs/internal/config"
)

// Client fetches the publication page and its spreadsheet attachments.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
	pacer      *Pacer
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.HTTPTimeoutMs) * time.Millisecond},
		pacer:      NewPacer(cfg.FetchRateLimit),
	}
}

// FetchAttachments downloads the publication page at pageURL, collects every
// absolute link whose path ends with one of the configured spreadsheet
// extensions, and downloads each in page order. Any failure aborts the whole
// run: the caller must not have written anything yet.
func (c *Client) FetchAttachments(ctx context.Context, pageURL string) ([]internal.Attachment, error) {
	body, err := c.fetch(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch publication page: %w", err)
	}

	links, err := c.AttachmentLinks(pageURL, body)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, fmt.Errorf("no spreadsheet attachments found at %s", pageURL)
	}

	out := make([]internal.Attachment, 0, len(links))
	for _, link := range links {
		blob, err := c.fetch(ctx, link)
		if err != nil {
			return nil, fmt.Errorf("fetch attachment %s: %w", link, err)
		}
		out = append(out, internal.Attachment{URL: link, Body: blob})
	}
	return out, nil
}

// AttachmentLinks parses the page HTML and returns deduplicated absolute
// links to spreadsheet attachments, in document order.
func (c *Client) AttachmentLinks(pageURL string, html []byte) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return nil, fmt.Errorf("parse publication page: %w", err)
	}

	exts := splitExtensions(c.cfg.LinkExtensions)
	seen := map[string]struct{}{}
	links := []string{}
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if !hasExtension(abs.Path, exts) {
			return
		}
		if _, ok := seen[abs.String()]; ok {
			return
		}
		seen[abs.String()] = struct{}{}
		links = append(links, abs.String())
	})

	return links, nil
}

func (c *Client) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	attempts := c.cfg.FetchMaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := c.pacer.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.cfg.UserAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < attempts {
				backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
				time.Sleep(backoff)
				lastErr = fmt.Errorf("status %d", resp.StatusCode)
				continue
			}
			return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, rawURL)
		}

		return body, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("request failed: %s", rawURL)
	}
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func splitExtensions(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, ".") {
			p = "." + p
		}
		out = append(out, p)
	}
	return out
}

func hasExtension(path string, exts []string) bool {
	lower := strings.ToLower(path)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
