package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"golang.org/x/net/html"
	"golang.org/x/net/publicsuffix"
)

const (
	maxVisibleText = 3000
	maxBodyBytes   = 5 * 1024 * 1024
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Page is the visible text and metadata extracted from one URL.
type Page struct {
	URL             string    `json:"url"`
	Domain          string    `json:"domain"`
	Title           string    `json:"title,omitempty"`
	MetaDescription string    `json:"meta_description,omitempty"`
	MetaKeywords    string    `json:"meta_keywords,omitempty"`
	MetaAuthor      string    `json:"meta_author,omitempty"`
	TextLength      int       `json:"text_length"`
	VisibleText     string    `json:"visible_text"`
	Timestamp       time.Time `json:"timestamp"`
}

// Fetcher returns extracted page content or an error.
type Fetcher interface {
	Fetch(ctx context.Context, targetURL string) (*Page, error)
}

// Scraper fetches pages with a fresh colly collector per call so each
// request carries the caller's context.
type Scraper struct {
	timeout time.Duration
}

func New(timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Scraper{timeout: timeout}
}

func (s *Scraper) collector(ctx context.Context) *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.MaxBodySize(maxBodyBytes),
		colly.StdlibContext(ctx),
		colly.ParseHTTPErrorResponse(),
	)
	c.SetRequestTimeout(s.timeout)
	return c
}

func (s *Scraper) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	parsedURL, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("URL must be http or https")
	}

	var (
		body   []byte
		status int
	)
	c := s.collector(ctx)
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})

	if err := c.Visit(targetURL); err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("HTTP error: %d %s", status, http.StatusText(status))
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	text := extractVisibleText(doc)
	desc, keywords, author := extractMetadata(doc)

	return &Page{
		URL:             targetURL,
		Domain:          RegistrableDomain(parsedURL.Hostname()),
		Title:           extractTitle(doc),
		MetaDescription: desc,
		MetaKeywords:    keywords,
		MetaAuthor:      author,
		TextLength:      len([]rune(text)),
		VisibleText:     truncate(text, maxVisibleText),
		Timestamp:       time.Now().UTC(),
	}, nil
}

// RegistrableDomain reduces a host to its eTLD+1 ("news.bbc.co.uk" →
// "bbc.co.uk"). Hosts without a public suffix come back unchanged.
func RegistrableDomain(host string) string {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	d, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return d
}

var skippedElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "svg": true, "video": true,
	"img": true, "iframe": true, "header": true, "footer": true, "head": true,
}

func extractVisibleText(n *html.Node) string {
	var parts []string
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func extractTitle(n *html.Node) string {
	var title string
	var f func(*html.Node)
	f = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			title = strings.TrimSpace(n.FirstChild.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return title
}

// extractMetadata returns the last description, keywords and author meta
// values in document order.
func extractMetadata(n *html.Node) (desc, keywords, author string) {
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			var name, content string
			for _, attr := range n.Attr {
				switch attr.Key {
				case "name":
					name = strings.ToLower(attr.Val)
				case "content":
					content = strings.TrimSpace(attr.Val)
				}
			}
			switch name {
			case "description":
				desc = content
			case "keywords":
				keywords = content
			case "author":
				author = content
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return desc, keywords, author
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
