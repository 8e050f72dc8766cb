// Package unfurl fetches a URL and extracts an OpenGraph style link
// preview to attach to posts. Failures never fail the caller, a post
// with a dead link simply has no preview.
package unfurl

import (
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"github.com/pkg/errors"
)

const (
	fetchTimeoutSeconds = 5

	// maxBodyBytes caps how much of the remote document we read. Meta
	// tags live in <head>, anything past this is not interesting.
	maxBodyBytes = 512 * 1024
)

var urlPattern = regexp.MustCompile(`https?://[^\s]+`)

/*

Preview is the unfurled summary of a link.

Url: the fetched URL
Title / Description / ImageUrl: OpenGraph (falling back to twitter
		card / document) fields
SiteName: og:site_name when present
PublishedAt: article published time when the page declares one,
		parsed leniently

*/

type Preview struct {
	Url         string     `json:"url"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	ImageUrl    string     `json:"image_url,omitempty"`
	SiteName    string     `json:"site_name,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

type HttpClient struct{}

func (HttpClient) GetWithin(uri string, seconds int) (resp *http.Response, err error) {
	client := &http.Client{Timeout: time.Duration(seconds) * time.Second}
	return client.Get(uri)
}

// Fetcher resolves link previews. The zero value is usable.
type Fetcher struct {
	client interface {
		GetWithin(uri string, seconds int) (*http.Response, error)
	}
}

func NewFetcher() *Fetcher {
	return &Fetcher{client: HttpClient{}}
}

// FirstURL extracts the first http(s) URL from a piece of content,
// empty string when there is none.
func FirstURL(content string) string {
	return urlPattern.FindString(content)
}

// Fetch downloads the page and extracts a Preview.
func (f *Fetcher) Fetch(url string) (*Preview, error) {
	res, err := f.client.GetWithin(url, fetchTimeoutSeconds)
	if err != nil {
		return nil, errors.Wrap(err, "fail to fetch url: "+url)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, errors.Errorf("unexpected status %d fetching url: %s", res.StatusCode, url)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(err, "fail to parse document: "+url)
	}

	return ParseDocument(url, doc), nil
}

// ParseDocument pulls preview fields out of a parsed page.
func ParseDocument(url string, doc *goquery.Document) *Preview {
	preview := &Preview{Url: url}

	preview.Title = firstNonEmpty(
		metaContent(doc, "og:title"),
		metaContent(doc, "twitter:title"),
		strings.TrimSpace(doc.Find("title").First().Text()),
	)
	preview.Description = firstNonEmpty(
		metaContent(doc, "og:description"),
		metaContent(doc, "twitter:description"),
		metaNameContent(doc, "description"),
	)
	preview.ImageUrl = firstNonEmpty(
		metaContent(doc, "og:image"),
		metaContent(doc, "twitter:image"),
	)
	preview.SiteName = metaContent(doc, "og:site_name")

	if published := metaContent(doc, "article:published_time"); published != "" {
		if t, err := dateparse.ParseAny(published); err == nil {
			preview.PublishedAt = &t
		}
	}

	return preview
}

func metaContent(doc *goquery.Document, property string) string {
	content, _ := doc.Find(`meta[property="` + property + `"]`).First().Attr("content")
	return strings.TrimSpace(content)
}

func metaNameContent(doc *goquery.Document, name string) string {
	content, _ := doc.Find(`meta[name="` + name + `"]`).First().Attr("content")
	return strings.TrimSpace(content)
}

func firstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}
