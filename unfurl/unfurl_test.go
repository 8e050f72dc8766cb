package unfurl

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullPage = `<html><head>
<title>Fallback Title</title>
<meta property="og:title" content="An Article" />
<meta property="og:description" content="Something happened." />
<meta property="og:image" content="https://cdn.example.com/hero.jpg" />
<meta property="og:site_name" content="Example News" />
<meta property="article:published_time" content="2021-08-08T14:32:50-07:00" />
</head><body></body></html>`

const barePage = `<html><head>
<title>  Just a Title  </title>
<meta name="description" content="plain meta description" />
</head><body></body></html>`

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestParseDocumentOpenGraph(t *testing.T) {
	preview := ParseDocument("https://example.com/a", mustDoc(t, fullPage))

	published, _ := time.Parse(time.RFC3339, "2021-08-08T14:32:50-07:00")
	expected := &Preview{
		Url:         "https://example.com/a",
		Title:       "An Article",
		Description: "Something happened.",
		ImageUrl:    "https://cdn.example.com/hero.jpg",
		SiteName:    "Example News",
		PublishedAt: &published,
	}

	if diff := cmp.Diff(expected, preview); diff != "" {
		t.Errorf("preview mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDocumentFallbacks(t *testing.T) {
	preview := ParseDocument("https://example.com/b", mustDoc(t, barePage))

	assert.Equal(t, "Just a Title", preview.Title)
	assert.Equal(t, "plain meta description", preview.Description)
	assert.Empty(t, preview.ImageUrl)
	assert.Nil(t, preview.PublishedAt)
}

func TestFirstURL(t *testing.T) {
	assert.Equal(t, "https://example.com/x", FirstURL("check this https://example.com/x out"))
	assert.Equal(t, "", FirstURL("no links here"))
}
