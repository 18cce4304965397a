package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"threadlens/internal/model"
)

const (
	itemURLFormat    = "https://news.ycombinator.com/item?id=%s"
	defaultUserAgent = "threadlens/0.1 (+https://github.com/threadlens)"

	// indentUnit is the pixel width of one nesting level in the indent image
	indentUnit = 40
)

// Scraper fetches Hacker News discussion pages and extracts comment records
type Scraper struct {
	httpClient *http.Client
	robots     *RobotsChecker
	userAgent  string
	maxBytes   int64
}

// ScrapeOptions bound what gets extracted from a story page
type ScrapeOptions struct {
	MaxDepth int // Include only comments with depth <= MaxDepth; negative means no limit
	Limit    int // Cap on the number of comments; 0 or negative means no cap
}

// Story is a scraped discussion: the post plus its comment records
type Story struct {
	ID       string          `json:"id"`
	Title    string          `json:"title,omitempty"`
	PostText string          `json:"post_text,omitempty"`
	Comments []model.Comment `json:"comments"`
}

// OriginalPost joins title and self-text into the original-post input for
// the analysis pipeline
func (s *Story) OriginalPost() string {
	if s.PostText == "" {
		return s.Title
	}
	if s.Title == "" {
		return s.PostText
	}
	return s.Title + "\n\n" + s.PostText
}

// NewScraper creates a scraper with the given timeout
func NewScraper(timeout time.Duration) *Scraper {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Scraper{
		httpClient: &http.Client{Timeout: timeout},
		robots:     NewRobotsChecker(defaultUserAgent, timeout),
		userAgent:  defaultUserAgent,
		maxBytes:   4_000_000,
	}
}

// FetchStory fetches and parses the discussion page for a story ID
func (s *Scraper) FetchStory(ctx context.Context, storyID string, opts ScrapeOptions) (*Story, error) {
	pageURL := fmt.Sprintf(itemURLFormat, storyID)

	allowed, err := s.robots.CanFetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("robots.txt disallows fetching %s", pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch story %s: %w", storyID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch story %s: unexpected status %d", storyID, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read story %s: %w", storyID, err)
	}

	story, err := ParseStoryHTML(string(body), opts)
	if err != nil {
		return nil, err
	}
	story.ID = storyID
	return story, nil
}

// ParseStoryHTML extracts the post and comment records from an HN item page
func ParseStoryHTML(htmlContent string, opts ScrapeOptions) (*Story, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	story := &Story{Comments: []model.Comment{}}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "span" && hasClass(n, "titleline"):
				if a := findElement(n, "a", ""); a != nil {
					story.Title = strings.TrimSpace(nodeText(a))
				}
			case n.Data == "div" && hasClass(n, "toptext"):
				story.PostText = strings.TrimSpace(nodeText(n))
			case n.Data == "tr" && hasClass(n, "comtr"):
				if c, ok := parseCommentRow(n); ok {
					if opts.MaxDepth >= 0 && c.Depth > opts.MaxDepth {
						return
					}
					if opts.Limit > 0 && len(story.Comments) >= opts.Limit {
						return
					}
					story.Comments = append(story.Comments, c)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return story, nil
}

// parseCommentRow extracts one comment from a tr.comtr row.
// Deleted/dead comments are kept with empty text.
func parseCommentRow(row *html.Node) (model.Comment, bool) {
	id := attrValue(row, "id")
	if id == "" {
		return model.Comment{}, false
	}

	c := model.Comment{ID: id}

	if user := findElement(row, "a", "hnuser"); user != nil {
		c.Author = strings.TrimSpace(nodeText(user))
	}

	if age := findElement(row, "span", "age"); age != nil {
		c.Age = strings.TrimSpace(nodeText(age))
		if ts, ok := parseAgeLabel(c.Age, time.Now().UTC()); ok {
			c.Timestamp = ts.Format(time.RFC3339)
		}
	}

	// Depth is encoded as an image width inside the indentation cell,
	// one indentUnit per level
	if ind := findElement(row, "td", "ind"); ind != nil {
		if img := findElement(ind, "img", ""); img != nil {
			if width, err := strconv.Atoi(attrValue(img, "width")); err == nil {
				c.Depth = width / indentUnit
			}
		}
	}

	c.ParentID = findParentID(row)

	if text := findByClassPrefix(row, "commtext"); text != nil {
		c.Text = strings.TrimSpace(nodeText(text))
	}

	return c, true
}

// findParentID locates the "parent" anchor and pulls the item ID off its href
func findParentID(row *html.Node) string {
	var id string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if id != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			if strings.EqualFold(strings.TrimSpace(nodeText(n)), "parent") {
				href := attrValue(n, "href")
				if idx := strings.Index(href, "item?id="); idx != -1 {
					id = href[idx+len("item?id="):]
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(row)
	return id
}

// agePattern matches labels like "3 hours ago" or "1 day ago"
var agePattern = regexp.MustCompile(`(?i)^(\d+)\s+(minute|hour|day|month|year)s?\s+ago$`)

// parseAgeLabel converts a human-readable age label into a timestamp
// relative to now
func parseAgeLabel(label string, now time.Time) (time.Time, bool) {
	m := agePattern.FindStringSubmatch(strings.TrimSpace(label))
	if m == nil {
		return time.Time{}, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, false
	}

	switch strings.ToLower(m[2]) {
	case "minute":
		return now.Add(-time.Duration(n) * time.Minute), true
	case "hour":
		return now.Add(-time.Duration(n) * time.Hour), true
	case "day":
		return now.AddDate(0, 0, -n), true
	case "month":
		return now.AddDate(0, -n, 0), true
	case "year":
		return now.AddDate(-n, 0, 0), true
	}
	return time.Time{}, false
}

// HTML helpers

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attrValue(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// findElement returns the first descendant with the given tag and,
// when class is non-empty, that class
func findElement(n *html.Node, tag, class string) *html.Node {
	var found *html.Node
	var walk func(node *html.Node)
	walk = func(node *html.Node) {
		if found != nil {
			return
		}
		if node.Type == html.ElementNode && node.Data == tag {
			if class == "" || hasClass(node, class) {
				found = node
				return
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return found
}

// findByClassPrefix returns the first descendant whose class list contains a
// class starting with prefix (comment text cells carry classes like
// "commtext c00")
func findByClassPrefix(n *html.Node, prefix string) *html.Node {
	var found *html.Node
	var walk func(node *html.Node)
	walk = func(node *html.Node) {
		if found != nil {
			return
		}
		if node.Type == html.ElementNode {
			for _, c := range strings.Fields(attrValue(node, "class")) {
				if strings.HasPrefix(c, prefix) {
					found = node
					return
				}
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return found
}

// nodeText concatenates the visible text beneath a node, collapsing
// whitespace runs to single spaces
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(node *html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
			b.WriteString(" ")
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
