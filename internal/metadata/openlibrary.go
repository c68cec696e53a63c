// Package metadata fetches bibliographic data from the OpenLibrary API
// and applies it to catalog entities.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// BookMetadata contains book information fetched from OpenLibrary.
type BookMetadata struct {
	Title           string   `json:"title"`
	Authors         []string `json:"authors,omitempty"`
	Categories      []string `json:"categories,omitempty"`
	Languages       []string `json:"languages,omitempty"`
	PublicationYear int      `json:"publication_year,omitempty"`
	CoverID         int64    `json:"cover_id,omitempty"`
	OpenLibraryID   string   `json:"open_library_id,omitempty"`
}

// AuthorMetadata contains author information fetched from OpenLibrary.
type AuthorMetadata struct {
	Name string `json:"name"`
	OLID string `json:"olid"`
}

// languageNames maps OpenLibrary language codes to display names.
var languageNames = map[string]string{
	"eng": "English", "fre": "French", "ger": "German", "spa": "Spanish",
	"ita": "Italian", "por": "Portuguese", "rus": "Russian", "jpn": "Japanese",
	"chi": "Chinese", "ara": "Arabic", "hin": "Hindi", "ben": "Bengali",
}

// Client fetches book and author metadata from the OpenLibrary API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	coversURL   string
	rateLimiter *rateLimiter
}

type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

func (r *rateLimiter) wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	since := time.Since(r.lastCall)
	if since < r.interval {
		time.Sleep(r.interval - since)
	}
	r.lastCall = time.Now()
}

// NewClient creates an OpenLibrary API client with rate limiting.
func NewClient(baseURL, coversURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		coversURL:   strings.TrimSuffix(coversURL, "/"),
		rateLimiter: newRateLimiter(time.Second), // 1 request per second
	}
}

func (c *Client) get(ctx context.Context, rawURL string, out any) error {
	c.rateLimiter.wait()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "BookManager/1.0 (https://github.com/sfn101/book-manager)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("not found: %s", rawURL)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// SearchByTitle searches OpenLibrary for books matching a title. Each
// result is enriched with the work's subjects and covers.
func (c *Client) SearchByTitle(ctx context.Context, title string, limit int) ([]*BookMetadata, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if limit <= 0 {
		limit = 1
	}

	searchURL := fmt.Sprintf("%s/search.json?title=%s&limit=%d",
		c.baseURL, url.QueryEscape(title), limit)

	var result openLibrarySearchResult
	if err := c.get(ctx, searchURL, &result); err != nil {
		return nil, err
	}

	books := make([]*BookMetadata, 0, len(result.Docs))
	for i := range result.Docs {
		doc := &result.Docs[i]
		// Work details carry the subjects the search result omits;
		// losing them is not fatal
		if doc.Key != "" {
			var work openLibraryWork
			if err := c.get(ctx, fmt.Sprintf("%s%s.json", c.baseURL, doc.Key), &work); err == nil {
				if len(work.Subjects) > 0 {
					doc.Subject = work.Subjects
				}
				if doc.CoverI == 0 && len(work.Covers) > 0 {
					doc.CoverI = work.Covers[0]
				}
			}
		}
		books = append(books, docToMetadata(doc))
	}

	return books, nil
}

// GetByOpenLibraryID fetches a single work by its OpenLibrary ID.
func (c *Client) GetByOpenLibraryID(ctx context.Context, olid string) (*BookMetadata, error) {
	olid = strings.TrimSpace(olid)
	if olid == "" {
		return nil, fmt.Errorf("open library id is required")
	}

	var work openLibraryWork
	if err := c.get(ctx, fmt.Sprintf("%s/works/%s.json", c.baseURL, olid), &work); err != nil {
		return nil, err
	}

	metadata := &BookMetadata{
		Title:         work.Title,
		OpenLibraryID: strings.TrimPrefix(work.Key, "/works/"),
		Categories:    filterSubjects(work.Subjects),
	}
	if len(work.Covers) > 0 {
		metadata.CoverID = work.Covers[0]
	}
	if work.FirstPublishDate != "" {
		metadata.PublicationYear = extractYear(work.FirstPublishDate)
	}

	// Resolve author references into names
	for _, ref := range work.Authors {
		key := ref.Author.Key
		if key == "" {
			continue
		}
		var author struct {
			Name string `json:"name"`
		}
		if err := c.get(ctx, fmt.Sprintf("%s%s.json", c.baseURL, key), &author); err == nil && author.Name != "" {
			metadata.Authors = append(metadata.Authors, author.Name)
		}
	}

	return metadata, nil
}

// SearchAuthor looks an author up by name and returns their OLID.
func (c *Client) SearchAuthor(ctx context.Context, name string) (*AuthorMetadata, error) {
	if name == "" {
		return nil, fmt.Errorf("author name is required")
	}

	searchURL := fmt.Sprintf("%s/search/authors.json?q=%s&limit=1",
		c.baseURL, url.QueryEscape(name))

	var result struct {
		Docs []struct {
			Key  string `json:"key"`
			Name string `json:"name"`
		} `json:"docs"`
	}
	if err := c.get(ctx, searchURL, &result); err != nil {
		return nil, err
	}
	if len(result.Docs) == 0 {
		return nil, fmt.Errorf("no author found for: %s", name)
	}

	doc := result.Docs[0]
	// Search results carry the OLID directly; detail pages prefix it
	// with /authors/
	olid := strings.TrimPrefix(doc.Key, "/authors/")

	return &AuthorMetadata{
		Name: doc.Name,
		OLID: olid,
	}, nil
}

// CoverURL builds a displayable cover image URL from a cover ID.
// Valid sizes are S, M and L.
func (c *Client) CoverURL(coverID int64, size string) string {
	if coverID == 0 {
		return ""
	}
	if size == "" {
		size = "M"
	}
	return fmt.Sprintf("%s/b/id/%d-%s.jpg", c.coversURL, coverID, size)
}

// AuthorPhotoURL builds a displayable author photo URL from an OLID.
func (c *Client) AuthorPhotoURL(olid, size string) string {
	if olid == "" {
		return ""
	}
	if size == "" {
		size = "M"
	}
	return fmt.Sprintf("%s/a/olid/%s-%s.jpg", c.coversURL, olid, size)
}

// VerifyCoverExists checks whether a cover image is actually available.
func (c *Client) VerifyCoverExists(ctx context.Context, coverID int64) bool {
	return c.headOK(ctx, c.CoverURL(coverID, "L"))
}

// VerifyAuthorPhotoExists checks whether an author photo is available.
func (c *Client) VerifyAuthorPhotoExists(ctx context.Context, olid string) bool {
	return c.headOK(ctx, c.AuthorPhotoURL(olid, "L"))
}

func (c *Client) headOK(ctx context.Context, rawURL string) bool {
	if rawURL == "" {
		return false
	}

	c.rateLimiter.wait()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

func docToMetadata(doc *openLibrarySearchDoc) *BookMetadata {
	metadata := &BookMetadata{
		Title:           doc.Title,
		Authors:         doc.AuthorName,
		PublicationYear: doc.FirstPublishYear,
		CoverID:         doc.CoverI,
		Categories:      filterSubjects(doc.Subject),
		OpenLibraryID:   strings.TrimPrefix(doc.Key, "/works/"),
	}

	// Map language codes to names; default to English when absent
	if len(doc.Language) > 0 {
		langs := doc.Language
		if len(langs) > 5 {
			langs = langs[:5]
		}
		for _, code := range langs {
			if name, ok := languageNames[code]; ok {
				metadata.Languages = append(metadata.Languages, name)
			} else {
				metadata.Languages = append(metadata.Languages, code)
			}
		}
	} else {
		metadata.Languages = []string{"English"}
	}

	return metadata
}

// filterSubjects reduces OpenLibrary's noisy subject lists to usable
// category names.
func filterSubjects(subjects []string) []string {
	var categories []string
	for _, subject := range subjects {
		if len(categories) >= 10 {
			break
		}
		subject = strings.TrimSpace(subject)
		lower := strings.ToLower(subject)
		if len(subject) <= 2 || len(subject) >= 50 {
			continue
		}
		if strings.HasPrefix(subject, "Reading Level") || strings.HasPrefix(subject, "nyt:") {
			continue
		}
		// Skip the endless "... in fiction" variants but keep the
		// plain genre labels
		if strings.Contains(lower, "fiction") && lower != "fiction" && lower != "juvenile fiction" {
			continue
		}
		categories = append(categories, subject)
	}
	return categories
}

// extractYear tries to extract a 4-digit year from a date string.
func extractYear(dateStr string) int {
	dateStr = strings.TrimSpace(dateStr)
	if len(dateStr) < 4 {
		return 0
	}

	formats := []string{
		"2006",
		"January 2, 2006",
		"Jan 2, 2006",
		"2006-01-02",
		"January 2006",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t.Year()
		}
	}

	// Last resort: find 4 consecutive digits
	for i := 0; i <= len(dateStr)-4; i++ {
		if dateStr[i] >= '0' && dateStr[i] <= '9' {
			var year int
			if _, err := fmt.Sscanf(dateStr[i:i+4], "%d", &year); err == nil && year > 1000 && year < 3000 {
				return year
			}
		}
	}

	return 0
}

// OpenLibrary API response types (internal)

type openLibrarySearchResult struct {
	NumFound int                    `json:"numFound"`
	Docs     []openLibrarySearchDoc `json:"docs"`
}

type openLibrarySearchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	Language         []string `json:"language"`
	CoverI           int64    `json:"cover_i"`
	Subject          []string `json:"subject"`
}

type openLibraryWork struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	Subjects         []string `json:"subjects"`
	Covers           []int64  `json:"covers"`
	FirstPublishDate string   `json:"first_publish_date"`
	Authors          []struct {
		Author struct {
			Key string `json:"key"`
		} `json:"author"`
	} `json:"authors"`
}
