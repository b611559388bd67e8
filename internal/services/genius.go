// Genius API implementation of [LyricsService]
//
// Uses the public REST API for search and song metadata, then scrapes the
// song's lyrics page. Genius serves lyrics inside divs marked with the
// data-lyrics-container attribute.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/desertthunder/lyra/internal/models"
	"github.com/desertthunder/lyra/internal/shared"
	"golang.org/x/time/rate"
)

const defaultGeniusBaseURL = "https://api.genius.com"

// lyricsContainerAttr marks the structural regions holding lyrics lines.
const lyricsContainerAttr = `data-lyrics-container="true"`

var (
	lyricsOpenTagRegex = regexp.MustCompile(`<div[^>]*` + lyricsContainerAttr + `[^>]*>`)
	lineBreakRegex     = regexp.MustCompile(`(?i)<br\s*/?>`)
	tagRegex           = regexp.MustCompile(`<[^>]*>`)
	numericEntityRegex = regexp.MustCompile(`&#([xX][0-9a-fA-F]+|[0-9]+);`)
)

// namedEntityReplacer decodes the named entities Genius pages actually emit.
// A single-pass replacer never rescans its own output, so "&amp;lt;" decodes
// to "&lt;" and no further.
var namedEntityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&nbsp;", " ",
)

// GeniusService implements [LyricsService] against the Genius catalog.
type GeniusService struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	pageHeaders *shared.CurlHeaders
	limiter     *rate.Limiter
}

// NewGeniusService creates a new Genius client. baseURL defaults to the public API.
func NewGeniusService(accessToken, baseURL string) *GeniusService {
	if baseURL == "" {
		baseURL = defaultGeniusBaseURL
	}

	return &GeniusService{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		httpClient:  http.DefaultClient,
		// Politeness cap on outbound calls; Genius throttles scrapers.
		limiter: rate.NewLimiter(rate.Limit(5), 5),
	}
}

// Name returns the service name.
func (g *GeniusService) Name() string {
	return "Genius"
}

// SetPageHeaders sets browser headers replayed on lyrics page fetches.
func (g *GeniusService) SetPageHeaders(h *shared.CurlHeaders) {
	g.pageHeaders = h
}

// geniusSong is the catalog's song resource shape.
type geniusSong struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	ArtistNames  string `json:"artist_names"`
	ThumbnailURL string `json:"song_art_image_thumbnail_url"`
	URL          string `json:"url"`
}

func (s geniusSong) toModel() models.Song {
	return models.Song{
		ID:           s.ID,
		Title:        s.Title,
		Artist:       s.ArtistNames,
		ThumbnailURL: s.ThumbnailURL,
		PageURL:      s.URL,
	}
}

// doRequest performs an authenticated GET against the Genius REST API.
func (g *GeniusService) doRequest(ctx context.Context, endpoint string, result any) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if g.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+g.accessToken)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("genius API error: status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Search returns catalog hits for a query, best match first.
//
// Calls GET /search?q= on the Genius API.
func (g *GeniusService) Search(ctx context.Context, query string) ([]models.Song, error) {
	var searchResp struct {
		Response struct {
			Hits []struct {
				Result geniusSong `json:"result"`
			} `json:"hits"`
		} `json:"response"`
	}

	endpoint := "/search?q=" + url.QueryEscape(query)
	if err := g.doRequest(ctx, endpoint, &searchResp); err != nil {
		return nil, err
	}

	songs := make([]models.Song, len(searchResp.Response.Hits))
	for i, hit := range searchResp.Response.Hits {
		songs[i] = hit.Result.toModel()
	}

	return songs, nil
}

// GetSong retrieves full song metadata by catalog ID.
//
// Calls GET /songs/{id} on the Genius API.
func (g *GeniusService) GetSong(ctx context.Context, id int64) (*models.Song, error) {
	var songResp struct {
		Response struct {
			Song geniusSong `json:"song"`
		} `json:"response"`
	}

	if err := g.doRequest(ctx, "/songs/"+strconv.FormatInt(id, 10), &songResp); err != nil {
		return nil, err
	}

	song := songResp.Response.Song.toModel()
	return &song, nil
}

// Lyrics resolves query to its first search hit and returns the song with its
// extracted plain-text lyrics. Selection policy is always the first hit; no
// ranking or fuzzy matching.
func (g *GeniusService) Lyrics(ctx context.Context, query string) (*models.Song, string, error) {
	hits, err := g.Search(ctx, query)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", shared.ErrLyricsFetch, err)
	}

	if len(hits) == 0 {
		return nil, "", fmt.Errorf("%w: %q", shared.ErrSongNotFound, query)
	}

	song := hits[0]
	if song.PageURL == "" {
		detail, err := g.GetSong(ctx, song.ID)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", shared.ErrLyricsFetch, err)
		}
		song = *detail
	}

	page, err := g.fetchPage(ctx, song.PageURL)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", shared.ErrLyricsFetch, err)
	}

	lyrics := ExtractLyrics(page)
	if lyrics == "" {
		return nil, "", fmt.Errorf("%w: no lyrics markup at %s", shared.ErrLyricsFetch, song.PageURL)
	}

	return &song, lyrics, nil
}

// fetchPage retrieves the raw HTML of a lyrics page, replaying any configured
// browser headers.
func (g *GeniusService) fetchPage(ctx context.Context, pageURL string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	if g.pageHeaders != nil {
		for key, value := range g.pageHeaders.Headers {
			req.Header.Set(key, value)
		}
		if g.pageHeaders.Cookie != "" {
			req.Header.Set("Cookie", g.pageHeaders.Cookie)
		}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("page fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("page fetch failed: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read page: %w", err)
	}

	return string(body), nil
}

// ExtractLyrics pulls plain-text lyrics out of a song page.
//
// Collects every data-lyrics-container region, converts line-break markup to
// newlines, strips remaining tags, decodes numeric character references before
// named entities, joins regions with a blank line and trims.
func ExtractLyrics(page string) string {
	var regions []string

	for _, loc := range lyricsOpenTagRegex.FindAllStringIndex(page, -1) {
		body, ok := divBody(page, loc[1])
		if !ok {
			continue
		}

		text := lineBreakRegex.ReplaceAllString(body, "\n")
		text = tagRegex.ReplaceAllString(text, "")
		text = decodeNumericEntities(text)
		text = namedEntityReplacer.Replace(text)
		text = strings.TrimSpace(text)

		if text != "" {
			regions = append(regions, text)
		}
	}

	return strings.Join(regions, "\n\n")
}

// divBody returns the content between start and the matching </div>, tracking
// nested div depth.
func divBody(page string, start int) (string, bool) {
	depth := 1
	rest := page[start:]
	offset := 0

	for depth > 0 {
		open := strings.Index(rest[offset:], "<div")
		close_ := strings.Index(rest[offset:], "</div>")

		if close_ < 0 {
			return "", false
		}

		if open >= 0 && open < close_ {
			depth++
			offset += open + len("<div")
			continue
		}

		depth--
		if depth == 0 {
			return rest[:offset+close_], true
		}
		offset += close_ + len("</div>")
	}

	return "", false
}

// decodeNumericEntities decodes decimal and hex character references.
func decodeNumericEntities(s string) string {
	return numericEntityRegex.ReplaceAllStringFunc(s, func(m string) string {
		ref := m[2 : len(m)-1]

		var code int64
		var err error
		if ref[0] == 'x' || ref[0] == 'X' {
			code, err = strconv.ParseInt(ref[1:], 16, 32)
		} else {
			code, err = strconv.ParseInt(ref, 10, 32)
		}

		if err != nil || code <= 0 {
			return m
		}

		return string(rune(code))
	})
}
