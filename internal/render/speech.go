package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/seenimoa/newsense/internal/infra"
)

// DefaultSpeechURL is the Google Translate text-to-speech endpoint.
const DefaultSpeechURL = "https://translate.google.com/translate_tts"

// MaxChunkRunes is the longest text the endpoint accepts per request.
const MaxChunkRunes = 100

// ErrEmptyText is returned when there is nothing to speak.
var ErrEmptyText = errors.New("speech: empty text")

// GoogleTTS synthesizes MP3 speech through the Google Translate endpoint.
// Long text is spoken in chunks whose MP3 frames are concatenated.
type GoogleTTS struct {
	url     string
	timeout time.Duration
	client  *http.Client
	limiter *infra.RateLimiter
}

// SpeechOption configures GoogleTTS.
type SpeechOption func(*GoogleTTS)

// WithSpeechTimeout bounds a whole synthesis, all chunks included.
func WithSpeechTimeout(d time.Duration) SpeechOption {
	return func(g *GoogleTTS) { g.timeout = d }
}

// WithSpeechHTTPClient sets a custom HTTP client.
func WithSpeechHTTPClient(client *http.Client) SpeechOption {
	return func(g *GoogleTTS) { g.client = client }
}

// WithSpeechRateLimiter paces chunk requests.
func WithSpeechRateLimiter(rl *infra.RateLimiter) SpeechOption {
	return func(g *GoogleTTS) { g.limiter = rl }
}

// NewGoogleTTS creates a client for the endpoint at baseURL.
func NewGoogleTTS(baseURL string, opts ...SpeechOption) *GoogleTTS {
	if baseURL == "" {
		baseURL = DefaultSpeechURL
	}
	g := &GoogleTTS{
		url:     baseURL,
		timeout: 30 * time.Second,
		client:  &http.Client{},
		limiter: infra.NewRateLimiter(5, 200*time.Millisecond),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Synthesize returns the MP3 rendition of text in lang.
func (g *GoogleTTS) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	chunks := SplitText(text, MaxChunkRunes)
	if len(chunks) == 0 {
		return nil, ErrEmptyText
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	var audio []byte
	for i, chunk := range chunks {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		data, err := g.fetchChunk(ctx, chunk, lang, i, len(chunks))
		if err != nil {
			return nil, fmt.Errorf("speech chunk %d/%d: %w", i+1, len(chunks), err)
		}
		audio = append(audio, data...)
	}
	return audio, nil
}

func (g *GoogleTTS) fetchChunk(ctx context.Context, text, lang string, idx, total int) ([]byte, error) {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("q", text)
	q.Set("tl", lang)
	q.Set("client", "tw-ob")
	q.Set("ttsspeed", "1")
	q.Set("total", strconv.Itoa(total))
	q.Set("idx", strconv.Itoa(idx))
	q.Set("textlen", strconv.Itoa(utf8.RuneCountInString(text)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.url+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36")
	req.Header.Set("Referer", "https://translate.google.com/")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return io.ReadAll(io.LimitReader(resp.Body, 4<<20))
}

// SplitText breaks text into chunks of at most limit runes, cutting at
// whitespace. Words longer than limit are split.
func SplitText(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxChunkRunes
	}
	var chunks []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, word := range strings.Fields(text) {
		runes := []rune(word)
		for len(runes) > limit {
			flush()
			chunks = append(chunks, string(runes[:limit]))
			runes = runes[limit:]
		}
		n := len(runes)
		if curLen > 0 && curLen+1+n > limit {
			flush()
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(string(runes))
		curLen += n
	}
	flush()
	return chunks
}
