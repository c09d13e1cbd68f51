package tts

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/deskfolio/deskfolio/internal/config"
)

// ErrNotConfigured is returned when the API key or voice is missing.
var ErrNotConfigured = errors.New("tts not configured")

// ErrEmptyText is returned for blank input.
var ErrEmptyText = errors.New("text is required")

// maxLine bounds a single NDJSON line; audio chunks are base64 PCM.
const maxLine = 8 << 20

// Client streams speech with timestamps from the ElevenLabs API.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	voiceID string
	model   string
	format  string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// NewClient returns a client for cfg.
func NewClient(cfg config.TTSConfig, opts ...ClientOption) (*Client, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}
	c := &Client{
		http:    &http.Client{Timeout: 2 * time.Minute},
		baseURL: strings.TrimRight(orDefault(cfg.BaseURL, config.DefaultTTSBaseURL), "/"),
		apiKey:  cfg.APIKey,
		voiceID: cfg.VoiceID,
		model:   orDefault(cfg.Model, config.DefaultTTSModel),
		format:  orDefault(cfg.Format, config.DefaultTTSFormat),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Stream starts synthesis of text and returns the NDJSON response body.
// The caller must close it.
func (c *Client) Stream(ctx context.Context, text string) (io.ReadCloser, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	body, err := json.Marshal(map[string]string{"text": text, "model_id": c.model})
	if err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s/stream/with-timestamps?output_format=%s",
		c.baseURL, url.PathEscape(c.voiceID), url.QueryEscape(c.format))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build tts request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("tts upstream returned %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	return resp.Body, nil
}

// Copy relays NDJSON lines from r to w, calling flush after each line. With
// timings set, each line gains derived "words" and "emojis" arrays. Blank
// lines are dropped; lines that are not JSON objects pass through untouched.
func Copy(w io.Writer, r io.Reader, flush func(), timings bool) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64<<10), maxLine)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		if timings {
			if enriched, err := Enrich(line); err == nil {
				line = enriched
			}
		}
		if _, err := w.Write(line); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
		if flush != nil {
			flush()
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed to read tts stream: %w", err)
	}
	return nil
}

// Enrich adds derived timings to a single stream line. Words come from the
// normalized alignment, emojis from the raw one.
func Enrich(line []byte) ([]byte, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(line, &raw); err != nil {
		return nil, err
	}
	var chunk Chunk
	if err := json.Unmarshal(line, &chunk); err != nil {
		return nil, err
	}

	words := Words(chunk.NormalizedAlignment)
	emojis := Emojis(chunk.Alignment)
	if words == nil {
		words = []WordTiming{}
	}
	if emojis == nil {
		emojis = []EmojiEvent{}
	}

	var err error
	if raw["words"], err = json.Marshal(words); err != nil {
		return nil, err
	}
	if raw["emojis"], err = json.Marshal(emojis); err != nil {
		return nil, err
	}
	return json.Marshal(raw)
}
