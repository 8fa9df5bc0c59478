package subscription

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mr-tron/base58"

	"github.com/kelpgrid/driftwatch/pkg/model"
	"github.com/kelpgrid/driftwatch/pkg/observability"
)

// DefaultTimeout bounds one subscription fetch.
const DefaultTimeout = 15 * time.Second

// maxPayloadSize caps the encoded subscription body.
const maxPayloadSize = 4 << 20

// Payload is the decoded remote subscription document. Source order is
// the order the document listed them in.
type Payload struct {
	SiteName  string
	CacheTime int
	Sources   []model.SourceConfig
	Lives     []model.LiveConfig
}

// Client fetches subscription payloads.
type Client struct {
	http *http.Client
	log  *observability.Logger
}

// NewClient creates a subscription client. A nil httpClient gets one with
// the default timeout; a nil logger discards output.
func NewClient(httpClient *http.Client, log *observability.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if log == nil {
		log = observability.NopLogger()
	}
	return &Client{http: httpClient, log: log}
}

// Fetch downloads and decodes the subscription document at url. The body
// is Base58 text wrapping a JSON document. The returned hash identifies
// the decoded payload, so callers can skip re-applying an unchanged one.
func (c *Client) Fetch(ctx context.Context, url string) (*Payload, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build subscription request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("subscription fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("subscription fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadSize))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read subscription body: %w", err)
	}

	decoded, err := base58.Decode(strings.TrimSpace(string(body)))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode subscription body: %w", err)
	}

	payload, err := ParsePayload(decoded)
	if err != nil {
		return nil, "", err
	}

	sum := sha256.Sum256(decoded)
	return payload, hex.EncodeToString(sum[:]), nil
}

// ParsePayload parses the decoded JSON subscription document. The source
// map is walked token by token so the document's entry order is kept;
// encoding/json map decoding would shuffle it.
func ParsePayload(data []byte) (*Payload, error) {
	var doc struct {
		SiteName  string          `json:"site_name"`
		CacheTime int             `json:"cache_time"`
		APISite   json.RawMessage `json:"api_site"`
		Lives     json.RawMessage `json:"live_site"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse subscription payload: %w", err)
	}

	payload := &Payload{
		SiteName:  doc.SiteName,
		CacheTime: doc.CacheTime,
	}

	if len(doc.APISite) > 0 {
		sources, err := parseOrderedSources(doc.APISite)
		if err != nil {
			return nil, err
		}
		payload.Sources = sources
	}
	if len(doc.Lives) > 0 {
		lives, err := parseOrderedLives(doc.Lives)
		if err != nil {
			return nil, err
		}
		payload.Lives = lives
	}

	return payload, nil
}

func parseOrderedSources(raw json.RawMessage) ([]model.SourceConfig, error) {
	var sources []model.SourceConfig
	err := walkOrderedObject(raw, func(key string, value json.RawMessage) error {
		var entry struct {
			Name     string `json:"name"`
			API      string `json:"api"`
			Detail   string `json:"detail"`
			Disabled bool   `json:"disabled"`
		}
		if err := json.Unmarshal(value, &entry); err != nil {
			return fmt.Errorf("failed to parse source %q: %w", key, err)
		}
		sources = append(sources, model.SourceConfig{
			Key:      key,
			Name:     entry.Name,
			API:      entry.API,
			Detail:   entry.Detail,
			Origin:   model.OriginConfig,
			Disabled: entry.Disabled,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sources, nil
}

func parseOrderedLives(raw json.RawMessage) ([]model.LiveConfig, error) {
	var lives []model.LiveConfig
	err := walkOrderedObject(raw, func(key string, value json.RawMessage) error {
		var entry struct {
			Name      string `json:"name"`
			URL       string `json:"url"`
			UserAgent string `json:"ua"`
			EPG       string `json:"epg"`
			Disabled  bool   `json:"disabled"`
		}
		if err := json.Unmarshal(value, &entry); err != nil {
			return fmt.Errorf("failed to parse live source %q: %w", key, err)
		}
		lives = append(lives, model.LiveConfig{
			Key:       key,
			Name:      entry.Name,
			URL:       entry.URL,
			UserAgent: entry.UserAgent,
			EPG:       entry.EPG,
			Origin:    model.OriginConfig,
			Disabled:  entry.Disabled,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lives, nil
}

// walkOrderedObject visits the top-level members of a JSON object in
// document order.
func walkOrderedObject(raw json.RawMessage, visit func(key string, value json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to parse object: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to parse object key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("failed to parse value of %q: %w", key, err)
		}
		if err := visit(key, value); err != nil {
			return err
		}
	}
	return nil
}
