// Package sina fetches batched real-time quotes from the Sina hq endpoint.
package sina

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"stockwatch/internal/gbk"
	"stockwatch/internal/httpx"
	"stockwatch/internal/quote"
	"stockwatch/internal/symbol"
)

// Each response line has the shape: var hq_str_sh600519="field0,field1,...";
var hqLineRe = regexp.MustCompile(`var hq_str_([a-z]{2}[0-9]{6})="([^"]*)"`)

type Config struct {
	Name    string
	URL     string            // base endpoint, codes appended to list=
	Headers map[string]string // extra headers per request
}

type Client struct {
	cfg  Config
	http *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Client {
	if cfg.Name == "" {
		cfg.Name = "Sina"
	}
	if cfg.URL == "" {
		cfg.URL = "https://hq.sinajs.cn/list="
	}
	if cfg.Headers == nil {
		cfg.Headers = map[string]string{
			"Referer":    "https://finance.sina.com.cn",
			"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		}
	}
	return &Client{cfg: cfg, http: hc}
}

func (c *Client) Name() string { return c.cfg.Name }

// Fetch issues exactly one GET for the whole batch, joining the codes with
// commas. An empty code list returns an empty map with no network call.
// Transport errors return an empty map and the error; per-symbol parse
// failures are simply absent from the result.
func (c *Client) Fetch(ctx context.Context, codes []symbol.Code) (map[string]quote.Quote, error) {
	if len(codes) == 0 {
		return map[string]quote.Quote{}, nil
	}

	raw, err := c.fetchRaw(ctx, codes)
	if err != nil {
		return map[string]quote.Quote{}, err
	}

	out := make(map[string]quote.Quote, len(codes))
	for _, code := range codes {
		seg, ok := raw[code.String()]
		if !ok {
			continue
		}
		if q, ok := quote.Parse(code, seg); ok {
			out[code.String()] = q
		}
	}
	return out, nil
}

// fetchRaw returns the per-symbol field strings keyed by lowercase code.
// Lines that do not match the hq_str pattern are skipped, not fatal.
func (c *Client) fetchRaw(ctx context.Context, codes []symbol.Code) (map[string]string, error) {
	joined := make([]string, 0, len(codes))
	for _, code := range codes {
		joined = append(joined, code.String())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL+strings.Join(joined, ","), http.NoBody)
	if err != nil {
		return nil, err
	}
	for k, v := range c.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("GET %s -> %d", c.cfg.URL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	// The body is GBK; decode before any matching.
	text, err := gbk.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("decode gbk: %w", err)
	}

	raw := make(map[string]string, len(codes))
	for _, line := range strings.Split(text, "\n") {
		m := hqLineRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		raw[strings.ToLower(m[1])] = m[2]
	}
	return raw, nil
}
