package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"stockwatch/internal/symbol"
)

const smartboxBaseURL = "https://smartbox.gtimg.cn"

var (
	hintRe     = regexp.MustCompile(`v_hint="([^"]+)"`)
	fullCodeRe = regexp.MustCompile(`^(sh|sz)[0-9]{6}$`)
)

// Smartbox is the fallback provider (Tencent). The response embeds a single
// name,fullcode,description triple; only an sh/sz fullcode is accepted.
type Smartbox struct {
	settings settings
}

func NewSmartbox(options ...Option) *Smartbox {
	s := newSettings(smartboxBaseURL, options...)
	if s.header.Get("User-Agent") == "" {
		s.header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	}
	return &Smartbox{settings: s}
}

func (p *Smartbox) Name() string { return "smartbox" }

func (p *Smartbox) Search(ctx context.Context, keyword string) (symbol.Code, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return symbol.Code{}, ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, p.settings.timeout)
	defer cancel()

	u := fmt.Sprintf("%s/s3/?q=%s&t=all", p.settings.baseURL, url.QueryEscape(keyword))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return symbol.Code{}, err
	}
	req.Header = p.settings.header.Clone()

	resp, err := p.settings.httpClient.Do(req)
	if err != nil {
		return symbol.Code{}, fmt.Errorf("smartbox: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return symbol.Code{}, fmt.Errorf("smartbox: status %d", resp.StatusCode)
	}

	// The fullcode is ASCII, so the body can be matched without charset
	// decoding even though the surrounding name text is GBK.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return symbol.Code{}, fmt.Errorf("smartbox: %w", err)
	}

	m := hintRe.FindStringSubmatch(string(body))
	if m == nil {
		return symbol.Code{}, ErrNotFound
	}
	parts := strings.Split(m[1], ",")
	if len(parts) < 2 {
		return symbol.Code{}, ErrNotFound
	}
	full := strings.ToLower(strings.TrimSpace(parts[1]))
	if !fullCodeRe.MatchString(full) {
		return symbol.Code{}, ErrNotFound
	}
	return symbol.MustParse(full), nil
}
