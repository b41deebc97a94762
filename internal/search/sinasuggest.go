package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"stockwatch/internal/gbk"
	"stockwatch/internal/symbol"
)

const (
	sinaSuggestBaseURL = "https://suggest3.sinajs.cn"
	// Type filter covering A-share equities and funds, as used by the Sina
	// web frontend.
	sinaSuggestTypes = "11,12,13,14,15,21,22,23,24,25,31,32,33,34,35"
)

var (
	suggestValueRe = regexp.MustCompile(`var suggestvalue="([^"]+)"`)
	bareCodeRe     = regexp.MustCompile(`^[0-9]{6}$`)
)

// SinaSuggest is the primary name-to-code provider. The response embeds a
// semicolon-delimited suggestion list; entries are scanned in order and the
// first A-share match wins, trusting the provider's own relevance ranking.
type SinaSuggest struct {
	settings settings
}

func NewSinaSuggest(options ...Option) *SinaSuggest {
	s := newSettings(sinaSuggestBaseURL, options...)
	if s.header.Get("Referer") == "" {
		s.header.Set("Referer", "https://finance.sina.com.cn")
	}
	if s.header.Get("User-Agent") == "" {
		s.header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	}
	return &SinaSuggest{settings: s}
}

func (p *SinaSuggest) Name() string { return "sina-suggest" }

func (p *SinaSuggest) Search(ctx context.Context, keyword string) (symbol.Code, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return symbol.Code{}, ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, p.settings.timeout)
	defer cancel()

	u := fmt.Sprintf("%s/suggest/type=%s&key=%s", p.settings.baseURL, sinaSuggestTypes, url.QueryEscape(keyword))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return symbol.Code{}, err
	}
	req.Header = p.settings.header.Clone()

	resp, err := p.settings.httpClient.Do(req)
	if err != nil {
		return symbol.Code{}, fmt.Errorf("sina suggest: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return symbol.Code{}, fmt.Errorf("sina suggest: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return symbol.Code{}, fmt.Errorf("sina suggest: %w", err)
	}
	text, err := gbk.Decode(body)
	if err != nil {
		return symbol.Code{}, fmt.Errorf("sina suggest: decode gbk: %w", err)
	}

	code, ok := pickSuggestion(text)
	if !ok {
		return symbol.Code{}, ErrNotFound
	}
	return code, nil
}

// pickSuggestion scans suggestion entries in order and accepts the first one
// whose fourth field carries an sh/sz prefix and whose third field is a bare
// six-digit code. Beijing-listed and non-A-share entries (HK, US) are
// filtered out.
func pickSuggestion(text string) (symbol.Code, bool) {
	m := suggestValueRe.FindStringSubmatch(text)
	if m == nil {
		return symbol.Code{}, false
	}
	for _, entry := range strings.Split(m[1], ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		fields := strings.Split(entry, ",")
		if len(fields) < 4 {
			continue
		}
		code, full := fields[2], fields[3]
		if !strings.HasPrefix(full, "sh") && !strings.HasPrefix(full, "sz") {
			continue
		}
		if !bareCodeRe.MatchString(code) {
			continue
		}
		return symbol.MustParse(full[:2] + code), true
	}
	return symbol.Code{}, false
}
