// Package gbk decodes the legacy double-byte charset used by the upstream
// quote and suggest endpoints. Every response body must pass through Decode
// before any text matching, or Chinese names silently corrupt.
package gbk

import (
	"golang.org/x/text/encoding/simplifiedchinese"
)

// Decode converts a GBK-encoded byte slice to a UTF-8 string.
func Decode(b []byte) (string, error) {
	out, err := simplifiedchinese.GBK.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
