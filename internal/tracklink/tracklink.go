package tracklink

import (
	"net/url"
	"strings"
)

// Build returns the public tracking page URL for a token.
func Build(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/track/" + url.PathEscape(token)
}
