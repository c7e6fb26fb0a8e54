package web

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

const formContentType = "application/x-www-form-urlencoded"

// formFields holds the first value of each urlencoded body field
type formFields map[string]string

// readForm reads a urlencoded request body. Bodies of any other content type
// yield no fields. Fields are separated by '&' only and escapes that do not
// decode are kept as written.
func readForm(w http.ResponseWriter, r *http.Request) (formFields, error) {
	fields := formFields{}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != formContentType {
		return fields, nil
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxFormBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read form body: %w", err)
	}

	for _, pair := range strings.Split(string(body), "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		key = unescapeField(key)
		if key == "" {
			continue
		}
		if _, seen := fields[key]; !seen {
			fields[key] = unescapeField(value)
		}
	}

	return fields, nil
}

// unescapeField decodes a urlencoded field, falling back to the raw text with
// '+' read as a space when the escapes are malformed
func unescapeField(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return strings.ReplaceAll(s, "+", " ")
	}
	return decoded
}
