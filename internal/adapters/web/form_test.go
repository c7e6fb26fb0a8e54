package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFormRequest(contentType, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, SendEmailPath, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req
}

func TestReadForm(t *testing.T) {
	cases := []struct {
		name string
		body string
		want formFields
	}{
		{
			name: "encoded values",
			body: "to=alice%40example.com&sub=Hello+there&eml=caf%C3%A9",
			want: formFields{"to": "alice@example.com", "sub": "Hello there", "eml": "café"},
		},
		{
			name: "semicolon stays in the value",
			body: "eml=a;b&sub=x",
			want: formFields{"eml": "a;b", "sub": "x"},
		},
		{
			name: "malformed escape kept raw",
			body: "eml=50%+off%",
			want: formFields{"eml": "50% off%"},
		},
		{
			name: "first value wins",
			body: "to=first&to=second",
			want: formFields{"to": "first"},
		},
		{
			name: "missing value and empty pairs",
			body: "&to&&sub=&=orphan",
			want: formFields{"to": "", "sub": ""},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := newFormRequest("application/x-www-form-urlencoded", tc.body)
			fields, err := readForm(httptest.NewRecorder(), req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, fields)
		})
	}
}

func TestReadForm_OtherContentTypesYieldNoFields(t *testing.T) {
	for _, ct := range []string{"", "text/plain", "application/json", "multipart/form-data; boundary=x"} {
		fields, err := readForm(httptest.NewRecorder(), newFormRequest(ct, "to=alice@example.com"))
		require.NoError(t, err)
		assert.Empty(t, fields, ct)
	}
}

func TestReadForm_ContentTypeParameters(t *testing.T) {
	req := newFormRequest("application/x-www-form-urlencoded; charset=UTF-8", "eml=hi")
	fields, err := readForm(httptest.NewRecorder(), req)
	require.NoError(t, err)
	assert.Equal(t, "hi", fields["eml"])
}

func TestReadForm_OversizedBody(t *testing.T) {
	req := newFormRequest("application/x-www-form-urlencoded", "eml="+strings.Repeat("x", maxFormBytes))
	_, err := readForm(httptest.NewRecorder(), req)
	assert.Error(t, err)
}
