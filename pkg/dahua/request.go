package dahua

import (
	"net/url"
	"strings"
)

// Request is a CGI request under /cgi-bin/: an action path plus query
// parameters in insertion order. The vendor dialect is sensitive to parameter
// order for multi-key setConfig calls, so a plain url.Values will not do.
type Request struct {
	path   string
	params []param
}

type param struct {
	key, value string
}

// NewRequest starts a request for an action path such as "magicBox.cgi".
func NewRequest(path string) *Request {
	return &Request{path: path}
}

// Param appends a query parameter. Returns the request for chaining.
func (r *Request) Param(key, value string) *Request {
	r.params = append(r.params, param{key, value})
	return r
}

// Encode renders "path?k=v&..." with percent-escaping, except that the
// brackets of vendor keys like MotionDetect[0].Enable stay literal: some
// firmwares reject the escaped form.
func (r *Request) Encode() string {
	if len(r.params) == 0 {
		return r.path
	}
	var b strings.Builder
	b.WriteString(r.path)
	for i, p := range r.params {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(escape(p.key))
		b.WriteByte('=')
		b.WriteString(escape(p.value))
	}
	return b.String()
}

var bracketUnescaper = strings.NewReplacer("%5B", "[", "%5D", "]")

func escape(s string) string {
	return bracketUnescaper.Replace(url.QueryEscape(s))
}
