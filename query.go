package dentcloud

import (
	"net/url"
	"strings"
)

// Param is a single query string pair.
type Param struct {
	Key   string
	Value string
}

// Query is an ordered list of query string pairs. Unlike url.Values it keeps
// the order the pairs were added in.
type Query []Param

// Add appends a pair and returns the extended query.
func (q Query) Add(key, value string) Query {
	return append(q, Param{Key: key, Value: value})
}

// Get returns the first value for key.
func (q Query) Get(key string) (string, bool) {
	for _, p := range q {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Encode renders the query in URL-encoded form, preserving order.
func (q Query) Encode() string {
	var sb strings.Builder
	for i, p := range q {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(p.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p.Value))
	}
	return sb.String()
}
