package api

import (
	"net/url"
	"strconv"
	"strings"
)

// Param is one query string pair. Keys are trusted literals; only values are escaped.
type Param struct {
	Key   string
	Value string
}

// Query is an ordered list of query string pairs.
type Query struct {
	params []Param
}

// Add appends a pair, keeping insertion order.
func (q *Query) Add(key, value string) {
	q.params = append(q.params, Param{Key: key, Value: value})
}

// AddIfSet appends the pair only when value is non-empty.
func (q *Query) AddIfSet(key, value string) {
	if value != "" {
		q.Add(key, value)
	}
}

// AddInt appends an integer pair.
func (q *Query) AddInt(key string, value int) {
	q.Add(key, strconv.Itoa(value))
}

// Params returns a copy of the pairs in order.
func (q *Query) Params() []Param {
	out := make([]Param, len(q.params))
	copy(out, q.params)
	return out
}

// Get returns the first value stored under key.
func (q *Query) Get(key string) (string, bool) {
	for _, p := range q.params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Len returns the number of pairs.
func (q *Query) Len() int { return len(q.params) }

// BuildURI assembles an absolute request URI.
//
// The layout is baseURL + [APIVersion] + territory segment + path, followed (unless the
// descriptor asks for an empty query string) by client_id, domain, lang and then the caller's
// pairs in insertion order.
func BuildURI(desc Descriptor, settings ClientSettings, baseURL, path string, query *Query) (string, error) {
	if settings.ClientID == "" {
		return "", ErrCredentialsRequired
	}

	var b strings.Builder
	b.WriteString(baseURL)
	b.WriteString(APIVersion)

	switch {
	case desc.RequiresCountryCode && !desc.UseBlankTerritory:
		if settings.CountryCode == "" {
			return "", ErrCountryCodeRequired
		}
		b.WriteString(settings.CountryCode)
		b.WriteString("/")
	case desc.UseBlankTerritory:
		b.WriteString("-/")
	}

	b.WriteString(path)

	if desc.RequiresEmptyQuerystring {
		return b.String(), nil
	}

	b.WriteString("?client_id=")
	b.WriteString(escapeValue(settings.ClientID))

	if desc.Domain != "" {
		writePair(&b, "domain", desc.Domain)
	}
	if settings.Language != "" {
		writePair(&b, "lang", settings.Language)
	}
	if query != nil {
		for _, p := range query.params {
			writePair(&b, p.Key, p.Value)
		}
	}

	return b.String(), nil
}

func writePair(b *strings.Builder, key, value string) {
	b.WriteString("&")
	b.WriteString(key)
	b.WriteString("=")
	b.WriteString(escapeValue(value))
}

// escapeValue percent-encodes a value, spaces included ("%20", not "+").
func escapeValue(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}
