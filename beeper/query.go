package beeper

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// TimeFormat is the fixed UTC layout used for timestamps in query strings.
const TimeFormat = "2006-01-02T15:04:05.000Z"

// QueryPair is a single unescaped key/value pair
type QueryPair struct {
	Key   string
	Value string
}

// Query is an ordered list of query pairs. Order follows the order in which
// fields were added so that encoded URLs are deterministic.
type Query []QueryPair

// QueryEncoder is implemented by parameter records sent as query strings
type QueryEncoder interface {
	EncodeQuery() Query
}

// Add appends a pair unconditionally
func (q Query) Add(key, value string) Query {
	return append(q, QueryPair{Key: key, Value: value})
}

// OptString appends key when value is present
func (q Query) OptString(key string, value *string) Query {
	if value == nil {
		return q
	}
	return q.Add(key, *value)
}

// OptBool appends key as "true" or "false" when value is present
func (q Query) OptBool(key string, value *bool) Query {
	if value == nil {
		return q
	}
	return q.Add(key, strconv.FormatBool(*value))
}

// OptInt appends key in base 10 when value is present
func (q Query) OptInt(key string, value *int) Query {
	if value == nil {
		return q
	}
	return q.Add(key, strconv.Itoa(*value))
}

// OptTime appends key in TimeFormat (UTC) when value is present
func (q Query) OptTime(key string, value *time.Time) Query {
	if value == nil {
		return q
	}
	return q.Add(key, value.UTC().Format(TimeFormat))
}

// List expands values into key[0], key[1], ... An empty list adds nothing.
func (q Query) List(key string, values []string) Query {
	for i, v := range values {
		q = q.Add(key+"["+strconv.Itoa(i)+"]", v)
	}
	return q
}

// Encode escapes keys and values and joins them in order
func (q Query) Encode() string {
	if len(q) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, pair := range q {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(pair.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(pair.Value))
	}
	return sb.String()
}

// Ptr returns a pointer to v. Handy for optional parameter fields.
func Ptr[T any](v T) *T {
	return &v
}
