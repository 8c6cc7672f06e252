package beeper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQueryList(t *testing.T) {
	q := Query{}.List("ids", []string{"a", "b"})
	assert.Equal(t, Query{{Key: "ids[0]", Value: "a"}, {Key: "ids[1]", Value: "b"}}, q)

	assert.Empty(t, Query{}.List("ids", nil))
	assert.Empty(t, Query{}.List("ids", []string{}))
}

func TestQueryOptionalFields(t *testing.T) {
	q := Query{}.
		OptString("missing", nil).
		OptString("s", Ptr("hello")).
		OptBool("b", Ptr(false)).
		OptInt("n", Ptr(42)).
		OptBool("absent", nil).
		OptInt("none", nil).
		OptTime("never", nil)

	assert.Equal(t, Query{
		{Key: "s", Value: "hello"},
		{Key: "b", Value: "false"},
		{Key: "n", Value: "42"},
	}, q)
}

func TestQueryTimeIsUTC(t *testing.T) {
	zone := time.FixedZone("UTC+2", 2*60*60)
	ts := time.Date(2024, 3, 9, 14, 5, 6, 789_000_000, zone)

	q := Query{}.OptTime("dateAfter", &ts)
	assert.Equal(t, Query{{Key: "dateAfter", Value: "2024-03-09T12:05:06.789Z"}}, q)
}

func TestQueryEncode(t *testing.T) {
	tests := []struct {
		name string
		q    Query
		want string
	}{
		{
			name: "empty",
			q:    Query{},
			want: "",
		},
		{
			name: "order is preserved",
			q:    Query{}.Add("z", "1").Add("a", "2"),
			want: "z=1&a=2",
		},
		{
			name: "keys and values are escaped",
			q:    Query{}.List("accountIDs", []string{"a b"}).Add("query", "x&y=z"),
			want: "accountIDs%5B0%5D=a+b&query=x%26y%3Dz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.q.Encode())
		})
	}
}

func TestMessageSearchParamsEncodeQuery(t *testing.T) {
	after := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	params := MessageSearchParams{
		AccountIDs:   []string{"acc1"},
		ChatIDs:      []string{"c1", "c2"},
		DateAfter:    &after,
		IncludeMuted: Ptr(true),
		Limit:        Ptr(20),
		MediaTypes:   []string{"img"},
		Query:        Ptr("lunch"),
	}

	assert.Equal(t, Query{
		{Key: "accountIDs[0]", Value: "acc1"},
		{Key: "chatIDs[0]", Value: "c1"},
		{Key: "chatIDs[1]", Value: "c2"},
		{Key: "dateAfter", Value: "2025-01-01T00:00:00.000Z"},
		{Key: "includeMuted", Value: "true"},
		{Key: "limit", Value: "20"},
		{Key: "mediaTypes[0]", Value: "img"},
		{Key: "query", Value: "lunch"},
	}, params.EncodeQuery())
}

func TestEncodeQueryDoesNotMutateParams(t *testing.T) {
	params := ChatSearchParams{AccountIDs: []string{"a", "b"}, Limit: Ptr(5)}
	_ = params.EncodeQuery()

	assert.Equal(t, []string{"a", "b"}, params.AccountIDs)
	assert.Equal(t, 5, *params.Limit)
	assert.Nil(t, params.Cursor)
}
