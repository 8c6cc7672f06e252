package beeper

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatsIterateThreePages(t *testing.T) {
	pages := map[string]string{
		"":   `{"items":[{"id":"c1"},{"id":"c2"}],"pagination":{"cursor":"p2","hasMore":true}}`,
		"p2": `{"items":[{"id":"c3"}],"pagination":{"cursor":"p3","hasMore":true}}`,
		"p3": `{"items":[{"id":"c4"},{"id":"c5"}],"pagination":{"hasMore":false}}`,
	}

	var mu sync.Mutex
	var cursors []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0/search-chats", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))

		cursor := r.URL.Query().Get("cursor")
		mu.Lock()
		cursors = append(cursors, cursor)
		mu.Unlock()
		w.Write([]byte(pages[cursor]))
	}, 0)

	pager := client.Chats.Iterate(ChatSearchParams{Limit: Ptr(10)})
	chats, err := pager.Collect(context.Background())
	require.NoError(t, err)

	var ids []string
	for _, c := range chats {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"c1", "c2", "c3", "c4", "c5"}, ids)
	assert.Equal(t, []string{"", "p2", "p3"}, cursors)
	assert.Equal(t, 3, pager.Pages())
	assert.True(t, pager.Done())
}

func TestMessagesIterateStartCursor(t *testing.T) {
	var seen []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0/search-messages", r.URL.Path)
		seen = append(seen, r.URL.Query().Get("cursor"))
		w.Write([]byte(`{"items":[{"id":"m1","sortKey":17}],"pagination":{"hasMore":false}}`))
	}, 0)

	msgs, err := client.Messages.Iterate(MessageSearchParams{Cursor: Ptr("resume")}).Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, []string{"resume"}, seen)

	n, ok := msgs[0].SortKey.Int()
	assert.True(t, ok)
	assert.Equal(t, int64(17), n)
}

func TestPagerTermination(t *testing.T) {
	tests := []struct {
		name  string
		pages []string
		want  int
	}{
		{
			name:  "no pagination block",
			pages: []string{`{"items":[1,2]}`},
			want:  1,
		},
		{
			name:  "has more without cursor",
			pages: []string{`{"items":[1],"pagination":{"hasMore":true}}`},
			want:  1,
		},
		{
			name:  "has more with empty cursor",
			pages: []string{`{"items":[1],"pagination":{"hasMore":true,"cursor":""}}`},
			want:  1,
		},
		{
			name: "repeated cursor",
			pages: []string{
				`{"items":[1],"pagination":{"hasMore":true,"cursor":"same"}}`,
				`{"items":[2],"pagination":{"hasMore":true,"cursor":"same"}}`,
			},
			want: 2,
		},
		{
			name: "legacy has_more",
			pages: []string{
				`{"items":[1],"pagination":{"has_more":true,"cursor":"b"}}`,
				`{"items":[2],"pagination":{"has_more":false}}`,
			},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetches := 0
			pager := NewPager(nil, func(ctx context.Context, cursor *string) (*Cursor[int], error) {
				require.Less(t, fetches, len(tt.pages), "pager fetched past the last page")
				var page Cursor[int]
				require.NoError(t, json.Unmarshal([]byte(tt.pages[fetches]), &page))
				fetches++
				return &page, nil
			})

			_, err := pager.Collect(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, fetches)
		})
	}
}

func TestPagerNext(t *testing.T) {
	pager := NewPager(nil, func(ctx context.Context, cursor *string) (*Cursor[string], error) {
		return &Cursor[string]{}, nil
	})

	items, err := pager.Next(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	items, err = pager.Next(context.Background())
	require.NoError(t, err)
	assert.Nil(t, items)
	assert.Equal(t, 1, pager.Pages())
}

func TestPagerError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	pager := NewPager(nil, func(ctx context.Context, cursor *string) (*Cursor[int], error) {
		calls++
		if calls == 2 {
			return nil, boom
		}
		return &Cursor[int]{Items: []int{calls}, Pagination: &Pagination{HasMore: true, Cursor: Ptr("next")}}, nil
	})

	items, err := pager.Collect(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int{1}, items)
	assert.False(t, pager.Done())
}

func TestPaginationUnmarshal(t *testing.T) {
	var p Pagination
	require.NoError(t, json.Unmarshal([]byte(`{"cursor":"x","limit":5,"direction":"before","hasMore":true,"has_more":false}`), &p))
	assert.True(t, p.HasMore)
	assert.Equal(t, "x", *p.Cursor)
	assert.Equal(t, 5, *p.Limit)
	assert.Equal(t, "before", *p.Direction)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"cursor":"x","limit":5,"direction":"before","hasMore":true}`, string(out))
}
