package repository

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/loadboard/internal/ports"
)

func TestMemoryStore_Collection(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	t.Run("same name returns same collection", func(t *testing.T) {
		id, err := store.Collection("tasks").Insert(ctx, json.RawMessage(`{"retailer":"Acme"}`))
		require.NoError(t, err)

		doc, err := store.Collection("tasks").Get(ctx, id)
		require.NoError(t, err)
		assert.JSONEq(t, `{"retailer":"Acme"}`, string(doc.Body))
	})

	t.Run("collections are isolated", func(t *testing.T) {
		docs, err := store.Collection("other").Find(ctx)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("ping honours context", func(t *testing.T) {
		assert.NoError(t, store.Ping(ctx))

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, store.Ping(cancelled), context.Canceled)
	})
}

func TestMemoryCollection_FindMatches(t *testing.T) {
	coll := NewMemoryStore().Collection("tasks")
	ctx := context.Background()

	for _, body := range []string{
		`{"retailer":"Acme Foods","day":"Monday"}`,
		`{"retailer":"Globex","day":"Today's load"}`,
		`{"retailer":"acme hardware","day":"Friday","fileCount":3}`,
	} {
		_, err := coll.Insert(ctx, json.RawMessage(body))
		require.NoError(t, err)
	}

	tests := []struct {
		name    string
		matches []ports.Match
		want    []string
	}{
		{"no matches returns all in insertion order", nil, []string{"Acme Foods", "Globex", "acme hardware"}},
		{"case-insensitive substring", []ports.Match{{Field: "retailer", Substring: "ACME"}}, []string{"Acme Foods", "acme hardware"}},
		{"all matches must hold", []ports.Match{{Field: "retailer", Substring: "acme"}, {Field: "day", Substring: "fri"}}, []string{"acme hardware"}},
		{"regex metacharacters are literal", []ports.Match{{Field: "retailer", Substring: "a.me"}}, nil},
		{"missing field never matches", []ports.Match{{Field: "link", Substring: "x"}}, nil},
		{"non-string field never matches", []ports.Match{{Field: "fileCount", Substring: "3"}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := coll.Find(ctx, tt.matches...)
			require.NoError(t, err)

			var got []string
			for _, d := range docs {
				var v struct {
					Retailer string `json:"retailer"`
				}
				require.NoError(t, json.Unmarshal(d.Body, &v))
				got = append(got, v.Retailer)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMemoryCollection_MergeAndDelete(t *testing.T) {
	coll := NewMemoryStore().Collection("tasks")
	ctx := context.Background()

	id, err := coll.Insert(ctx, json.RawMessage(`{"retailer":"Acme","formats":{"xlsx":3,"csv":4}}`))
	require.NoError(t, err)

	t.Run("merge replaces top-level keys wholesale", func(t *testing.T) {
		ok, err := coll.Merge(ctx, id, json.RawMessage(`{"formats":{"mail":1},"completed":true}`))
		require.NoError(t, err)
		assert.True(t, ok)

		doc, err := coll.Get(ctx, id)
		require.NoError(t, err)
		assert.JSONEq(t, `{"retailer":"Acme","formats":{"mail":1},"completed":true}`, string(doc.Body))
	})

	t.Run("merge of unknown id reports no match", func(t *testing.T) {
		ok, err := coll.Merge(ctx, "missing", json.RawMessage(`{}`))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("delete is physical and not repeatable", func(t *testing.T) {
		ok, err := coll.Delete(ctx, id)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = coll.Delete(ctx, id)
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = coll.Get(ctx, id)
		assert.ErrorIs(t, err, ports.ErrDocumentNotFound)

		docs, err := coll.Find(ctx)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("invalid json is rejected", func(t *testing.T) {
		_, err := coll.Insert(ctx, json.RawMessage(`not json`))
		assert.Error(t, err)
	})
}
