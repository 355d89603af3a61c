package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"stash-pricer/core/items"
	"stash-pricer/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const wireJSON = `{
  "next_change_id": "101-202",
  "stashes": [
    {
      "id": "stash-1",
      "public": true,
      "accountName": "alice",
      "stash": "~price 3 chaos",
      "league": "Standard",
      "items": [
        {
          "id": "item-1",
          "name": "<<set:MS>><<set:M>><<set:S>>Doom Loop",
          "typeLine": "Iron Ring",
          "baseType": "Iron Ring",
          "frameType": 2,
          "note": "~b/o 1 divine",
          "properties": [
            {"name": "Quality", "values": [["+20%", 1]], "displayMode": 0},
            {"name": "Corrupted", "values": [], "displayMode": 0}
          ],
          "implicitMods": ["+2 to Strength"],
          "explicitMods": ["+22 to Strength", "+20 to maximum Life"]
        },
        {
          "id": "item-2",
          "typeLine": "Fireball",
          "frameType": 4,
          "properties": [{"name": "Level", "values": [["20 (Max)", 0]], "displayMode": 0}]
        }
      ]
    },
    {"id": "stash-2", "accountName": "bob", "stash": "gone", "league": "Standard", "items": []}
  ]
}`

func TestDecodePage_Wire(t *testing.T) {
	page, err := DecodePage(strings.NewReader(wireJSON))
	require.NoError(t, err)

	assert.Equal(t, "101-202", page.NextCursor)
	require.Len(t, page.Changes, 2)

	change := page.Changes[0]
	assert.Equal(t, "stash-1", change.ID)
	assert.Equal(t, "alice", change.Owner)
	assert.Equal(t, "~price 3 chaos", change.StashName)
	require.Len(t, change.Items, 2)

	ring := change.Items[0]
	assert.Equal(t, "Doom Loop", ring.Name)
	assert.Equal(t, items.RarityRare, ring.Rarity)
	assert.Equal(t, []string{"Quality: +20%"}, ring.Properties)
	assert.Equal(t, []string{"+2 to Strength"}, ring.Mods[items.ProvenanceImplicit])
	assert.Len(t, ring.Mods[items.ProvenanceExplicit], 2)

	gem := change.Items[1]
	assert.Equal(t, "Fireball", gem.BaseType)
	assert.Equal(t, []string{"Level: 20 (Max)"}, gem.Properties)

	assert.Empty(t, page.Changes[1].Items)
}

func TestDecodePage_Native(t *testing.T) {
	page, err := DecodePage(strings.NewReader(`{"next_cursor":"n","stash_changes":[{"id":"s","owner":"o","stash_name":"x","items":[]}]}`))
	require.NoError(t, err)
	assert.Equal(t, "n", page.NextCursor)
	require.Len(t, page.Changes, 1)
	assert.True(t, page.Changes[0].Addressable())
}

func TestHTTPFeed(t *testing.T) {
	var gotID, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.URL.Query().Get("id")
		gotUA = r.Header.Get("User-Agent")
		switch gotID {
		case "limited":
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, "slow down")
		case "101-202":
			fmt.Fprint(w, `{"next_change_id":"101-202","stashes":[]}`)
		default:
			fmt.Fprint(w, wireJSON)
		}
	}))
	defer srv.Close()

	feed := NewHTTPFeed(Config{Endpoint: srv.URL + "/public-stash-tabs", UserAgent: "test-agent"})
	ctx := context.Background()

	t.Run("Page", func(t *testing.T) {
		page, err := feed.Next(ctx, "100-200")
		require.NoError(t, err)
		assert.Equal(t, "100-200", gotID)
		assert.Equal(t, "test-agent", gotUA)
		assert.Equal(t, "101-202", page.NextCursor)
	})

	t.Run("StartOfFeed", func(t *testing.T) {
		_, err := feed.Next(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, gotID)
	})

	t.Run("CaughtUp", func(t *testing.T) {
		_, err := feed.Next(ctx, "101-202")
		assert.ErrorIs(t, err, ErrNoPage)
	})

	t.Run("RateLimited", func(t *testing.T) {
		_, err := feed.Next(ctx, "limited")
		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusTooManyRequests, se.Code)
		assert.Equal(t, "slow down", se.Body)
	})
}

func TestObjectFeed(t *testing.T) {
	ctx := context.Background()
	noSuchKey := minio.ErrorResponse{Code: "NoSuchKey"}

	t.Run("ByCursor", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("GetObject", ctx, "bucket", "feed/100-200.json", mock.Anything).
			Return(io.NopCloser(bytes.NewReader([]byte(wireJSON))), nil)

		page, err := NewObjectFeed(m, "bucket", "/feed/").Next(ctx, "100-200")
		require.NoError(t, err)
		assert.Equal(t, "101-202", page.NextCursor)
	})

	t.Run("FirstPage", func(t *testing.T) {
		m := new(mocks.Client)
		ch := make(chan minio.ObjectInfo, 3)
		ch <- minio.ObjectInfo{Key: "feed/200-300.json"}
		ch <- minio.ObjectInfo{Key: "feed/100-200.json"}
		ch <- minio.ObjectInfo{Key: "feed/README.txt"}
		close(ch)
		m.On("ListObjects", ctx, "bucket", minio.ListObjectsOptions{Prefix: "feed/"}).Return((<-chan minio.ObjectInfo)(ch))
		m.On("GetObject", ctx, "bucket", "feed/100-200.json", mock.Anything).
			Return(io.NopCloser(bytes.NewReader([]byte(wireJSON))), nil)

		page, err := NewObjectFeed(m, "bucket", "feed").Next(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, "101-202", page.NextCursor)
	})

	t.Run("EmptyPrefix", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("ListObjects", ctx, "bucket", mock.Anything).Return(nil)

		_, err := NewObjectFeed(m, "bucket", "feed").Next(ctx, "")
		assert.ErrorIs(t, err, ErrNoPage)
	})

	t.Run("NotYetPushed", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("GetObject", ctx, "bucket", "feed/101-202.json", mock.Anything).Return(nil, noSuchKey)

		_, err := NewObjectFeed(m, "bucket", "feed").Next(ctx, "101-202")
		assert.ErrorIs(t, err, ErrNoPage)
	})
}
