package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"

	"stash-pricer/core/storage"

	"github.com/minio/minio-go/v7"
)

// ErrNoPage is returned by a Feed that has nothing past the cursor yet.
var ErrNoPage = errors.New("no new feed page")

// Feed yields the page that starts at cursor.
type Feed interface {
	Next(ctx context.Context, cursor string) (*Page, error)
}

// DecodePage reads a page in either the public stash API shape
// ({next_change_id, stashes}) or the native shape ({next_cursor, stash_changes}).
func DecodePage(r io.Reader) (*Page, error) {
	var doc struct {
		wirePage
		NextCursor string        `json:"next_cursor"`
		Changes    []StashChange `json:"stash_changes"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode feed page: %w", err)
	}
	if doc.NextChangeID != "" || len(doc.Stashes) > 0 {
		return doc.wirePage.toPage(), nil
	}
	return &Page{NextCursor: doc.NextCursor, Changes: doc.Changes}, nil
}

// HTTPFeed polls the public stash API.
type HTTPFeed struct {
	endpoint  string
	userAgent string
	client    *http.Client
}

// NewHTTPFeed creates a feed for cfg.Endpoint.
func NewHTTPFeed(cfg Config) *HTTPFeed {
	return &HTTPFeed{
		endpoint:  cfg.Endpoint,
		userAgent: cfg.UserAgent,
		client:    &http.Client{Timeout: cfg.RequestTimeout},
	}
}

// StatusError is returned for non-200 feed responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("feed returned %d: %s", e.Code, e.Body)
}

// Next implements Feed. A page that neither advances the cursor nor carries
// changes is reported as ErrNoPage.
func (f *HTTPFeed) Next(ctx context.Context, cursor string) (*Page, error) {
	u, err := url.Parse(f.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse feed endpoint: %w", err)
	}
	if cursor != "" {
		q := u.Query()
		q.Set("id", cursor)
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	page, err := DecodePage(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(page.Changes) == 0 && (page.NextCursor == "" || page.NextCursor == cursor) {
		return nil, ErrNoPage
	}
	return page, nil
}

// ObjectFeed reads pages pushed to object storage as <prefix>/<cursor>.json.
// Each page's next cursor names the following object.
type ObjectFeed struct {
	client storage.Client
	bucket string
	prefix string
}

// NewObjectFeed creates a feed over bucket/prefix.
func NewObjectFeed(client storage.Client, bucket, prefix string) *ObjectFeed {
	return &ObjectFeed{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// ObjectName returns the object holding the page that starts at cursor.
func (f *ObjectFeed) ObjectName(cursor string) string {
	return path.Join(f.prefix, cursor+".json")
}

// Next implements Feed. With an empty cursor the lexically first page in the
// prefix is read.
func (f *ObjectFeed) Next(ctx context.Context, cursor string) (*Page, error) {
	if cursor == "" {
		first, err := f.first(ctx)
		if err != nil {
			return nil, err
		}
		cursor = first
	}

	obj, err := f.client.GetObject(ctx, f.bucket, f.ObjectName(cursor), minio.GetObjectOptions{})
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, ErrNoPage
		}
		return nil, fmt.Errorf("open feed object: %w", err)
	}
	defer obj.Close()

	page, err := DecodePage(obj)
	if err != nil {
		if storage.IsNotFound(errors.Unwrap(err)) {
			return nil, ErrNoPage
		}
		return nil, err
	}
	return page, nil
}

func (f *ObjectFeed) first(ctx context.Context) (string, error) {
	var names []string
	for obj := range f.client.ListObjects(ctx, f.bucket, minio.ListObjectsOptions{Prefix: f.prefix + "/"}) {
		if obj.Err != nil {
			return "", fmt.Errorf("list feed objects: %w", obj.Err)
		}
		if strings.HasSuffix(obj.Key, ".json") {
			names = append(names, strings.TrimSuffix(path.Base(obj.Key), ".json"))
		}
	}
	if len(names) == 0 {
		return "", ErrNoPage
	}
	sort.Strings(names)
	return names[0], nil
}
