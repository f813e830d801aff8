package iocache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/annofabcli/internal/contract"
	"github.com/huangsam/annofabcli/schema"
)

// responseCacheVersion invalidates entries written with an older layout.
const responseCacheVersion = 1

// DefaultResponseTTL is how long a cached response for mutable resources stays valid.
const DefaultResponseTTL = 10 * time.Minute

// CachedJSON returns the value stored under key when it is younger than ttl.
// Otherwise it calls fetch and stores the result. A ttl of zero never expires.
func CachedJSON[T any](store contract.CacheStore, key string, ttl time.Duration, fetch func() (T, error)) (T, error) {
	if store != nil {
		value, version, ts, err := store.Get(key)
		fresh := ttl == 0 || time.Since(time.Unix(ts, 0)) < ttl
		if err == nil && version == responseCacheVersion && fresh {
			var cached T
			if err := json.Unmarshal(value, &cached); err == nil {
				return cached, nil
			}
		}
	}

	result, err := fetch()
	if err != nil {
		return result, err
	}
	if store != nil {
		if b, err := json.Marshal(result); err == nil {
			if err := store.Set(key, b, responseCacheVersion, time.Now().Unix()); err != nil {
				contract.LogWarn("Failed to write response cache", err)
			}
		}
	}
	return result, nil
}

// invalidate marks key as expired.
func invalidate(store contract.CacheStore, key string) {
	if store == nil {
		return
	}
	if err := store.Set(key, []byte("null"), 0, 0); err != nil {
		contract.LogWarn("Failed to invalidate response cache", err)
	}
}

func specsKey(projectID, historyID string) string {
	if historyID == "" {
		historyID = "latest"
	}
	return fmt.Sprintf("specs:%s:%s", projectID, historyID)
}

func membersKey(projectID string) string {
	return "project_members:" + projectID
}

// CachingClient serves annotation specs and project members from the response
// cache. Updates through it drop the cached entries they make stale.
type CachingClient struct {
	contract.AnnofabClient
	store contract.CacheStore
	ttl   time.Duration

	// writeOnly skips cached reads but still invalidates on updates.
	writeOnly bool
}

var _ contract.AnnofabClient = &CachingClient{} // Compile-time check

// NewCachingClient wraps client. A nil store disables caching.
func NewCachingClient(client contract.AnnofabClient, store contract.CacheStore, ttl time.Duration) *CachingClient {
	return &CachingClient{AnnofabClient: client, store: store, ttl: ttl}
}

// NewInvalidatingClient wraps client for commands that change data: reads
// always go to the API, and updates drop the cached responses they affect.
func NewInvalidatingClient(client contract.AnnofabClient, store contract.CacheStore) *CachingClient {
	return &CachingClient{AnnofabClient: client, store: store, writeOnly: true}
}

// GetAnnotationSpecs caches historical specs forever and the latest specs for ttl.
func (c *CachingClient) GetAnnotationSpecs(ctx context.Context, projectID string, historyID string) (*schema.AnnotationSpecs, error) {
	if c.writeOnly {
		return c.AnnofabClient.GetAnnotationSpecs(ctx, projectID, historyID)
	}
	ttl := c.ttl
	if historyID != "" {
		ttl = 0
	}
	return CachedJSON(c.store, specsKey(projectID, historyID), ttl, func() (*schema.AnnotationSpecs, error) {
		return c.AnnofabClient.GetAnnotationSpecs(ctx, projectID, historyID)
	})
}

// PutAnnotationSpecs updates the specs and drops the cached latest specs.
// The entry is dropped even when the call fails, since the update may have
// been applied before the error.
func (c *CachingClient) PutAnnotationSpecs(ctx context.Context, projectID string, req schema.AnnotationSpecsRequest) (*schema.AnnotationSpecs, error) {
	defer invalidate(c.store, specsKey(projectID, ""))
	return c.AnnofabClient.PutAnnotationSpecs(ctx, projectID, req)
}

// GetProjectMembers caches the member list for ttl.
func (c *CachingClient) GetProjectMembers(ctx context.Context, projectID string) ([]schema.ProjectMember, error) {
	if c.writeOnly {
		return c.AnnofabClient.GetProjectMembers(ctx, projectID)
	}
	return CachedJSON(c.store, membersKey(projectID), c.ttl, func() ([]schema.ProjectMember, error) {
		return c.AnnofabClient.GetProjectMembers(ctx, projectID)
	})
}
