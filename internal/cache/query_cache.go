// Package cache はレンタルAPIの読み取り結果を保持するクエリキャッシュを提供する。
//
// 同一キーへの同時リクエストは単一のフェッチに合流し、結果を全員で共有する。
// 変更操作の成功後はリソース種別単位で無効化され、以降の読み取りは再フェッチになる。
// TTLによる自動失効は行わない。
package cache

import (
	"context"
	"sync"

	"github.com/travelguru/rentgate/internal/metrics"
)

// FetchFunc はキャッシュミス時に実行されるフェッチ処理。
type FetchFunc func(ctx context.Context) (interface{}, error)

// cacheKey はリソース種別とクエリキーの組。
type cacheKey struct {
	resource string
	key      string
}

// inflightCall は実行中のフェッチを表す。合流したリクエストはdoneを待つ。
type inflightCall struct {
	done chan struct{}
	val  interface{}
	err  error
}

// QueryCache はリソース種別単位で無効化できる読み取りキャッシュ。
type QueryCache struct {
	mu          sync.Mutex
	entries     map[cacheKey]interface{}
	inflight    map[cacheKey]*inflightCall
	generations map[string]uint64
	metrics     metrics.MetricsCollector
}

// NewQueryCache はQueryCacheを生成する。collectorはnilでもよい。
func NewQueryCache(collector metrics.MetricsCollector) *QueryCache {
	return &QueryCache{
		entries:     make(map[cacheKey]interface{}),
		inflight:    make(map[cacheKey]*inflightCall),
		generations: make(map[string]uint64),
		metrics:     collector,
	}
}

// Do はキャッシュ済みの値を返すか、fetchを実行して結果をキャッシュする。
//
// 同一キーのフェッチが実行中の場合、新たなフェッチは行わずその結果を待つ。
// フェッチ中にInvalidateが呼ばれた場合、結果は待機中の呼び出し元へは返すが
// キャッシュには保存しない（次のDoが再フェッチする）。
// フェッチ失敗時は何も保存せず、エラーを全呼び出し元へ返す。
func (c *QueryCache) Do(ctx context.Context, resource, key string, fetch FetchFunc) (interface{}, error) {
	ck := cacheKey{resource: resource, key: key}

	c.mu.Lock()
	if val, ok := c.entries[ck]; ok {
		c.mu.Unlock()
		if c.metrics != nil {
			c.metrics.RecordCacheHit(resource)
		}
		return val, nil
	}

	if call, ok := c.inflight[ck]; ok {
		c.mu.Unlock()
		select {
		case <-call.done:
			return call.val, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	call := &inflightCall{done: make(chan struct{})}
	c.inflight[ck] = call
	generation := c.generations[resource]
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.RecordCacheMiss(resource)
	}

	val, err := fetch(ctx)

	c.mu.Lock()
	delete(c.inflight, ck)
	if err == nil && c.generations[resource] == generation {
		c.entries[ck] = val
	}
	c.mu.Unlock()

	call.val = val
	call.err = err
	close(call.done)

	return val, err
}

// Invalidate は指定リソース種別のキャッシュ済みエントリをすべて破棄する。
// 実行中のフェッチ結果は保存対象から外れる。
func (c *QueryCache) Invalidate(resource string) {
	c.mu.Lock()
	c.generations[resource]++
	for ck := range c.entries {
		if ck.resource == resource {
			delete(c.entries, ck)
		}
	}
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.RecordCacheInvalidation(resource)
	}
}
