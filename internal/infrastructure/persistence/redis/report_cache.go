package redis

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPORT CACHE
// Report aggregations scan the whole ledger, so their results are kept warm
// here. Any ledger write invalidates the whole namespace: reports are cheap
// to rebuild and a stale financial figure is worse than a cache miss.
// ══════════════════════════════════════════════════════════════════════════════

// Key prefixes for namespacing Redis keys.
const (
	// PrefixReport is the prefix for cached report aggregations.
	PrefixReport = "report:"

	// PrefixJob is the prefix for scheduler job locks.
	PrefixJob = "job:"
)

// TTLReportCache bounds staleness even if an invalidation is lost.
const TTLReportCache = 5 * time.Minute

// ReportCache caches report aggregations keyed by report name.
type ReportCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewReportCache creates a ReportCache over the shared cache client.
func NewReportCache(cache *Cache) *ReportCache {
	return &ReportCache{
		cache: cache,
		ttl:   TTLReportCache,
	}
}

// ReportKey generates a cache key for a named report.
func ReportKey(name string) string {
	return PrefixReport + name
}

// JobLockKey generates a lock key for a scheduler job.
func JobLockKey(jobName string) string {
	return PrefixJob + jobName + ":lock"
}

// Get loads a cached report into dest. Returns ErrCacheMiss when absent.
func (r *ReportCache) Get(ctx context.Context, name string, dest interface{}) error {
	return r.cache.Get(ctx, ReportKey(name), dest)
}

// Set stores a report result under its name.
func (r *ReportCache) Set(ctx context.Context, name string, value interface{}) error {
	return r.cache.Set(ctx, ReportKey(name), value, r.ttl)
}

// InvalidateAll drops every cached report. Called after any student or
// payment write.
func (r *ReportCache) InvalidateAll(ctx context.Context) error {
	return r.cache.DeleteByPattern(ctx, PrefixReport+"*")
}

// AcquireJobLock grabs a short-lived lock for a scheduler job run. Returns
// false when another instance holds it.
func (r *ReportCache) AcquireJobLock(ctx context.Context, jobName string, ttl time.Duration) (bool, error) {
	return r.cache.SetNX(ctx, JobLockKey(jobName), time.Now().UTC(), ttl)
}
