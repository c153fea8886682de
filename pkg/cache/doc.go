// Package cache keeps a single vehicle snapshot fresh according to a time-to-live policy.
//
// A [Cache] starts empty. The first read fetches a snapshot through the [Fetcher]; later reads are
// served from memory until the snapshot is older than the [Policy] TTL, at which point the next
// read refreshes it. The "realtime" policy refreshes on every read. A snapshot and its fetch time
// are always replaced together, so a reader never sees a snapshot paired with another fetch's time.
//
// Refreshes are serialized: readers that arrive while a refresh is in flight wait for it and then
// read the new snapshot instead of starting another request.
//
// A failed refresh keeps the previous snapshot. By default the error is returned to the reader;
// set [Cache.ServeStaleOnError] to serve the previous snapshot instead.
package cache
