// Package tessie is a client for the Tessie vehicle-data API.
//
// An [Account] wraps every call in a bounded retry loop: rate-limited (HTTP 429) and timed-out
// attempts are retried three times with 1s, 2s and 4s delays, authentication failures (HTTP 401 and
// 403) fail immediately with [ErrAuthentication], and any other non-2xx response fails immediately
// with an [*UpstreamError] carrying the status and body. Errors implement [Error], so callers can
// use [Temporary] and [MayHaveSucceeded] to decide how to report them.
//
// Responses are decoded into generic JSON objects with numbers kept as [encoding/json.Number], so
// that values are rendered exactly as the API sent them.
package tessie
