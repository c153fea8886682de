package tessie

import (
	"bytes"
	"context"
	_ "embed" // Used to embed version for use with user agent
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/tessiemcp/tessie-mcp/internal/log"
	"github.com/tessiemcp/tessie-mcp/internal/metrics"
)

var (
	//go:embed version.txt
	libraryVersion string
)

const (
	DefaultBaseURL = "https://api.tessie.com"
	DefaultTimeout = 30 * time.Second
	// MaxRetries is the number of retries after the first attempt for rate-limited or timed-out
	// requests.
	MaxRetries = 3
	// MaxResponseLength bounds the size of a response body.
	MaxResponseLength = 10000000
)

// Version returns the library version embedded at build time.
func Version() string {
	return strings.TrimSpace(libraryVersion)
}

func buildUserAgent(app string) string {
	library := "tessie-mcp/" + Version()
	build, ok := debug.ReadBuildInfo()
	if !ok {
		return library
	}
	path := strings.Split(build.Path, "/")
	if len(path) == 0 {
		return library
	}

	if app == "" {
		app = path[len(path)-1]
		var version string
		if build.Main.Version != "(devel)" && build.Main.Version != "" {
			version = build.Main.Version
		} else {
			for _, info := range build.Settings {
				if info.Key == "vcs.revision" {
					if len(info.Value) > 8 {
						version = info.Value[0:8]
					}
					break
				}
			}
		}

		if version != "" {
			app = fmt.Sprintf("%s/%s", app, version)
		}
	}
	if app == "" {
		return library
	}
	return fmt.Sprintf("%s %s", library, app)
}

// Account performs authenticated requests against the Tessie API.
//
// An Account is safe for concurrent use. It holds no state between calls other than the bearer
// token, which is fixed at construction.
type Account struct {
	// The default UserAgent is derived from the build information, but can be overridden.
	UserAgent string
	BaseURL   string
	// Timeout bounds each individual attempt, not the whole retry sequence.
	Timeout    time.Duration
	MaxRetries int

	client *http.Client
	sleep  func(ctx context.Context, d time.Duration) error
	logger *log.Logger

	authHeader string
}

// New returns an Account that authenticates with token. Optional userAgent names the calling
// application; it is generated from build information if empty.
func New(token, userAgent string) (*Account, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}
	return &Account{
		UserAgent:  buildUserAgent(userAgent),
		BaseURL:    DefaultBaseURL,
		Timeout:    DefaultTimeout,
		MaxRetries: MaxRetries,
		client:     &http.Client{},
		sleep:      sleepWithContext,
		logger:     log.With("component", "tessie"),
		authHeader: "Bearer " + token,
	}, nil
}

func (a *Account) authorization() string {
	return a.authHeader
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// backoff returns the delay before retry number attempt (zero-based): 1s, 2s, 4s, ...
func backoff(attempt int) time.Duration {
	return time.Second << attempt
}

// Request performs one logical API operation and returns the decoded JSON object.
//
// The endpoint is a path template such as "/{vin}/battery"; "{vin}" is replaced with vin. Rate
// limited (429) and timed-out attempts are retried up to a.MaxRetries times with exponential
// backoff. HTTP 401 and 403 fail immediately with ErrAuthentication and any other non-2xx status
// fails immediately with an *UpstreamError.
//
// Numbers in the decoded object are json.Number values.
func (a *Account) Request(ctx context.Context, method, endpoint, vin string, params url.Values) (map[string]interface{}, error) {
	path := strings.ReplaceAll(endpoint, "{vin}", url.PathEscape(vin))
	target := strings.TrimSuffix(a.BaseURL, "/") + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	start := time.Now()
	defer func() {
		metrics.GatewayLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	for attempt := 0; ; attempt++ {
		a.logger.Debug("Making %s request to %s (attempt %d/%d)", method, strings.ReplaceAll(endpoint, "{vin}", SanitizeVIN(vin)), attempt+1, a.MaxRetries+1)
		status, body, err := a.do(ctx, method, target)

		var retryErr error
		switch {
		case err != nil && ctx.Err() != nil:
			metrics.GatewayRequests.WithLabelValues(endpoint, "error").Inc()
			return nil, ctx.Err()
		case err != nil && isTimeout(err):
			metrics.GatewayRequests.WithLabelValues(endpoint, "timeout").Inc()
			retryErr = ErrTimeout
		case err != nil:
			metrics.GatewayRequests.WithLabelValues(endpoint, "error").Inc()
			return nil, err
		default:
			metrics.GatewayRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
			a.logger.Debug("Response status: %d", status)
			switch {
			case status == http.StatusUnauthorized || status == http.StatusForbidden:
				return nil, fmt.Errorf("%w (HTTP %d)", ErrAuthentication, status)
			case status == http.StatusTooManyRequests:
				retryErr = ErrRateLimited
			case status < 200 || status > 299:
				return nil, &UpstreamError{StatusCode: status, Body: string(body)}
			default:
				return decodeObject(body)
			}
		}

		if attempt >= a.MaxRetries {
			if retryErr == ErrTimeout {
				return nil, fmt.Errorf("%w after %d retries", ErrTimeout, a.MaxRetries)
			}
			return nil, retryErr
		}
		wait := backoff(attempt)
		reason := "rate_limited"
		if retryErr == ErrTimeout {
			reason = "timeout"
		}
		metrics.GatewayRetries.WithLabelValues(reason).Inc()
		a.logger.Warning("%s. Waiting %s before retry...", retryErr, wait)
		if err := a.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

// do sends a single attempt. A non-nil error means no HTTP status was received.
func (a *Account) do(ctx context.Context, method, target string) (int, []byte, error) {
	attemptCtx := ctx
	if a.Timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}

	request, err := http.NewRequestWithContext(attemptCtx, method, target, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("error constructing request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", a.UserAgent)
	request.Header.Set("Authorization", a.authorization())

	response, err := a.client.Do(request)
	if err != nil {
		return 0, nil, &TransportError{Err: err}
	}
	defer response.Body.Close()

	reader := io.LimitedReader{R: response.Body, N: MaxResponseLength + 1}
	body, err := io.ReadAll(&reader)
	if err != nil {
		return 0, nil, &TransportError{Err: err}
	}
	if len(body) > MaxResponseLength {
		return 0, nil, ErrResponseTooLarge
	}
	return response.StatusCode, body, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func decodeObject(body []byte) (map[string]interface{}, error) {
	object := make(map[string]interface{})
	if len(bytes.TrimSpace(body)) == 0 {
		return object, nil
	}
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(&object); err != nil {
		return nil, fmt.Errorf("invalid JSON in API response: %w", err)
	}
	return object, nil
}

// Get sends a GET request to endpoint. See [Account.Request].
func (a *Account) Get(ctx context.Context, endpoint, vin string) (map[string]interface{}, error) {
	return a.Request(ctx, http.MethodGet, endpoint, vin, nil)
}

// Post sends a POST request to endpoint with params in the query string. See [Account.Request].
func (a *Account) Post(ctx context.Context, endpoint, vin string, params url.Values) (map[string]interface{}, error) {
	return a.Request(ctx, http.MethodPost, endpoint, vin, params)
}
