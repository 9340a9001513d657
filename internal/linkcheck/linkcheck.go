// Package linkcheck checks the URLs of saved places and reports the ones
// that no longer resolve.
package linkcheck

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nikbrunner/favs/internal/model"
)

// Status is the health of a place URL.
type Status int

const (
	Healthy     Status = iota // 2xx or 3xx response
	Dead                      // 404 or 410 Gone
	Unreachable               // timeout, DNS failure, connection refused, etc.
	Skipped                   // place has no URL
)

func (s Status) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case Dead:
		return "dead"
	case Unreachable:
		return "unreachable"
	case Skipped:
		return "skipped"
	}
	return "unknown"
}

// Result is the check outcome for one place.
type Result struct {
	Place      model.Place
	Status     Status
	StatusCode int    // 0 if no response
	Error      string // short reason for Unreachable
}

// ProgressFunc is called after each place is checked.
type ProgressFunc func(completed, total int)

// Params holds parameters for Check.
type Params struct {
	Concurrency int           // zero means 8
	Timeout     time.Duration // per request; zero means 10s
	// PrivateDomains turns 404s on these hosts (and subdomains) into
	// Unreachable, since they usually mean "login required".
	PrivateDomains []string
	OnProgress     ProgressFunc
	Client         *http.Client // optional
}

// Check requests the URL of every distinct place in favs. Results follow the
// order in which places first appear. Cancelling ctx stops pending checks;
// their results stay Unreachable.
func Check(ctx context.Context, favs []model.Favorite, p Params) []Result {
	places := distinctPlaces(favs)
	if len(places) == 0 {
		return nil
	}
	if p.Concurrency <= 0 {
		p.Concurrency = 8
	}
	if p.Timeout <= 0 {
		p.Timeout = 10 * time.Second
	}
	client := p.Client
	if client == nil {
		client = &http.Client{
			Timeout: p.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}
	private := make(map[string]bool, len(p.PrivateDomains))
	for _, d := range p.PrivateDomains {
		private[strings.ToLower(d)] = true
	}

	results := make([]Result, len(places))
	var (
		mu        sync.Mutex
		completed int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Concurrency)
	for i, place := range places {
		g.Go(func() error {
			results[i] = checkPlace(gctx, client, place, private)
			if p.OnProgress != nil {
				mu.Lock()
				completed++
				p.OnProgress(completed, len(places))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func distinctPlaces(favs []model.Favorite) []model.Place {
	seen := make(map[string]bool, len(favs))
	var out []model.Place
	for _, f := range favs {
		if seen[f.PlaceID] {
			continue
		}
		seen[f.PlaceID] = true
		out = append(out, f.Place)
	}
	return out
}

func checkPlace(ctx context.Context, client *http.Client, place model.Place, private map[string]bool) Result {
	result := Result{Place: place}
	if place.URL == "" {
		result.Status = Skipped
		return result
	}
	if err := ctx.Err(); err != nil {
		result.Status = Unreachable
		result.Error = normalizeError(err.Error())
		return result
	}

	// HEAD first; some servers only answer GET.
	resp, err := do(ctx, client, http.MethodHead, place.URL)
	if err != nil || resp.StatusCode == http.StatusMethodNotAllowed {
		if resp != nil {
			resp.Body.Close()
		}
		resp, err = do(ctx, client, http.MethodGet, place.URL)
		if err != nil {
			result.Status = Unreachable
			result.Error = normalizeError(err.Error())
			return result
		}
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		result.Status = Healthy
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		if isPrivate(place.URL, private) {
			result.Status = Unreachable
			result.Error = "Possibly private (auth required)"
		} else {
			result.Status = Dead
		}
	default:
		result.Status = Unreachable
		result.Error = http.StatusText(resp.StatusCode)
	}
	return result
}

func do(ctx context.Context, client *http.Client, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return client.Do(req)
}

// isPrivate matches the URL host and its parent domains against private.
func isPrivate(rawURL string, private map[string]bool) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	for domain := range private {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// normalizeError maps transport errors to short categories.
func normalizeError(errStr string) string {
	lower := strings.ToLower(errStr)
	switch {
	case strings.Contains(lower, "no such host"):
		return "DNS failure"
	case strings.Contains(lower, "context canceled"):
		return "Cancelled"
	case strings.Contains(lower, "context deadline exceeded"),
		strings.Contains(lower, "timeout"):
		return "Timeout"
	case strings.Contains(lower, "connection refused"):
		return "Connection refused"
	case strings.Contains(lower, "certificate"), strings.Contains(lower, "tls:"):
		return "TLS error"
	case strings.Contains(lower, "network is unreachable"):
		return "Network unreachable"
	default:
		return errStr
	}
}

// DeadPlaces returns the places whose URLs are gone.
func DeadPlaces(results []Result) []model.Place {
	var out []model.Place
	for _, r := range results {
		if r.Status == Dead {
			out = append(out, r.Place)
		}
	}
	return out
}
