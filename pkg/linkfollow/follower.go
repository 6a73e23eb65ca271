// Package linkfollow resolves short share links (maps.app.goo.gl, goo.gl)
// to the full URL they redirect to.
package linkfollow

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ggorockee/coffeemode/internal/logger"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const maxHops = 5

// Config for the Follower
type Config struct {
	Timeout    time.Duration // per hop
	CacheTTL   time.Duration
	HTTPClient *http.Client // redirects are never followed automatically
	UserAgent  string
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Timeout:   5 * time.Second,
		CacheTTL:  24 * time.Hour,
		UserAgent: "Mozilla/5.0 (compatible; coffeemode/1.0)",
	}
}

// Follower reads Location headers hop by hop. Resolved targets are memoised.
type Follower struct {
	client *http.Client
	cache  *cache.Cache
	cfg    Config
	log    *zap.SugaredLogger
}

func New(cfg Config) *Follower {
	defaults := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaults.CacheTTL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}

	client := &http.Client{}
	if cfg.HTTPClient != nil {
		copied := *cfg.HTTPClient
		client = &copied
	}
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &Follower{
		client: client,
		cache:  cache.New(cfg.CacheTTL, cfg.CacheTTL*2),
		cfg:    cfg,
		log:    logger.GetLogger("linkfollow"),
	}
}

// Resolve returns the final redirect target of rawURL. It never fails:
// without any redirect the input is returned unchanged.
func (f *Follower) Resolve(ctx context.Context, rawURL string) string {
	if cached, found := f.cache.Get(rawURL); found {
		if resolved, ok := cached.(string); ok {
			return resolved
		}
	}

	current := rawURL
	for hop := 0; hop < maxHops; hop++ {
		next, ok := f.nextHop(ctx, current)
		if !ok || next == current {
			break
		}
		current = next
	}

	if current != rawURL {
		f.cache.Set(rawURL, current, cache.DefaultExpiration)
	}
	f.log.Debugw("link resolved", "url", rawURL, "resolved", current)
	return current
}

// nextHop tries a HEAD request first and falls back to GET when the server
// sends no Location header for it.
func (f *Follower) nextHop(ctx context.Context, current string) (string, bool) {
	for _, method := range []string{http.MethodHead, http.MethodGet} {
		location, err := f.location(ctx, method, current)
		if err != nil {
			f.log.Debugw("redirect lookup failed", "method", method, "url", current, "error", err)
			continue
		}
		if location == "" {
			continue
		}
		next, err := resolveReference(current, location)
		if err != nil {
			f.log.Debugw("invalid redirect location", "url", current, "location", location, "error", err)
			return "", false
		}
		return next, true
	}
	return "", false
}

func (f *Follower) location(ctx context.Context, method, target string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	return resp.Header.Get("Location"), nil
}

func resolveReference(base, location string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(location)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(ref).String(), nil
}
