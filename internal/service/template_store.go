package service

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"time"

	apperrors "github.com/jrreynao/widgetamericanrent/internal/errors"
	"github.com/jrreynao/widgetamericanrent/internal/logger"
	"github.com/jrreynao/widgetamericanrent/internal/metrics"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	ClienteTemplate = "correo_cliente.html"
	AdminTemplate   = "correo_admin.html"

	maxTemplateBytes = 1 << 20
)

// TemplateResolver yields the customer and admin templates for one request.
type TemplateResolver interface {
	Resolve(ctx context.Context, inlineCliente, inlineAdmin string) (cliente, admin string, err error)
}

type TemplateStoreConfig struct {
	// BaseURL is FRONTEND_BASE; empty means use the embedded copies.
	BaseURL  string
	CacheTTL time.Duration
	Client   *http.Client
	Embedded fs.FS
}

// TemplateStore resolves templates: inline HTML first, then the remote copy
// under <base>/email_templates/ (cached), then the embedded files.
type TemplateStore struct {
	baseURL  string
	client   *http.Client
	cache    *cache.Cache
	embedded fs.FS
	log      *zap.Logger
}

func NewTemplateStore(cfg TemplateStoreConfig) *TemplateStore {
	s := &TemplateStore{
		baseURL:  cfg.BaseURL,
		client:   cfg.Client,
		embedded: cfg.Embedded,
		log:      logger.Named("templates"),
	}
	if s.client == nil {
		s.client = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.CacheTTL > 0 {
		s.cache = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	return s
}

// Remote reports whether templates come from a remote base URL.
func (s *TemplateStore) Remote() bool { return s.baseURL != "" }

// CacheEnabled reports whether remote fetches are cached.
func (s *TemplateStore) CacheEnabled() bool { return s.cache != nil }

func (s *TemplateStore) URL(name string) string {
	return s.baseURL + "/email_templates/" + name
}

// Resolve fetches both templates concurrently. Either failure aborts.
func (s *TemplateStore) Resolve(ctx context.Context, inlineCliente, inlineAdmin string) (string, string, error) {
	var cliente, admin string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cliente, err = s.get(gctx, ClienteTemplate, inlineCliente)
		return err
	})
	g.Go(func() error {
		var err error
		admin, err = s.get(gctx, AdminTemplate, inlineAdmin)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", "", err
	}
	return cliente, admin, nil
}

// Get returns one named template without inline override.
func (s *TemplateStore) Get(ctx context.Context, name string) (string, error) {
	return s.get(ctx, name, "")
}

func (s *TemplateStore) get(ctx context.Context, name, inline string) (string, error) {
	if inline != "" {
		metrics.TemplateFetchesTotal.WithLabelValues("inline", "ok").Inc()
		return inline, nil
	}

	if !s.Remote() {
		return s.readEmbedded(name)
	}

	if s.cache != nil {
		if v, ok := s.cache.Get(name); ok {
			metrics.TemplateFetchesTotal.WithLabelValues("cache", "ok").Inc()
			return v.(string), nil
		}
	}

	body, err := s.fetch(ctx, name)
	if err != nil {
		return "", err
	}
	if s.cache != nil {
		s.cache.Set(name, body, cache.DefaultExpiration)
	}
	return body, nil
}

// fetch does a single GET, no retries.
func (s *TemplateStore) fetch(ctx context.Context, name string) (string, error) {
	url := s.URL(name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &apperrors.TemplateRetrievalError{URL: url, Err: err}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		metrics.TemplateFetchesTotal.WithLabelValues("remote", "error").Inc()
		s.log.Warn("template fetch failed", zap.String("url", url), zap.Error(err))
		return "", &apperrors.TemplateRetrievalError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.TemplateFetchesTotal.WithLabelValues("remote", "error").Inc()
		s.log.Warn("template fetch non-2xx", zap.String("url", url), zap.Int("status", resp.StatusCode))
		return "", &apperrors.TemplateRetrievalError{URL: url, Status: resp.StatusCode}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxTemplateBytes))
	if err != nil {
		metrics.TemplateFetchesTotal.WithLabelValues("remote", "error").Inc()
		return "", &apperrors.TemplateRetrievalError{URL: url, Status: resp.StatusCode, Err: err}
	}

	metrics.TemplateFetchesTotal.WithLabelValues("remote", "ok").Inc()
	return string(raw), nil
}

func (s *TemplateStore) readEmbedded(name string) (string, error) {
	if s.embedded == nil {
		return "", &apperrors.TemplateRetrievalError{URL: "embedded:" + name, Err: fs.ErrNotExist}
	}
	raw, err := fs.ReadFile(s.embedded, name)
	if err != nil {
		metrics.TemplateFetchesTotal.WithLabelValues("embedded", "error").Inc()
		return "", &apperrors.TemplateRetrievalError{URL: "embedded:" + name, Err: err}
	}
	metrics.TemplateFetchesTotal.WithLabelValues("embedded", "ok").Inc()
	return string(raw), nil
}

// Warm refetches both remote templates and replaces the cached copies. A
// failed fetch keeps whatever is cached.
func (s *TemplateStore) Warm(ctx context.Context) error {
	if !s.Remote() || s.cache == nil {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range []string{ClienteTemplate, AdminTemplate} {
		name := name
		g.Go(func() error {
			body, err := s.fetch(gctx, name)
			if err != nil {
				return fmt.Errorf("warm %s: %w", name, err)
			}
			s.cache.Set(name, body, cache.DefaultExpiration)
			return nil
		})
	}
	return g.Wait()
}
