package directory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"animal-registry/internal/domain/animals"
	"animal-registry/internal/domain/owners"
	"animal-registry/internal/platform/httpclient"
	"animal-registry/internal/platform/logger"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

var (
	ErrNotConfigured = errors.New("owners directory not configured")
	ErrUpstream      = fmt.Errorf("owners directory upstream: %w", animals.ErrIO)
)

const (
	DefaultCacheTTL = 10 * time.Minute
	lookupPath      = "/v1/users/by-username/"
)

// Config del directorio remoto de usuarios.
// BaseURL y APIKey normalmente vienen de config (directory.base_url / directory.api_key).
type Config struct {
	BaseURL string
	APIKey  string

	// Si está vacío se usa "X-Api-Key".
	APIKeyHeader string

	Timeout  time.Duration
	CacheTTL time.Duration
}

// Resolver implementa animals.OwnerResolver contra un directorio HTTP.
// Solo cachea aciertos: un username que no existe hoy puede existir mañana.
type Resolver struct {
	client *httpclient.Client
	cache  *gocache.Cache
	log    logger.Logger
}

var _ animals.OwnerResolver = (*Resolver)(nil)

func NewResolver(cfg Config, log logger.Logger) (*Resolver, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrNotConfigured
	}
	client, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), cfg.Timeout)
	if err != nil {
		return nil, err
	}

	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		client.Headers[h] = key
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if log == nil {
		log = logger.Nop()
	}

	return &Resolver{
		client: client,
		cache:  gocache.New(ttl, 2*ttl),
		log:    log.With(map[string]any{"component": "owners-directory"}),
	}, nil
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (r *Resolver) OwnerIDByUsername(ctx context.Context, username string) (uuid.UUID, error) {
	key := owners.NormalizeUsername(username)
	if key == "" {
		return uuid.Nil, owners.ErrInvalidInput
	}

	if v, ok := r.cache.Get(key); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id, nil
		}
	}

	var out userResponse
	err := r.client.DoJSON(ctx, http.MethodGet, lookupPath+url.PathEscape(key), nil, &out)
	if err != nil {
		if httpclient.StatusCode(err) == http.StatusNotFound {
			return uuid.Nil, owners.ErrNotFound
		}
		r.log.Warn("owner lookup failed", map[string]any{"username": key, "err": err})
		return uuid.Nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	id, err := uuid.Parse(strings.TrimSpace(out.ID))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id %q in response", ErrUpstream, out.ID)
	}

	r.cache.SetDefault(key, id)
	return id, nil
}
