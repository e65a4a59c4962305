// Package blobgate is an authenticated, range-capable caching gateway in
// front of a tenant-scoped object store.
//
// Every response is keyed by resource, tenant and range before it enters
// the edge cache, so no tenant can ever be served another tenant's bytes,
// and no range request can ever be served the body of a different range.
package blobgate

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pquerna/cachecontrol/cacheobject"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/blobgate/blobgate/authz"
	"github.com/blobgate/blobgate/cache"
	"github.com/blobgate/blobgate/identity"
	byterange "github.com/blobgate/blobgate/pkg/byte-range"
	cachekey "github.com/blobgate/blobgate/pkg/cache-key"
	resourcekey "github.com/blobgate/blobgate/pkg/resource-key"
	serializer "github.com/blobgate/blobgate/pkg/response-serializer"
	tee "github.com/blobgate/blobgate/pkg/response-writer-tee"
	"github.com/blobgate/blobgate/storage"
)

// fileRoutePrefix is the URL prefix under which resources are served.
const fileRoutePrefix = "/file"

// Config assembles a Gateway from its collaborators.
type Config struct {
	// Cache is the edge cache backend.
	Cache cache.Provider
	// Store is the object store backend.
	Store storage.Store
	// Authenticator verifies inbound credentials.
	Authenticator identity.Authenticator
	// Namespace is the resource key prefix this gateway serves,
	// e.g. "analytics/".
	Namespace string
	// Limits bounds the byte ranges callers may request.
	// Zero fields fall back to the package defaults.
	Limits byterange.Limits
	// AllowedOrigins is the comma-separated CORS allow list.
	// Empty denies all cross-origin access.
	AllowedOrigins string
	// Freshness sets the Cache-Control of assembled responses.
	Freshness FreshnessPolicy
	// Logger to use. The global zerolog logger is used if nil.
	Logger *zerolog.Logger
	// Metrics to record into. A private registry is created if nil.
	Metrics *Metrics
}

// Gateway is the request orchestrator. It is stateless across requests;
// the only shared state is the cache and store collaborators, which are
// concurrency-safe by contract.
type Gateway struct {
	cache     cache.Provider
	store     storage.Store
	auth      identity.Authenticator
	keyer     cachekey.Keyer
	cors      CORSPolicy
	namespace string
	limits    byterange.Limits
	freshness FreshnessPolicy
	metrics   *Metrics
	router    chi.Router
	log       zerolog.Logger
}

// New initializes the gateway and its request router.
func New(config Config) *Gateway {
	var logger zerolog.Logger
	if config.Logger == nil {
		logger = zerolog.New(zerolog.NewConsoleWriter())
	} else {
		logger = *config.Logger
	}
	logger = logger.With().
		Str("namespace", config.Namespace).
		Logger()

	limits := config.Limits
	if limits.MaxRangeBytes == 0 {
		limits.MaxRangeBytes = DefaultMaxRangeBytes
	}
	if limits.MaxSuffixBytes == 0 {
		limits.MaxSuffixBytes = DefaultMaxSuffixBytes
	}

	metrics := config.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}

	g := &Gateway{
		cache:     config.Cache,
		store:     config.Store,
		auth:      config.Authenticator,
		keyer:     cachekey.NewKeyer(strings.TrimSuffix(config.Namespace, "/")),
		cors:      NewCORSPolicy(config.AllowedOrigins),
		namespace: config.Namespace,
		limits:    limits,
		freshness: config.Freshness,
		metrics:   metrics,
		log:       logger,
	}

	r := chi.NewRouter()
	r.Get("/health", g.handleHealth)
	r.Get(fileRoutePrefix+"/*", g.handleFile)
	r.Head(fileRoutePrefix+"/*", g.handleFile)
	r.Handle("/metrics", metrics.Handler())
	r.NotFound(g.handleNotFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		g.respondError(w, req, http.StatusMethodNotAllowed, "method not allowed")
	})
	g.router = r

	return g
}

// ServeHTTP implements the http.Handler interface.
// CORS preflight is answered for every path before routing.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		g.handlePreflight(w, r)
		return
	}
	g.router.ServeHTTP(w, r)
}

// handleFile runs the request lifecycle for a single resource fetch:
// resource key parse, authentication, range validation, key derivation,
// cache lookup, then on a miss authorization, storage fetch, response
// assembly and an asynchronous cache store.
func (g *Gateway) handleFile(w http.ResponseWriter, r *http.Request) {
	log := g.log.With().
		Str("reqId", uuid.NewString()).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Logger()

	g.cors.Apply(w.Header(), r.Header.Get("Origin"))

	rawKey, err := resourceKeyFromPath(r)
	if err != nil {
		log.Warn().Bool("security", true).Err(err).Msg("Undecodable resource key")
		g.respondError(w, r, http.StatusForbidden, msgAccessDenied)
		return
	}
	res, err := resourcekey.Parse(rawKey, g.namespace)
	if err != nil {
		// traversal attempts and syntax violations are security events,
		// rejected before any collaborator is consulted
		log.Warn().Bool("security", true).Err(err).Msg("Rejected resource key")
		g.respondError(w, r, http.StatusForbidden, msgAccessDenied)
		return
	}

	ident, err := g.auth.Authenticate(r)
	switch {
	case errors.Is(err, identity.ErrNoCredentials):
		g.respondError(w, r, http.StatusUnauthorized, msgAuthRequired)
		return
	case errors.Is(err, identity.ErrInvalidCredentials):
		g.respondError(w, r, http.StatusUnauthorized, msgInvalidCredentials)
		return
	case err != nil:
		log.Error().Err(err).Msg("Identity collaborator failure")
		g.respondError(w, r, http.StatusInternalServerError, msgAuthUnavailable)
		return
	}
	log = log.With().Str("tenant", ident.Subject).Logger()

	rng, err := byterange.Parse(r.Header.Get("Range"), g.limits)
	if err != nil {
		g.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	key := g.keyer.Key(r.Method, cachekey.CanonicalURL(fileRoutePrefix, res.String()), ident.Subject, rng.Header())

	if bts, ok, err := g.cache.Get(key); err != nil {
		// a broken cache degrades to a miss, it never fails the request
		log.Warn().Err(err).Msg("Cache lookup failed")
	} else if ok && g.replayStored(w, r, bts, log) {
		g.metrics.CacheHits.Inc()
		return
	}
	g.metrics.CacheMisses.Inc()

	decision := authz.Authorize(res, ident.Subject)
	if !decision.Allowed {
		g.metrics.AuthzDenials.Inc()
		log.Warn().Bool("security", true).Str("reason", decision.Reason).Msg("Access denied")
		g.respondError(w, r, http.StatusForbidden, msgAccessDenied)
		return
	}

	obj, err := g.fetch(r.Context(), r.Method, res.String(), rng)
	if errors.Is(err, storage.ErrNotFound) {
		g.respondError(w, r, http.StatusNotFound, msgNotFound)
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Storage fetch failed")
		g.respondError(w, r, http.StatusInternalServerError, msgStorageUnavailable)
		return
	}
	if obj.Body != nil {
		defer obj.Body.Close()
	}

	a := assemble(obj, r.Method == http.MethodHead)

	// cache status goes on the underlying writer only: it describes this
	// response, not the stored entry
	w.Header().Set("Cache-Status", "miss")
	rwtee := tee.NewResponseSaver(w)
	writeObjectHeaders(rwtee.Header(), obj, a, g.freshness)
	rwtee.WriteHeader(a.status)

	complete := true
	if a.bodyPresent {
		if _, err := io.Copy(rwtee, obj.Body); err != nil {
			// client gone or stream broken mid-transfer; the response is
			// already under way, so just skip caching the truncation
			log.Debug().Err(err).Msg("Body copy aborted")
			complete = false
		}
	}

	// fire and forget: the response returns before the cache write lands
	if complete {
		go g.storeResponse(key, rwtee, log)
	}

	g.metrics.RequestsTotal.WithLabelValues(r.Method, strconv.Itoa(a.status)).Inc()
	g.logRequest(r, a.status, false, log)
}

// replayStored serves a cached entry. It reports false if the entry is
// unusable, in which case the caller continues on the miss path.
func (g *Gateway) replayStored(w http.ResponseWriter, r *http.Request, bts []byte, log zerolog.Logger) bool {
	res, err := serializer.BytesToResponse(bts)
	if err != nil {
		log.Error().Err(err).Msg("Could not parse stored response")
		return false
	}
	defer res.Body.Close()

	copyHeader(w.Header(), res.Header)
	w.Header().Set("Cache-Status", "hit")
	w.WriteHeader(res.StatusCode)
	if r.Method != http.MethodHead {
		if _, err := io.Copy(w, res.Body); err != nil {
			log.Debug().Err(err).Msg("Could not write stored body to client")
		}
	}

	g.metrics.RequestsTotal.WithLabelValues(r.Method, strconv.Itoa(res.StatusCode)).Inc()
	g.logRequest(r, res.StatusCode, true, log)
	return true
}

// fetch dispatches to the store. HEAD requests stat the object instead of
// fetching a body: HEAD never carries partial semantics, so the range is
// not forwarded.
func (g *Gateway) fetch(ctx context.Context, method, key string, rng byterange.ByteRange) (*storage.Object, error) {
	timer := prometheus.NewTimer(g.metrics.FetchDuration)
	defer timer.ObserveDuration()
	if method == http.MethodHead {
		return g.store.Stat(ctx, key)
	}
	return g.store.Get(ctx, key, rng.Header())
}

// storeResponse writes a recorded response to the edge cache. It runs
// after the client response is complete; failures are logged and
// swallowed, never surfaced.
func (g *Gateway) storeResponse(key string, rw *tee.ResponseSaver, log zerolog.Logger) {
	ttl := freshnessLifetime(rw.Header())
	if ttl <= 0 {
		return
	}
	if err := g.cache.Put(key, time.Now().Add(ttl), rw.Response()); err != nil {
		log.Warn().Err(err).Msg("Cache store failed")
		return
	}
	log.Trace().Str("key", key).Dur("ttl", ttl).Msg("Stored response")
}

// freshnessLifetime extracts the max-age the assembler granted, which
// doubles as the edge cache entry lifetime so that the edge never serves
// longer than it promised the client.
func freshnessLifetime(h http.Header) time.Duration {
	directives, err := cacheobject.ParseResponseCacheControl(h.Get("Cache-Control"))
	if err != nil || directives.MaxAge < 0 {
		return 0
	}
	return time.Duration(directives.MaxAge) * time.Second
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	g.cors.Apply(w.Header(), r.Header.Get("Origin"))
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (g *Gateway) handlePreflight(w http.ResponseWriter, r *http.Request) {
	g.cors.ApplyPreflight(w.Header(), r.Header.Get("Origin"))
	w.WriteHeader(http.StatusNoContent)
}

func (g *Gateway) handleNotFound(w http.ResponseWriter, r *http.Request) {
	g.cors.Apply(w.Header(), r.Header.Get("Origin"))
	g.respondError(w, r, http.StatusNotFound, msgNotFound)
}

// respondError terminates the request with the JSON error envelope.
func (g *Gateway) respondError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeError(w, status, msg)
	g.metrics.RequestsTotal.WithLabelValues(r.Method, strconv.Itoa(status)).Inc()
}

// resourceKeyFromPath decodes the resource key from the request target.
// The escaped form is used so that encoded separators cannot smuggle path
// segments past the router.
func resourceKeyFromPath(r *http.Request) (string, error) {
	escaped := strings.TrimPrefix(r.URL.EscapedPath(), fileRoutePrefix+"/")
	return url.PathUnescape(escaped)
}

func (g *Gateway) logRequest(r *http.Request, status int, hit bool, log zerolog.Logger) {
	isHit := 0
	if hit {
		isHit = 1
	}
	log.Debug().
		Str("sourceIp", getRequestSourceIp(r)).
		Int("status", status).
		Int("hit", isHit).
		Msg("Sending response to client")
}

func getRequestSourceIp(r *http.Request) string {
	// RemoteAddr is in the format:
	// 1.2.3.4:10000 for ipv4
	// [1:2:3]:10000 for ipv6
	ipAndPort := r.RemoteAddr
	portSepIdx := strings.LastIndex(ipAndPort, ":")
	if portSepIdx < 0 {
		return ipAndPort
	}
	return ipAndPort[:portSepIdx]
}

func copyHeader(dst, src http.Header) {
	for k, vv := range src {
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
}
