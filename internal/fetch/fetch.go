// Package fetch télécharge des ressources HTTP en mémoire (pistes json3) et envoie
// les extraits audio à la reconnaissance vocale, avec limite de débit et relance
// sur les erreurs transitoires.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultTimeout   = 15 * time.Second
	DefaultMaxBytes  = 10_000_000
	DefaultUserAgent = "clipscribe/1.0"
)

// Erreurs exportées
var (
	ErrInvalidURL = errors.New("invalid url")
	ErrStatus     = errors.New("unexpected HTTP status")
	ErrTooLarge   = errors.New("response body too large")
)

// Client regroupe le client HTTP, le limiteur et la politique de relance.
// Sûr pour un usage concurrent.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	retry     RetryConfig
	timeout   time.Duration
	maxBytes  int64
	userAgent string
}

type Option func(*Client)

// WithHTTPClient remplace le client HTTP (tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRate limite à rps requêtes par seconde ; rps <= 0 désactive la limite.
func WithRate(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

func WithRetry(rc RetryConfig) Option {
	return func(c *Client) { c.retry = rc }
}

// WithTimeout fixe le timeout par tentative ; <= 0 garde DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxBytes fixe la taille maximale d'une réponse ; <= 0 garde DefaultMaxBytes.
func WithMaxBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBytes = n
		}
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{},
		limiter:   rate.NewLimiter(rate.Inf, 1),
		retry:     DefaultRetryConfig,
		timeout:   DefaultTimeout,
		maxBytes:  DefaultMaxBytes,
		userAgent: DefaultUserAgent,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Bytes télécharge rawURL et retourne le corps complet.
// Les statuts 429/5xx et les erreurs réseau sont relancés selon RetryConfig.
func (c *Client) Bytes(ctx context.Context, rawURL string) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	// valider l'URL tôt
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, fmt.Errorf("fetch: %w %q: %v", ErrInvalidURL, rawURL, err)
	}

	return c.do(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	})
}

// Post envoie body à rawURL et retourne le corps de la réponse.
// body est renvoyé tel quel à chaque relance ; header complète les en-têtes.
func (c *Client) Post(ctx context.Context, rawURL, contentType string, body []byte, header http.Header) ([]byte, error) {
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, fmt.Errorf("fetch: %w %q: %v", ErrInvalidURL, rawURL, err)
	}

	return c.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		req.Header.Set("Content-Type", contentType)
		return req, nil
	})
}

// do applique limite de débit et relances autour de once.
func (c *Client) do(ctx context.Context, newReq func(context.Context) (*http.Request, error)) ([]byte, error) {
	return RetryDo(ctx, c.retry, func() ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("fetch: rate limiter: %w", err)
		}
		return c.once(ctx, newReq)
	})
}

// once effectue une seule tentative.
func (c *Client) once(ctx context.Context, newReq func(context.Context) (*http.Request, error)) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := newReq(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch: new request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: request failed: %w", err)
	}
	defer resp.Body.Close()
	slog.Debug("fetch", slog.String("host", req.URL.Host), slog.Int("status", resp.StatusCode), slog.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{code: resp.StatusCode, status: resp.Status}
	}

	// si Content-Length connu et supérieur à maxBytes -> échouer vite
	if resp.ContentLength > 0 && resp.ContentLength > c.maxBytes {
		return nil, fmt.Errorf("fetch: %w: content-length %d > %d", ErrTooLarge, resp.ContentLength, c.maxBytes)
	}

	r := io.LimitReader(resp.Body, c.maxBytes+1) // +1 pour détecter dépassement
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("fetch: read body: %w", err)
	}
	if int64(len(data)) > c.maxBytes {
		return nil, fmt.Errorf("fetch: %w (>%d bytes)", ErrTooLarge, c.maxBytes)
	}
	return data, nil
}

// statusError porte un statut HTTP non 2xx ; errors.Is(err, ErrStatus) est vrai.
type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("fetch: unexpected http status %s", e.status)
}

func (e *statusError) Is(target error) bool {
	return target == ErrStatus
}

// StatusCode extrait le code HTTP d'une erreur retournée par Bytes ou Post (0 sinon).
func StatusCode(err error) int {
	var se *statusError
	if errors.As(err, &se) {
		return se.code
	}
	return 0
}
