package resource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/identity/pkg/oauth1"
	"github.com/dmitrymomot/identity/pkg/session"
)

const maxReasonLen = 256

// Fetcher keeps session resource slots up to date using conditional GETs.
type Fetcher struct {
	client  oauth1.Client
	sources Sources
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time
	group   singleflight.Group
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLogger sets the logger that receives fetch failures.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithMetrics sets the outcome counter.
func WithMetrics(m *Metrics) Option {
	return func(f *Fetcher) {
		f.metrics = m
	}
}

// WithClock overrides the time source used for freshness checks.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) {
		if now != nil {
			f.now = now
		}
	}
}

// NewFetcher creates a Fetcher for the given sources.
func NewFetcher(client oauth1.Client, sources Sources, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:  client,
		sources: sources,
		logger:  slog.New(slog.DiscardHandler),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Keys returns the configured resource keys.
func (f *Fetcher) Keys() []string {
	keys := make([]string, 0, len(f.sources))
	for k := range f.sources {
		keys = append(keys, k)
	}
	return keys
}

// EnsureFresh revalidates the session slot for key unless it is still fresh.
// Remote failures are logged and recorded in the session; the only error
// returned is ErrUnknownSource.
func (f *Fetcher) EnsureFresh(ctx context.Context, sess *session.Session, key string) error {
	src, ok := f.sources[key]
	if !ok {
		return errors.Join(ErrUnknownSource, fmt.Errorf("key %q", key))
	}

	cached, _ := sess.Resource(key)
	if cached.Fresh(f.now()) {
		f.metrics.observe(key, outcomeFresh)
		return nil
	}

	token, ok := sess.GetAccessToken()
	if !ok {
		f.logger.ErrorContext(ctx, "resource fetch failed",
			slog.String("category", "transport"),
			slog.String("source", key),
			slog.Any("error", ErrNoAccessToken),
		)
		f.metrics.observe(key, outcomeNoToken)
		sess.SetResource(key, nil)
		return nil
	}

	// Concurrent requests of one session revalidate once and share the result.
	// The shared fetch outlives the request that started it.
	shared := context.WithoutCancel(ctx)
	v, _, _ := f.group.Do(sess.ID+"\x00"+key, func() (any, error) {
		return f.fetch(shared, key, src, cached, token), nil
	})
	entry, _ := v.(*session.Resource)
	sess.SetResource(key, entry)
	return nil
}

// fetch performs one conditional GET and returns the new slot value.
// A nil result clears the slot.
func (f *Fetcher) fetch(ctx context.Context, key string, src Source, cached *session.Resource, token session.AccessToken) *session.Resource {
	var etag string
	if cached != nil {
		etag = cached.ETag
	}

	resp, err := f.client.Get(ctx, src.RequestURL(token.Secret), src.Header(etag))
	if err != nil {
		f.logger.ErrorContext(ctx, "resource fetch failed",
			slog.String("category", "transport"),
			slog.String("source", key),
			slog.String("error_type", errorType(err)),
			slog.Any("error", err),
		)
		f.metrics.observe(key, outcomeTransport)
		return nil
	}

	outcome := Classify(resp.StatusCode, resp.Header, resp.Body)
	f.metrics.observe(key, outcome.Kind.String())

	switch outcome.Kind {
	case KindSuccess:
		expires, _ := parseExpires(resp.Header)
		return &session.Resource{
			Data:    encodeBody(outcome.Body),
			ETag:    resp.Header.Get("ETag"),
			Expires: expires,
			Status:  http.StatusOK,
		}

	case KindNotModified:
		next := &session.Resource{Status: http.StatusNotModified}
		if cached != nil {
			next.Data = cached.Data
			next.ETag = cached.ETag
			next.Expires = cached.Expires
		}
		if e := resp.Header.Get("ETag"); e != "" {
			next.ETag = e
		}
		if expires, ok := parseExpires(resp.Header); ok {
			next.Expires = expires
		}
		return next

	case KindUnauthorized:
		return session.UnauthorizedResource()

	case KindForbidden:
		f.logger.ErrorContext(ctx, "resource fetch forbidden",
			slog.String("category", "forbidden"),
			slog.String("source", key),
			slog.Int("code", outcome.Code),
			slog.String("reason", forbiddenReason(outcome.Body)),
		)
		return nil

	default:
		f.logger.ErrorContext(ctx, "resource fetch failed",
			slog.String("category", "unknown"),
			slog.String("source", key),
			slog.Int("code", outcome.Code),
			slog.String("error", outcome.Label()),
		)
		return nil
	}
}

// parseExpires converts the Expires header to epoch seconds.
// ok is false when the header is missing or not an HTTP date.
func parseExpires(h http.Header) (expires *int64, ok bool) {
	v := h.Get("Expires")
	if v == "" {
		return nil, false
	}
	t, err := http.ParseTime(v)
	if err != nil {
		return nil, false
	}
	unix := t.Unix()
	return &unix, true
}

// encodeBody keeps JSON bodies verbatim and stores anything else as a JSON string.
func encodeBody(body []byte) json.RawMessage {
	if len(body) == 0 {
		return nil
	}
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	b, _ := json.Marshal(string(body))
	return b
}

func forbiddenReason(body []byte) string {
	reason := strings.TrimSpace(string(body))
	if reason == "" {
		return http.StatusText(http.StatusForbidden)
	}
	if len(reason) > maxReasonLen {
		reason = reason[:maxReasonLen]
	}
	return reason
}

// errorType names the innermost error of a joined chain, e.g. "*url.Error".
func errorType(err error) string {
	for {
		j, ok := err.(interface{ Unwrap() []error })
		if !ok {
			break
		}
		errs := j.Unwrap()
		if len(errs) == 0 {
			break
		}
		err = errs[len(errs)-1]
	}
	return fmt.Sprintf("%T", err)
}
