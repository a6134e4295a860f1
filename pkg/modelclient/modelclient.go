// Package modelclient uploads model payloads to OS2mo and LoRa. Objects are
// grouped by kind, split into chunks and submitted concurrently, with
// exponential-backoff retries on transient failures.
package modelclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	resty "resty.dev/v3"
)

// Defaults mirror the historical behavior of the integration tooling built
// on these clients.
const (
	DefaultChunkSize     = 100
	DefaultConcurrency   = 20
	DefaultReadyAttempts = 100
	DefaultReadyDelay    = time.Second

	retryCount       = 6 // seven attempts in total
	retryWaitTime    = time.Second
	retryMaxWaitTime = 32 * time.Second
)

// ErrUnknownKind is returned when an object's kind has no endpoint mapping.
var ErrUnknownKind = errors.New("unknown model kind")

// Model is implemented by every payload the clients can upload.
type Model interface {
	Kind() string
}

// Identified is implemented by models that carry their own UUID.
type Identified interface {
	UUID() uuid.UUID
}

// PathVarser is implemented by models whose endpoint path contains
// placeholders, e.g. /service/f/{facet_uuid}/.
type PathVarser interface {
	PathVars() map[string]string
}

// ProgressReporter receives upload progress, one group of same-kind
// objects at a time. Implementations need not be safe for concurrent use;
// the client serializes calls.
type ProgressReporter interface {
	Start(kind string, total int)
	Add(n int)
	Done()
}

type nopProgress struct{}

func (nopProgress) Start(string, int) {}
func (nopProgress) Add(int)           {}
func (nopProgress) Done()             {}

// Result is the service response for a single uploaded object. MO returns
// the created object's UUID; LoRa returns the full registration envelope.
type Result struct {
	Kind     string
	Response any
}

// UploadError describes a rejected object upload.
type UploadError struct {
	Kind        string
	UUID        uuid.UUID
	StatusCode  int
	Description string
}

func (e *UploadError) Error() string {
	msg := fmt.Sprintf("upload %s: status %d", e.Kind, e.StatusCode)
	if e.UUID != uuid.Nil {
		msg = fmt.Sprintf("upload %s %s: status %d", e.Kind, e.UUID, e.StatusCode)
	}
	if e.Description != "" {
		msg += ": " + e.Description
	}
	return msg
}

type healthcheck struct {
	subpath string
	key     string
}

// service maps models onto the endpoints of one backend (MO or LoRa).
type service interface {
	objectRequest(obj Model, edit bool) (method, path string, body any, err error)
	healthchecks() []healthcheck
}

type options struct {
	chunkSize     int
	concurrency   int
	readyAttempts int
	readyDelay    time.Duration
	force         bool
	logger        *slog.Logger
	reporter      ProgressReporter
}

// Option defines a functional option shared by the MO and LoRa clients.
type Option func(*options)

// WithChunkSize sets how many objects one worker submits sequentially.
func WithChunkSize(n int) Option {
	return func(o *options) {
		o.chunkSize = n
	}
}

// WithConcurrency bounds the number of chunks in flight.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// WithReadyAttempts sets the healthcheck attempt budget of WaitUntilReady.
func WithReadyAttempts(n int) Option {
	return func(o *options) {
		o.readyAttempts = n
	}
}

// WithReadyDelay sets the pause between healthcheck attempts.
func WithReadyDelay(d time.Duration) Option {
	return func(o *options) {
		o.readyDelay = d
	}
}

// WithForce bypasses MO's API validation (?force=1). Ignored by LoRa.
func WithForce(force bool) Option {
	return func(o *options) {
		o.force = force
	}
}

// WithLogger sets the structured logger used for upload diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithProgress sets the progress reporter, e.g. a terminal bar.
func WithProgress(r ProgressReporter) Option {
	return func(o *options) {
		o.reporter = r
	}
}

// client is the shared upload engine behind the MO and LoRa clients.
type client struct {
	rc      *resty.Client
	hc      *http.Client
	baseURL string
	svc     service
	options
}

func newClient(baseURL string, hc *http.Client, svc service, opts ...Option) *client {
	o := options{
		chunkSize:     DefaultChunkSize,
		concurrency:   DefaultConcurrency,
		readyAttempts: DefaultReadyAttempts,
		readyDelay:    DefaultReadyDelay,
		logger:        slog.New(slog.DiscardHandler),
		reporter:      nopProgress{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if hc == nil {
		hc = http.DefaultClient
	}

	base := strings.TrimRight(baseURL, "/")
	rc := resty.NewWithClient(hc).
		SetBaseURL(base).
		SetRetryCount(retryCount).
		SetRetryWaitTime(retryWaitTime).
		SetRetryMaxWaitTime(retryMaxWaitTime).
		// Uploads are POSTs and PUTs; retry them too, not just idempotent verbs.
		SetAllowNonIdempotentRetry(true).
		AddRetryConditions(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	return &client{
		rc:      rc,
		hc:      hc,
		baseURL: base,
		svc:     svc,
		options: o,
	}
}

// Close releases idle connections held by the underlying HTTP client.
func (c *client) Close() {
	c.hc.CloseIdleConnections()
}

// WaitUntilReady polls the service healthcheck endpoints until each one
// responds with its expected payload key, or the attempt budget runs out.
func (c *client) WaitUntilReady(ctx context.Context) error {
	for _, check := range c.svc.healthchecks() {
		if err := c.waitFor(ctx, check); err != nil {
			return err
		}
	}
	return nil
}

func (c *client) waitFor(ctx context.Context, check healthcheck) error {
	var lastErr error
	for attempt := 0; attempt < c.readyAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.readyDelay):
			}
		}

		lastErr = c.checkOnce(ctx, check)
		if lastErr == nil {
			return nil
		}
		c.logger.Debug("service not ready", "subpath", check.subpath, "err", lastErr)
	}
	return fmt.Errorf("service at %s%s not ready after %d attempts: %w",
		c.baseURL, check.subpath, c.readyAttempts, lastErr)
}

func (c *client) checkOnce(ctx context.Context, check healthcheck) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+check.subpath, nil)
	if err != nil {
		return err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthcheck status %d", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("healthcheck decode: %w", err)
	}
	if _, ok := body[check.key]; !ok {
		return fmt.Errorf("healthcheck response missing %q", check.key)
	}
	return nil
}

// upload groups objs by kind (preserving first-seen group order), chunks
// each group and submits chunks concurrently. It stops at the first failed
// object and returns the results collected so far.
func (c *client) upload(ctx context.Context, objs []Model, edit bool) ([]Result, error) {
	results := make([]Result, 0, len(objs))
	var mu sync.Mutex

	for _, grp := range groupByKind(objs) {
		c.logger.Info("uploading objects", "kind", grp.kind, "count", len(grp.objs), "edit", edit)
		c.reporter.Start(grp.kind, len(grp.objs))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(c.concurrency)
		for _, chunk := range chunks(grp.objs, c.chunkSize) {
			g.Go(func() error {
				for _, obj := range chunk {
					payload, err := c.uploadOne(gctx, obj, edit)
					if err != nil {
						return err
					}
					mu.Lock()
					results = append(results, Result{Kind: grp.kind, Response: payload})
					c.reporter.Add(1)
					mu.Unlock()
				}
				return nil
			})
		}
		err := g.Wait()
		c.reporter.Done()
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

func (c *client) uploadOne(ctx context.Context, obj Model, edit bool) (any, error) {
	method, path, body, err := c.svc.objectRequest(obj, edit)
	if err != nil {
		return nil, err
	}

	resp, err := c.rc.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	var payload any
	// The body may be empty or non-JSON on errors; keep whatever decodes.
	_ = json.Unmarshal(resp.Bytes(), &payload)

	if resp.IsError() {
		uerr := &UploadError{Kind: obj.Kind(), StatusCode: resp.StatusCode()}
		if id, ok := obj.(Identified); ok {
			uerr.UUID = id.UUID()
		}
		if m, ok := payload.(map[string]any); ok {
			if desc, ok := m["description"].(string); ok {
				uerr.Description = desc
			}
		}
		return nil, uerr
	}
	return payload, nil
}

type group struct {
	kind string
	objs []Model
}

func groupByKind(objs []Model) []group {
	var groups []group
	index := make(map[string]int)
	for _, obj := range objs {
		kind := obj.Kind()
		i, ok := index[kind]
		if !ok {
			i = len(groups)
			index[kind] = i
			groups = append(groups, group{kind: kind})
		}
		groups[i].objs = append(groups[i].objs, obj)
	}
	return groups
}

func chunks(objs []Model, size int) [][]Model {
	if size <= 0 {
		size = DefaultChunkSize
	}
	var out [][]Model
	for len(objs) > size {
		out = append(out, objs[:size])
		objs = objs[size:]
	}
	if len(objs) > 0 {
		out = append(out, objs)
	}
	return out
}

// expandPathVars substitutes {placeholder} segments from a PathVarser.
func expandPathVars(path string, obj Model) string {
	pv, ok := obj.(PathVarser)
	if !ok {
		return path
	}
	for key, val := range pv.PathVars() {
		path = strings.ReplaceAll(path, "{"+key+"}", val)
	}
	return path
}
