// Package sui adapts a Sui full node's JSON-RPC surface to the ledger ports.
package sui

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"certledger/internal/ledger"
	"certledger/internal/ledger/metrics"
	"certledger/pkg/platform/circuit"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultRate      = 20
	defaultBurst     = 40
	defaultGasBudget = 10_000_000
)

// Config holds the node endpoint and client limits.
type Config struct {
	URL           string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	GasBudget     uint64
}

// Client is a JSON-RPC client for a Sui full node. It implements
// ledger.Reader and ledger.Executor.
type Client struct {
	url       string
	http      *resty.Client
	timeout   time.Duration
	gasBudget uint64
	limiter   *rate.Limiter
	breaker   *circuit.Breaker
	tracer    trace.Tracer
	metrics   *metrics.Metrics
	logger    *slog.Logger
	nextID    atomic.Uint64
}

// Option configures the Client.
type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithBreaker replaces the default circuit breaker.
func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		if b != nil {
			c.breaker = b
		}
	}
}

// WithTracer injects a tracer instead of the global provider's.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithHTTPClient replaces the underlying transport, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = resty.NewWithClient(hc)
		}
	}
}

// New creates a node client.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("sui rpc url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = defaultRate
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}
	if cfg.GasBudget == 0 {
		cfg.GasBudget = defaultGasBudget
	}

	c := &Client{
		url:       cfg.URL,
		http:      resty.New(),
		timeout:   cfg.Timeout,
		gasBudget: cfg.GasBudget,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		breaker:   circuit.New("sui-rpc"),
		tracer:    otel.Tracer("certledger/ledger/sui"),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.SetHeader("Content-Type", "application/json").SetHeader("Accept", "application/json")
	return c, nil
}

// GetOwnedObjects returns one page of objects owned by owner, filtered by
// struct type, with type and content decoded.
func (c *Client) GetOwnedObjects(ctx context.Context, owner string, query ledger.OwnedQuery) (*ledger.Page, error) {
	limit := query.Limit
	if limit <= 0 || limit > maxOwnedPageLimit {
		limit = defaultOwnedPageLimit
	}
	q := objectResponseQuery{Options: objectDataOptions{ShowType: true, ShowContent: true}}
	if query.StructType != "" {
		q.Filter = map[string]string{"StructType": query.StructType}
	}
	var cursor any
	if query.Cursor != "" {
		cursor = query.Cursor
	}

	var page ownedObjectsPage
	if err := c.call(ctx, methodGetOwnedObjects, []any{owner, q, cursor, limit}, &page); err != nil {
		return nil, err
	}

	out := &ledger.Page{HasNextPage: page.HasNextPage}
	if page.NextCursor != nil {
		out.NextCursor = *page.NextCursor
	}
	for _, item := range page.Data {
		if item.Data == nil {
			continue
		}
		out.Objects = append(out.Objects, item.Data.toObject())
	}
	return out, nil
}

// GetObject fetches a single object. A missing or deleted object yields (nil, nil).
func (c *Client) GetObject(ctx context.Context, objectID string) (*ledger.Object, error) {
	var resp objectResponse
	opts := objectDataOptions{ShowType: true, ShowContent: true}
	if err := c.call(ctx, methodGetObject, []any{objectID, opts}, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		switch resp.Error.Code {
		case objectErrorNotExists, objectErrorDeleted:
			return nil, nil
		default:
			return nil, ledger.NewError(ledger.CategoryRPC, methodGetObject, "object error: "+resp.Error.Code, nil)
		}
	}
	if resp.Data == nil {
		return nil, nil
	}
	return resp.Data.toObject(), nil
}

// Execute builds the call on the node, signs the returned bytes and submits
// them, waiting for local execution. A transport failure once the submission
// has left the process is non-retryable because the outcome is unknown.
// Everything that stops the submission earlier (open circuit, rate limiter,
// dial failure, caller deadline) stays retryable.
func (c *Client) Execute(ctx context.Context, tx ledger.TransactionDescriptor, signer ledger.Signer, opts ledger.ExecuteOptions) (*ledger.TransactionResponse, error) {
	if signer == nil {
		return nil, ledger.NewError(ledger.CategoryInternal, "execute", "signer is required", nil)
	}

	var built transactionBlockBytes
	params := []any{
		signer.Address(),
		tx.Package,
		tx.Module,
		tx.Function,
		[]string{},
		pureArgs(tx.Arguments),
		nil,
		strconv.FormatUint(c.gasBudget, 10),
		nil,
	}
	if err := c.call(ctx, methodMoveCall, params, &built); err != nil {
		return nil, err
	}
	txBytes, err := base64.StdEncoding.DecodeString(built.TxBytes)
	if err != nil {
		return nil, ledger.NewError(ledger.CategoryDecode, methodMoveCall, "tx bytes are not base64", err)
	}

	signature, err := signer.Sign(ctx, txBytes)
	if err != nil {
		var le *ledger.Error
		if errors.As(err, &le) {
			return nil, err
		}
		return nil, ledger.NewError(ledger.CategorySigningCancelled, "sign", "signer declined", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, ledger.NewError(ledger.CategoryTransport, methodExecuteTxBlock, transportReason(err)+" before dispatch", err)
	}

	var resp executeResponse
	execParams := []any{
		built.TxBytes,
		[]string{signature},
		executeOptions{ShowEffects: opts.ShowEffects, ShowObjectChanges: opts.ShowObjectChanges},
		requestTypeWaitLocal,
	}
	if sent, err := c.invoke(ctx, methodExecuteTxBlock, execParams, &resp); err != nil {
		var le *ledger.Error
		if sent && errors.As(err, &le) && le.Category == ledger.CategoryTransport {
			le.Retryable = false
			le.Message = "outcome unknown: " + le.Message
		}
		return nil, err
	}
	return resp.toResponse(), nil
}

// BreakerState reports the circuit state for health checks.
func (c *Client) BreakerState() circuit.State {
	return c.breaker.State()
}

func (c *Client) call(ctx context.Context, method string, params []any, out any) error {
	_, err := c.invoke(ctx, method, params, out)
	return err
}

// invoke performs one JSON-RPC call. sent reports whether the request may
// have reached the node; breaker, limiter and dial rejections leave it false.
func (c *Client) invoke(ctx context.Context, method string, params []any, out any) (sent bool, err error) {
	ctx, span := c.tracer.Start(ctx, "sui."+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("rpc.system", "jsonrpc"), attribute.String("rpc.method", method)))
	start := time.Now()
	defer func() {
		c.metrics.ObserveRPC(method, time.Since(start).Seconds())
		if err != nil {
			c.metrics.IncrementRPCError(method, string(ledger.GetCategory(err)))
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if !c.breaker.Allow() {
		return false, ledger.NewError(ledger.CategoryTransport, method, "circuit open", nil)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return false, ledger.NewError(ledger.CategoryTransport, method, "rate limiter", err)
	}

	body := rpcRequest{JSONRPC: jsonRPCVersion, ID: c.nextID.Add(1), Method: method, Params: params}
	resp, err := c.http.R().SetContext(ctx).SetBody(body).Post(c.url)
	if err != nil {
		c.recordFailure()
		return !isDialError(err), ledger.NewError(ledger.CategoryTransport, method, transportReason(err), err)
	}
	status := resp.StatusCode()
	if status >= http.StatusInternalServerError || status == http.StatusTooManyRequests {
		c.recordFailure()
		// A throttled request was refused before execution.
		return status != http.StatusTooManyRequests, ledger.NewError(ledger.CategoryTransport, method, fmt.Sprintf("node returned %d", status), nil)
	}
	c.recordSuccess()
	if status >= http.StatusBadRequest {
		return true, ledger.NewError(ledger.CategoryRPC, method, fmt.Sprintf("node returned %d", status), nil)
	}

	var envelope rpcResponse
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return true, ledger.NewError(ledger.CategoryDecode, method, "invalid json-rpc envelope", err)
	}
	if envelope.Error != nil {
		return true, ledger.NewError(ledger.CategoryRPC, method,
			fmt.Sprintf("code %d: %s", envelope.Error.Code, envelope.Error.Message), nil)
	}
	if out == nil || len(envelope.Result) == 0 {
		return true, nil
	}
	dec := json.NewDecoder(bytes.NewReader(envelope.Result))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return true, ledger.NewError(ledger.CategoryDecode, method, "invalid result", err)
	}
	return true, nil
}

func (c *Client) recordFailure() {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.Warn("ledger circuit opened", "breaker", c.breaker.Name())
		c.metrics.SetCircuitOpen(true)
	}
}

func (c *Client) recordSuccess() {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.Info("ledger circuit closed", "breaker", c.breaker.Name())
		c.metrics.SetCircuitOpen(false)
	}
}

func transportReason(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	default:
		return "request failed"
	}
}

// isDialError reports a failure to open the connection, so nothing was sent.
func isDialError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

var (
	_ ledger.Reader   = (*Client)(nil)
	_ ledger.Executor = (*Client)(nil)
)
