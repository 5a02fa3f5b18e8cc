// Package memory is an in-process ledger used for local runs and end-to-end
// tests. It understands a single entry point: <package>::<module>::mint_certificate.
package memory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"certledger/internal/ledger"
)

const (
	mintFunction    = "mint_certificate"
	defaultPageSize = 50
)

// Ledger stores objects in memory. It implements ledger.Reader and
// ledger.Executor.
type Ledger struct {
	mu       sync.RWMutex
	pkg      string
	module   string
	objects  map[string]*ledger.Object
	owners   map[string][]string
	seq      uint64
	aborts   int
	pageSize int
	now      func() time.Time
}

// Option configures the Ledger.
type Option func(*Ledger)

// WithClock overrides the issued_at time source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// WithPageSize caps owned-object pages, to exercise pagination.
func WithPageSize(n int) Option {
	return func(l *Ledger) {
		if n > 0 {
			l.pageSize = n
		}
	}
}

// New creates an empty ledger for the given package and module.
func New(packageID, module string, opts ...Option) *Ledger {
	l := &Ledger{
		pkg:      packageID,
		module:   module,
		objects:  make(map[string]*ledger.Object),
		owners:   make(map[string][]string),
		pageSize: defaultPageSize,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CertificateType is the struct type minted by this ledger.
func (l *Ledger) CertificateType() string {
	return fmt.Sprintf("%s::%s::Certificate", l.pkg, l.module)
}

// Put stores an arbitrary object under owner. Used to seed foreign or
// malformed objects in tests.
func (l *Ledger) Put(owner string, obj *ledger.Object) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.objects[obj.ObjectID]; !exists {
		key := ownerKey(owner)
		l.owners[key] = append(l.owners[key], obj.ObjectID)
	}
	l.objects[obj.ObjectID] = cloneObject(obj)
}

// FailNextExecutions makes the next n executions complete with a failure
// status and no created objects.
func (l *Ledger) FailNextExecutions(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.aborts = n
}

// Count returns the number of stored objects.
func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.objects)
}

func (l *Ledger) GetOwnedObjects(ctx context.Context, owner string, query ledger.OwnedQuery) (*ledger.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, ledger.NewError(ledger.CategoryTransport, "get_owned_objects", "context done", err)
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	start := 0
	if query.Cursor != "" {
		n, err := strconv.Atoi(query.Cursor)
		if err != nil || n < 0 {
			return nil, ledger.NewError(ledger.CategoryRPC, "get_owned_objects", "invalid cursor", err)
		}
		start = n
	}
	limit := query.Limit
	if limit <= 0 || limit > l.pageSize {
		limit = l.pageSize
	}

	var matching []string
	for _, id := range l.owners[ownerKey(owner)] {
		obj := l.objects[id]
		if query.StructType != "" && obj.Type != query.StructType {
			continue
		}
		matching = append(matching, id)
	}

	page := &ledger.Page{}
	if start >= len(matching) {
		return page, nil
	}
	end := min(start+limit, len(matching))
	for _, id := range matching[start:end] {
		page.Objects = append(page.Objects, cloneObject(l.objects[id]))
	}
	if end < len(matching) {
		page.HasNextPage = true
		page.NextCursor = strconv.Itoa(end)
	}
	return page, nil
}

func (l *Ledger) GetObject(ctx context.Context, objectID string) (*ledger.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, ledger.NewError(ledger.CategoryTransport, "get_object", "context done", err)
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	obj, ok := l.objects[objectID]
	if !ok {
		return nil, nil
	}
	return cloneObject(obj), nil
}

// Execute signs the descriptor bytes with signer and applies the mint.
func (l *Ledger) Execute(ctx context.Context, tx ledger.TransactionDescriptor, signer ledger.Signer, _ ledger.ExecuteOptions) (*ledger.TransactionResponse, error) {
	if signer == nil {
		return nil, ledger.NewError(ledger.CategoryInternal, "execute", "signer is required", nil)
	}
	if tx.Package != l.pkg || tx.Module != l.module || tx.Function != mintFunction {
		return nil, ledger.NewError(ledger.CategoryRPC, "execute", "unknown entry point "+tx.Target(), nil)
	}
	if len(tx.Arguments) != 3 || tx.Arguments[0].Kind != ledger.ArgAddress {
		return nil, ledger.NewError(ledger.CategoryRPC, "execute", "mint_certificate expects (address, string, string)", nil)
	}

	txBytes, err := json.Marshal(tx)
	if err != nil {
		return nil, ledger.NewError(ledger.CategoryInternal, "execute", "encode transaction", err)
	}
	sig, err := signer.Sign(ctx, txBytes)
	if err != nil {
		var le *ledger.Error
		if errors.As(err, &le) {
			return nil, err
		}
		return nil, ledger.NewError(ledger.CategorySigningCancelled, "sign", "signer declined", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, ledger.NewError(ledger.CategoryTransport, "execute", "cancelled before dispatch", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	digest := hashHex("digest", strconv.FormatUint(l.seq, 10), sig)

	if l.aborts > 0 {
		l.aborts--
		return &ledger.TransactionResponse{
			Digest: digest,
			Effects: &ledger.Effects{
				Status: ledger.ExecutionStatus{Status: ledger.ExecutionFailure, Error: "MoveAbort in mint_certificate"},
			},
		}, nil
	}

	recipient := tx.Arguments[0].Value
	objectID := "0x" + hashHex("object", digest)
	obj := &ledger.Object{
		ObjectID: objectID,
		Version:  strconv.FormatUint(l.seq, 10),
		Digest:   hashHex("object-digest", objectID)[:44],
		Type:     l.CertificateType(),
		Content: &ledger.Content{
			DataType: ledger.DataTypeMoveObject,
			Type:     l.CertificateType(),
			Fields: map[string]any{
				"recipient":     recipient,
				"course_id":     tx.Arguments[1].Value,
				"metadata_hash": tx.Arguments[2].Value,
				"issuer":        signer.Address(),
				"issued_at":     strconv.FormatInt(l.now().UnixMilli(), 10),
			},
		},
	}
	l.objects[objectID] = obj
	l.owners[ownerKey(recipient)] = append(l.owners[ownerKey(recipient)], objectID)

	return &ledger.TransactionResponse{
		Digest: digest,
		Effects: &ledger.Effects{
			Status: ledger.ExecutionStatus{Status: ledger.ExecutionSuccess},
			Created: []ledger.CreatedObject{{
				Owner:     recipient,
				Reference: ledger.ObjectRef{ObjectID: objectID, Version: obj.Version, Digest: obj.Digest},
			}},
		},
		ObjectChanges: []ledger.ObjectChange{{
			Type:       "created",
			ObjectID:   objectID,
			ObjectType: obj.Type,
			Sender:     signer.Address(),
		}},
	}, nil
}

func ownerKey(owner string) string {
	return strings.ToLower(strings.TrimSpace(owner))
}

func hashHex(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func cloneObject(obj *ledger.Object) *ledger.Object {
	if obj == nil {
		return nil
	}
	out := *obj
	if obj.Content != nil {
		content := *obj.Content
		if obj.Content.Fields != nil {
			content.Fields = make(map[string]any, len(obj.Content.Fields))
			for k, v := range obj.Content.Fields {
				content.Fields[k] = v
			}
		}
		out.Content = &content
	}
	return &out
}

var (
	_ ledger.Reader   = (*Ledger)(nil)
	_ ledger.Executor = (*Ledger)(nil)
)
