// Package ledger defines the ports the issuance core uses to read ledger
// objects and to execute transactions, independent of any RPC dialect.
package ledger

import (
	"context"
	"fmt"
)

// DataTypeMoveObject is the content classification of structured ledger objects.
const DataTypeMoveObject = "moveObject"

// Content is the decoded body of a ledger object.
type Content struct {
	DataType string
	Type     string
	Fields   map[string]any
}

// Object is a raw ledger object as returned by the read port.
type Object struct {
	ObjectID string
	Version  string
	Digest   string
	Type     string
	Content  *Content
}

// OwnedQuery filters and pages an owned-objects lookup.
type OwnedQuery struct {
	StructType string
	Cursor     string
	Limit      int
}

// Page is one page of owned objects, in ledger order.
type Page struct {
	Objects     []*Object
	NextCursor  string
	HasNextPage bool
}

// Reader is the ledger read port. Both calls request full decoded content.
// GetObject returns (nil, nil) when the object does not exist.
type Reader interface {
	GetOwnedObjects(ctx context.Context, owner string, query OwnedQuery) (*Page, error)
	GetObject(ctx context.Context, objectID string) (*Object, error)
}

// ArgumentKind is the on-chain type of a pure call argument.
type ArgumentKind string

const (
	ArgAddress ArgumentKind = "address"
	ArgString  ArgumentKind = "string"
)

// Argument is a typed pure argument of a move call.
type Argument struct {
	Kind  ArgumentKind
	Value string
}

// TransactionDescriptor describes a single entry-point call. It is inert
// until handed to an Executor.
type TransactionDescriptor struct {
	Package   string
	Module    string
	Function  string
	Arguments []Argument
}

// Target returns the fully-qualified entry point.
func (d TransactionDescriptor) Target() string {
	return fmt.Sprintf("%s::%s::%s", d.Package, d.Module, d.Function)
}

// ExecuteOptions selects what the ledger reports back after execution.
type ExecuteOptions struct {
	ShowEffects       bool
	ShowObjectChanges bool
}

// ObjectRef identifies a specific version of an object.
type ObjectRef struct {
	ObjectID string
	Version  string
	Digest   string
}

// CreatedObject is one entry of effects.created.
type CreatedObject struct {
	Owner     string
	Reference ObjectRef
}

const (
	ExecutionSuccess = "success"
	ExecutionFailure = "failure"
)

// ExecutionStatus is the on-chain outcome of a transaction.
type ExecutionStatus struct {
	Status string
	Error  string
}

// Effects are the ledger-reported consequences of a transaction.
type Effects struct {
	Status  ExecutionStatus
	Created []CreatedObject
}

// ObjectChange is one entry of the object-change report.
type ObjectChange struct {
	Type       string
	ObjectID   string
	ObjectType string
	Sender     string
}

// TransactionResponse is returned once the ledger has executed a transaction.
type TransactionResponse struct {
	Digest        string
	Effects       *Effects
	ObjectChanges []ObjectChange
}

// Signer is the signing collaborator. Sign receives the serialized
// transaction bytes and returns the ledger's serialized signature.
type Signer interface {
	Address() string
	Sign(ctx context.Context, txBytes []byte) (string, error)
}

// Executor is the ledger write port.
type Executor interface {
	Execute(ctx context.Context, tx TransactionDescriptor, signer Signer, opts ExecuteOptions) (*TransactionResponse, error)
}
