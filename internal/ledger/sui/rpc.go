package sui

import (
	"encoding/json"
	"strings"

	"certledger/internal/ledger"
)

const (
	methodGetOwnedObjects  = "suix_getOwnedObjects"
	methodGetObject        = "sui_getObject"
	methodMoveCall         = "unsafe_moveCall"
	methodExecuteTxBlock   = "sui_executeTransactionBlock"
	requestTypeWaitLocal   = "WaitForLocalExecution"
	objectErrorNotExists   = "notExists"
	objectErrorDeleted     = "deleted"
	jsonRPCVersion         = "2.0"
	defaultOwnedPageLimit  = 50
	maxOwnedPageLimit      = 50
	signatureSchemeEd25519 = 0x00
)

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type objectDataOptions struct {
	ShowType    bool `json:"showType"`
	ShowContent bool `json:"showContent"`
}

type objectResponseQuery struct {
	Filter  map[string]string `json:"filter,omitempty"`
	Options objectDataOptions `json:"options"`
}

type objectResponse struct {
	Data  *objectData          `json:"data"`
	Error *objectResponseError `json:"error"`
}

type objectResponseError struct {
	Code     string `json:"code"`
	ObjectID string `json:"object_id"`
}

type objectData struct {
	ObjectID string         `json:"objectId"`
	Version  json.Number    `json:"version"`
	Digest   string         `json:"digest"`
	Type     string         `json:"type"`
	Content  *parsedContent `json:"content"`
}

type parsedContent struct {
	DataType string         `json:"dataType"`
	Type     string         `json:"type"`
	Fields   map[string]any `json:"fields"`
}

type ownedObjectsPage struct {
	Data        []objectResponse `json:"data"`
	NextCursor  *string          `json:"nextCursor"`
	HasNextPage bool             `json:"hasNextPage"`
}

type transactionBlockBytes struct {
	TxBytes string `json:"txBytes"`
}

type executeOptions struct {
	ShowEffects       bool `json:"showEffects"`
	ShowObjectChanges bool `json:"showObjectChanges"`
}

type executeResponse struct {
	Digest        string          `json:"digest"`
	Effects       *effectsPayload `json:"effects"`
	ObjectChanges []objectChange  `json:"objectChanges"`
}

type effectsPayload struct {
	Status struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	} `json:"status"`
	Created []ownedRef `json:"created"`
}

type ownedRef struct {
	Owner     json.RawMessage `json:"owner"`
	Reference struct {
		ObjectID string      `json:"objectId"`
		Version  json.Number `json:"version"`
		Digest   string      `json:"digest"`
	} `json:"reference"`
}

type objectChange struct {
	Type       string `json:"type"`
	Sender     string `json:"sender"`
	ObjectType string `json:"objectType"`
	ObjectID   string `json:"objectId"`
}

func (d *objectData) toObject() *ledger.Object {
	obj := &ledger.Object{
		ObjectID: d.ObjectID,
		Version:  d.Version.String(),
		Digest:   d.Digest,
		Type:     d.Type,
	}
	if d.Content != nil {
		obj.Content = &ledger.Content{
			DataType: d.Content.DataType,
			Type:     d.Content.Type,
			Fields:   d.Content.Fields,
		}
	}
	return obj
}

func (r *executeResponse) toResponse() *ledger.TransactionResponse {
	out := &ledger.TransactionResponse{Digest: r.Digest}
	if r.Effects != nil {
		effects := &ledger.Effects{
			Status: ledger.ExecutionStatus{Status: r.Effects.Status.Status, Error: r.Effects.Status.Error},
		}
		for _, c := range r.Effects.Created {
			effects.Created = append(effects.Created, ledger.CreatedObject{
				Owner: ownerAddress(c.Owner),
				Reference: ledger.ObjectRef{
					ObjectID: c.Reference.ObjectID,
					Version:  c.Reference.Version.String(),
					Digest:   c.Reference.Digest,
				},
			})
		}
		out.Effects = effects
	}
	for _, ch := range r.ObjectChanges {
		out.ObjectChanges = append(out.ObjectChanges, ledger.ObjectChange{
			Type:       ch.Type,
			ObjectID:   ch.ObjectID,
			ObjectType: ch.ObjectType,
			Sender:     ch.Sender,
		})
	}
	return out
}

// ownerAddress extracts the address from {"AddressOwner": "0x..."} style
// owners. Shared and immutable owners yield their tag name.
func ownerAddress(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var tagged map[string]any
	if err := json.Unmarshal(raw, &tagged); err == nil {
		if addr, ok := tagged["AddressOwner"].(string); ok {
			return addr
		}
		if addr, ok := tagged["ObjectOwner"].(string); ok {
			return addr
		}
		for k := range tagged {
			return k
		}
	}
	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain
	}
	return strings.TrimSpace(string(raw))
}

func pureArgs(args []ledger.Argument) []any {
	out := make([]any, 0, len(args))
	for _, a := range args {
		out = append(out, a.Value)
	}
	return out
}
