// Package codec turns raw ledger objects into credentials.
package codec

import (
	"encoding/json"
	"strconv"

	"certledger/internal/certificate/models"
	"certledger/internal/ledger"
)

// SkipReason explains why an object was not decoded.
type SkipReason string

const (
	SkipAbsent          SkipReason = "absent"
	SkipNotMoveObject   SkipReason = "not_move_object"
	SkipTypeMismatch    SkipReason = "type_mismatch"
	SkipMissingObjectID SkipReason = "missing_object_id"
)

// Ledger field names on the certificate struct.
const (
	FieldCourseID = "course_id"
	FieldIssuer   = "issuer"
	FieldIssuedAt = "issued_at"
)

// Result is either a decoded credential or a skip reason, never both.
type Result struct {
	Credential *models.Credential
	Skipped    SkipReason
}

// OK reports whether the object decoded to a credential.
func (r Result) OK() bool {
	return r.Credential != nil
}

func decoded(c models.Credential) Result {
	return Result{Credential: &c}
}

func skipped(reason SkipReason) Result {
	return Result{Skipped: reason}
}

// Codec decodes objects of a single credential type.
type Codec struct {
	signature models.TypeSignature
}

func New(signature models.TypeSignature) *Codec {
	return &Codec{signature: signature}
}

// Signature returns the type the codec accepts.
func (c *Codec) Signature() models.TypeSignature {
	return c.signature
}

// Decode is total: structural problems yield a skip, missing scalars yield "".
func (c *Codec) Decode(raw *ledger.Object) Result {
	if raw == nil || raw.Content == nil {
		return skipped(SkipAbsent)
	}
	if raw.Content.DataType != ledger.DataTypeMoveObject {
		return skipped(SkipNotMoveObject)
	}
	declared := raw.Content.Type
	if declared == "" {
		declared = raw.Type
	}
	if !c.signature.Matches(declared) {
		return skipped(SkipTypeMismatch)
	}
	if raw.ObjectID == "" {
		return skipped(SkipMissingObjectID)
	}

	fields := raw.Content.Fields
	return decoded(models.Credential{
		ObjectID: raw.ObjectID,
		CourseID: scalar(fields, FieldCourseID),
		Issuer:   scalar(fields, FieldIssuer),
		IssuedAt: scalar(fields, FieldIssuedAt),
	})
}

// scalar renders strings, numbers and booleans as text. Everything else,
// including null, objects and arrays, is "".
func scalar(fields map[string]any, key string) string {
	v, ok := fields[key]
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
