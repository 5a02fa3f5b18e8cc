package mint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// Metadata is the reviewed content bound into the credential by its hash.
type Metadata struct {
	RecipientWallet string `json:"recipientWallet"`
	DisplayName     string `json:"displayName"`
	CourseID        string `json:"courseId"`
	CourseName      string `json:"courseName"`
	Completed       bool   `json:"completed"`
	CompletedAt     string `json:"completedAt,omitempty"`
	PreviewHash     string `json:"previewHash,omitempty"`
}

// MetadataHash is the hex sha256 of the RFC 8785 canonical JSON of m, so the
// value is independent of field order and formatting.
func MetadataHash(m Metadata) (string, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalize metadata: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
