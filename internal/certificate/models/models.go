package models

import (
	"fmt"
	"strings"

	"certledger/internal/issuer"
)

// CertificateStruct is the struct name of minted credentials.
const CertificateStruct = "Certificate"

// Credential is a decoded, ledger-resident certificate. Values are rendered
// as text; missing scalars are "".
type Credential struct {
	ObjectID string `json:"objectId"`
	CourseID string `json:"courseId"`
	Issuer   string `json:"issuer"`
	IssuedAt string `json:"issuedAt"`
}

// VerificationResult is the outcome of checking one object id. CourseID and
// Issuer are empty when the object is absent or not a credential.
type VerificationResult struct {
	ObjectID string `json:"objectId,omitempty"`
	Valid    bool   `json:"valid"`
	CourseID string `json:"courseId,omitempty"`
	Issuer   string `json:"issuer,omitempty"`
}

// TypeSignature identifies the credential struct type on the ledger.
type TypeSignature struct {
	Package string
	Module  string
	Struct  string
}

// NewTypeSignature builds the signature of the certificate struct for a
// deployed package and module.
func NewTypeSignature(packageID, module string) TypeSignature {
	return TypeSignature{Package: issuer.Normalize(packageID), Module: strings.TrimSpace(module), Struct: CertificateStruct}
}

// String returns the fully-qualified type, e.g. 0xabc::certificate::Certificate.
func (t TypeSignature) String() string {
	return fmt.Sprintf("%s::%s::%s", t.Package, t.Module, t.Struct)
}

// Matches compares a declared ledger type against the signature. The package
// id is compared canonically; module and struct names must match exactly.
func (t TypeSignature) Matches(declared string) bool {
	parts := strings.SplitN(declared, "::", 3)
	if len(parts) != 3 {
		return false
	}
	return issuer.Normalize(parts[0]) == t.Package && parts[1] == t.Module && parts[2] == t.Struct
}
