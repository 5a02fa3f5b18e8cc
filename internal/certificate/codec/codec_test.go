package codec

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"certledger/internal/certificate/models"
	"certledger/internal/ledger"
)

const testPackage = "0x0de8f0a090b81b642d62f6ad9459f2e1cad737bf51d6a3584f5082a91ee3f90c"

type CodecSuite struct {
	suite.Suite
	codec *Codec
}

func TestCodecSuite(t *testing.T) {
	suite.Run(t, new(CodecSuite))
}

func (s *CodecSuite) SetupTest() {
	s.codec = New(models.NewTypeSignature(testPackage, "certificate"))
}

func (s *CodecSuite) certificate(fields map[string]any) *ledger.Object {
	typ := s.codec.Signature().String()
	return &ledger.Object{
		ObjectID: "0x01",
		Type:     typ,
		Content:  &ledger.Content{DataType: ledger.DataTypeMoveObject, Type: typ, Fields: fields},
	}
}

func (s *CodecSuite) TestSkips() {
	s.Run("nil object", func() {
		s.Equal(SkipAbsent, s.codec.Decode(nil).Skipped)
	})
	s.Run("nil content", func() {
		s.Equal(SkipAbsent, s.codec.Decode(&ledger.Object{ObjectID: "0x01"}).Skipped)
	})
	s.Run("package object", func() {
		obj := s.certificate(nil)
		obj.Content.DataType = "package"
		s.Equal(SkipNotMoveObject, s.codec.Decode(obj).Skipped)
	})
	s.Run("foreign struct", func() {
		obj := s.certificate(nil)
		obj.Content.Type = "0x2::coin::Coin<0x2::sui::SUI>"
		s.Equal(SkipTypeMismatch, s.codec.Decode(obj).Skipped)
	})
	s.Run("same struct in another module", func() {
		obj := s.certificate(nil)
		obj.Content.Type = testPackage + "::badge::Certificate"
		s.Equal(SkipTypeMismatch, s.codec.Decode(obj).Skipped)
	})
	s.Run("generic instantiation is not exact", func() {
		obj := s.certificate(nil)
		obj.Content.Type = s.codec.Signature().String() + "<u8>"
		s.Equal(SkipTypeMismatch, s.codec.Decode(obj).Skipped)
	})
	s.Run("missing object id", func() {
		obj := s.certificate(nil)
		obj.ObjectID = ""
		res := s.codec.Decode(obj)
		s.False(res.OK())
		s.Equal(SkipMissingObjectID, res.Skipped)
	})
}

func (s *CodecSuite) TestPackageIDComparedCanonically() {
	obj := s.certificate(map[string]any{"course_id": "GO-101"})
	obj.Content.Type = "0x0DE8F0A090B81B642D62F6AD9459F2E1CAD737BF51D6A3584F5082A91EE3F90C::certificate::Certificate"
	res := s.codec.Decode(obj)
	s.Require().True(res.OK())
	s.Equal("GO-101", res.Credential.CourseID)
}

func (s *CodecSuite) TestFieldExtraction() {
	s.Run("all fields", func() {
		res := s.codec.Decode(s.certificate(map[string]any{
			"course_id": "GO-101",
			"issuer":    "0xabc",
			"issued_at": json.Number("1700000000000"),
		}))
		s.Require().True(res.OK())
		s.Equal(models.Credential{ObjectID: "0x01", CourseID: "GO-101", Issuer: "0xabc", IssuedAt: "1700000000000"}, *res.Credential)
	})
	s.Run("missing fields default to empty", func() {
		res := s.codec.Decode(s.certificate(nil))
		s.Require().True(res.OK())
		s.Equal(models.Credential{ObjectID: "0x01"}, *res.Credential)
	})
	s.Run("non scalar values are not coerced", func() {
		res := s.codec.Decode(s.certificate(map[string]any{
			"course_id": map[string]any{"id": "x"},
			"issuer":    []any{"0xabc"},
			"issued_at": nil,
		}))
		s.Require().True(res.OK())
		s.Equal("", res.Credential.CourseID)
		s.Equal("", res.Credential.Issuer)
		s.Equal("", res.Credential.IssuedAt)
	})
	s.Run("numbers and booleans are rendered", func() {
		res := s.codec.Decode(s.certificate(map[string]any{
			"course_id": true,
			"issued_at": float64(1700000000),
		}))
		s.Require().True(res.OK())
		s.Equal("true", res.Credential.CourseID)
		s.Equal("1700000000", res.Credential.IssuedAt)
	})
	s.Run("falls back to object type when content type is empty", func() {
		obj := s.certificate(map[string]any{"course_id": "A"})
		obj.Content.Type = ""
		s.True(s.codec.Decode(obj).OK())
	})
}

func TestDecodeReproducesStringFields(t *testing.T) {
	c := New(models.NewTypeSignature(testPackage, "certificate"))
	typ := c.Signature().String()

	properties := gopter.NewProperties(nil)
	properties.Property("decoded fields equal stored strings", prop.ForAll(
		func(course, issuer string, issuedAt int64) bool {
			res := c.Decode(&ledger.Object{
				ObjectID: "0x01",
				Content: &ledger.Content{DataType: ledger.DataTypeMoveObject, Type: typ, Fields: map[string]any{
					"course_id": course,
					"issuer":    issuer,
					"issued_at": json.Number(strconv.FormatInt(issuedAt, 10)),
				}},
			})
			return res.OK() &&
				res.Credential.CourseID == course &&
				res.Credential.Issuer == issuer &&
				res.Credential.IssuedAt == strconv.FormatInt(issuedAt, 10)
		},
		gen.AnyString(),
		gen.AlphaString(),
		gen.Int64Range(0, 1<<53),
	))
	properties.TestingRun(t)
}

func TestTypeSignatureString(t *testing.T) {
	sig := models.NewTypeSignature("  0xABC ", "certificate")
	assert.Equal(t, "0xabc::certificate::Certificate", sig.String())
	assert.False(t, sig.Matches("0xabc::certificate"))
}
