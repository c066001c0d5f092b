package promo

import (
	"crypto/rand"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status represents the single-use lifecycle of a promo code.
type Status string

const (
	StatusUnused Status = "UNUSED"
	StatusUsed   Status = "USED"
)

// codeFormat is the canonical promo code shape. Anything that fails it is
// rejected before any storage lookup happens.
var codeFormat = regexp.MustCompile(`^[A-Z0-9_-]{6,32}$`)

const (
	generatedLength  = 12
	generatedCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Normalize trims and uppercases a user-supplied code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsWellFormed reports whether a normalized code matches the canonical format.
func IsWellFormed(code string) bool {
	return codeFormat.MatchString(code)
}

// GenerateCode returns a fresh code drawn from crypto/rand. The result always
// satisfies IsWellFormed. Bytes at or above the largest multiple of the
// charset size are rejected and redrawn so every character is equally likely.
func GenerateCode() (string, error) {
	limit := byte(256 - 256%len(generatedCharset))
	out := make([]byte, 0, generatedLength)
	raw := make([]byte, generatedLength)
	for len(out) < generatedLength {
		if _, err := rand.Read(raw); err != nil {
			return "", err
		}
		for _, b := range raw {
			if b >= limit {
				continue
			}
			out = append(out, generatedCharset[int(b)%len(generatedCharset)])
			if len(out) == generatedLength {
				break
			}
		}
	}
	return string(out), nil
}

// PromoCode is the aggregate root for single-use promotional codes. A code is
// issued by exactly one reservation and consumed by at most one other.
type PromoCode struct {
	id                    uuid.UUID
	code                  string
	status                Status
	discountPct           int
	usedByReservationID   *uuid.UUID
	usedAt                *time.Time
	issuedByReservationID *uuid.UUID
	createdAt             time.Time
}

// Issue creates a fresh UNUSED code linked to the reservation that earned it.
func Issue(issuedByReservationID uuid.UUID, discountPct int) (*PromoCode, error) {
	code, err := GenerateCode()
	if err != nil {
		return nil, err
	}
	return &PromoCode{
		id:                    uuid.New(),
		code:                  code,
		status:                StatusUnused,
		discountPct:           discountPct,
		issuedByReservationID: &issuedByReservationID,
		createdAt:             time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a PromoCode from persistence.
func Reconstruct(
	id uuid.UUID, code string, status Status, discountPct int,
	usedByReservationID *uuid.UUID, usedAt *time.Time,
	issuedByReservationID *uuid.UUID, createdAt time.Time,
) *PromoCode {
	return &PromoCode{
		id: id, code: code, status: status, discountPct: discountPct,
		usedByReservationID: usedByReservationID, usedAt: usedAt,
		issuedByReservationID: issuedByReservationID, createdAt: createdAt,
	}
}

// Getters.
func (p *PromoCode) ID() uuid.UUID                      { return p.id }
func (p *PromoCode) Code() string                       { return p.code }
func (p *PromoCode) Status() Status                     { return p.status }
func (p *PromoCode) DiscountPct() int                   { return p.discountPct }
func (p *PromoCode) UsedByReservationID() *uuid.UUID    { return p.usedByReservationID }
func (p *PromoCode) UsedAt() *time.Time                 { return p.usedAt }
func (p *PromoCode) IssuedByReservationID() *uuid.UUID  { return p.issuedByReservationID }
func (p *PromoCode) CreatedAt() time.Time               { return p.createdAt }

// IsRedeemable reports whether the code can still be consumed.
func (p *PromoCode) IsRedeemable() bool {
	return p.status == StatusUnused
}
