// Package token implements stateless, single-use action tokens for account
// activation and password reset links.
//
// A token is a pure function of (secret, user id, fact snapshot, timestamp):
// no row is stored for it. The fact snapshot is the user's password hash and
// active flag, so the first successful consumption of a token mutates the
// fact and every outstanding sibling token stops validating. Rotating the
// secret invalidates all outstanding links; that is an accepted operational
// cost of keeping the service stateless.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// macHexLen is the number of hex characters of the HMAC digest kept in the
// token. 40 chars = 160 bits, plenty against forgery while keeping links short.
const macHexLen = 40

// Facts is the snapshot of mutable user state a token is bound to.
type Facts struct {
	UserID       uint64
	PasswordHash string
	IsActive     bool
}

// Generator issues and validates action tokens. The zero value is not usable;
// construct with New.
type Generator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time // overridable in tests
}

// New returns a Generator signing with secret. Tokens expire ttl after issue.
func New(secret string, ttl time.Duration) *Generator {
	return &Generator{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a token for the given fact snapshot. The token embeds the
// issue timestamp (base36) and an HMAC over the snapshot and that timestamp.
func (g *Generator) Issue(f Facts) string {
	ts := g.now().UTC().Unix()
	return strconv.FormatInt(ts, 36) + "-" + g.mac(f, ts)
}

// Validate reports whether tok was issued for the current fact snapshot and
// has not expired. It fails closed: any structural problem yields false.
func (g *Generator) Validate(f Facts, tok string) bool {
	tsPart, macPart, ok := strings.Cut(tok, "-")
	if !ok {
		return false
	}
	ts, err := strconv.ParseInt(tsPart, 36, 64)
	if err != nil {
		return false
	}
	// Recompute over the *current* facts: if the bound fact changed since
	// issuance the MACs diverge and the token is dead.
	if subtle.ConstantTimeCompare([]byte(g.mac(f, ts)), []byte(macPart)) != 1 {
		return false
	}
	now := g.now().UTC().Unix()
	if now < ts {
		return false // issued in the future -> tampered clock or forged ts
	}
	return now-ts <= int64(g.ttl/time.Second)
}

// mac computes the hex-truncated HMAC-SHA256 over the fact snapshot and the
// issue timestamp.
func (g *Generator) mac(f Facts, ts int64) string {
	h := hmac.New(sha256.New, g.secret)
	fmt.Fprintf(h, "%d|%s|%t|%d", f.UserID, f.PasswordHash, f.IsActive, ts)
	return hex.EncodeToString(h.Sum(nil))[:macHexLen]
}

// EncodeUID encodes a user id for use in activation/reset links (the uidb64
// path segment). Base64url without padding keeps the link copy-paste safe.
func EncodeUID(id uint64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatUint(id, 10)))
}

// DecodeUID reverses EncodeUID. Any malformed input yields an error; callers
// treat that the same as an invalid token.
func DecodeUID(s string) (uint64, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(string(b), 10, 64)
}
