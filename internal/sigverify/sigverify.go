// Package sigverify authenticates inbound webhook requests from the chat
// platform. Verification is a pure predicate over the raw request body, the
// timestamp and signature headers, and the shared signing secret.
package sigverify

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"
	"time"
)

// version prefixes the canonical string and the signature, per the
// platform's signing scheme.
const version = "v0"

// ReplayWindow is the maximum accepted clock skew between the request
// timestamp and the local clock.
const ReplayWindow = 300 * time.Second

// Verifier checks webhook request signatures against a shared secret.
type Verifier struct {
	secret string
	now    func() time.Time
}

// New creates a Verifier for the given signing secret.
func New(secret string) *Verifier {
	return &Verifier{secret: secret, now: time.Now}
}

// NewWithClock creates a Verifier with an injectable clock. Used by tests.
func NewWithClock(secret string, now func() time.Time) *Verifier {
	return &Verifier{secret: secret, now: now}
}

// Verify reports whether the request is authentic: a fresh timestamp and a
// signature computed from the same secret over the canonical body. Any
// malformed input yields false, never a panic.
func (v *Verifier) Verify(body []byte, timestamp, signature string) bool {
	canonical, ok := canonicalize(body)
	if !ok {
		return false
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	age := v.now().Unix() - ts
	if age < 0 {
		age = -age
	}
	if age > int64(ReplayWindow/time.Second) {
		return false
	}

	expected := Sign(v.secret, timestamp, canonical)
	return hmac.Equal([]byte(signature), []byte(expected))
}

// Sign computes the signature the platform would send for the given
// canonical body: "v0=" + hex(HMAC-SHA256(secret, "v0:<ts>:<body>")).
func Sign(secret, timestamp, canonicalBody string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(version + ":" + timestamp + ":" + canonicalBody))
	return version + "=" + hex.EncodeToString(mac.Sum(nil))
}

// canonicalize reconstructs the string the platform signed. Handshake
// requests carry a JSON object and are signed as-is; everything else is a
// form post, re-serialized with RFC 1738 escaping so key order is stable.
func canonicalize(body []byte) (string, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "", false
	}
	if trimmed[0] == '{' {
		return string(body), true
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		return "", false
	}
	return values.Encode(), true
}
