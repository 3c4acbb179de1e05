package sigverify

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const testSecret = "8f742231b10e8888abcd99yyyzzz85a5"

func fixedClock(ts int64) func() time.Time {
	return func() time.Time { return time.Unix(ts, 0) }
}

func TestVerifyFormBody(t *testing.T) {
	v := NewWithClock(testSecret, fixedClock(1600000000))

	body := []byte("command=%2Freview&channel_id=C123&user_id=U456")
	canonical := "channel_id=C123&command=%2Freview&user_id=U456"
	sig := Sign(testSecret, "1600000000", canonical)

	assert.True(t, v.Verify(body, "1600000000", sig))
}

func TestVerifyJSONBodySignedAsIs(t *testing.T) {
	v := NewWithClock(testSecret, fixedClock(1600000000))

	body := []byte(`{"type":"url_verification","challenge":"abc"}`)
	sig := Sign(testSecret, "1600000000", string(body))

	assert.True(t, v.Verify(body, "1600000000", sig))
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	v := NewWithClock(testSecret, fixedClock(1600000000))

	body := []byte("command=%2Freview")
	sig := Sign("some-other-secret", "1600000000", "command=%2Freview")

	assert.False(t, v.Verify(body, "1600000000", sig))
}

func TestVerifyRejectsTamperedBody(t *testing.T) {
	v := NewWithClock(testSecret, fixedClock(1600000000))

	sig := Sign(testSecret, "1600000000", "command=%2Freview")
	tampered := []byte("command=%2Fadmin")

	assert.False(t, v.Verify(tampered, "1600000000", sig))
}

func TestVerifyReplayWindow(t *testing.T) {
	cases := []struct {
		name   string
		now    int64
		signed int64
		want   bool
	}{
		{"fresh", 1600000000, 1600000000, true},
		{"at window edge", 1600000300, 1600000000, true},
		{"stale", 1600000301, 1600000000, false},
		{"future within window", 1600000000, 1600000200, true},
		{"far future", 1600000000, 1600000400, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := NewWithClock(testSecret, fixedClock(tc.now))
			ts := strconv.FormatInt(tc.signed, 10)
			body := []byte("command=%2Freview")
			sig := Sign(testSecret, ts, "command=%2Freview")
			assert.Equal(t, tc.want, v.Verify(body, ts, sig))
		})
	}
}

func TestVerifyMalformedInputs(t *testing.T) {
	v := NewWithClock(testSecret, fixedClock(1600000000))

	assert.False(t, v.Verify(nil, "1600000000", "v0=deadbeef"), "empty body")
	assert.False(t, v.Verify([]byte("   "), "1600000000", "v0=deadbeef"), "blank body")
	assert.False(t, v.Verify([]byte("command=%2Freview"), "", "v0=deadbeef"), "missing timestamp")
	assert.False(t, v.Verify([]byte("command=%2Freview"), "not-a-number", "v0=deadbeef"), "bad timestamp")
	assert.False(t, v.Verify([]byte("command=%2Freview"), "1600000000", ""), "missing signature")
	assert.False(t, v.Verify([]byte("a=%zz"), "1600000000", "v0=deadbeef"), "unparseable form body")
}

func TestCanonicalizeNormalizesKeyOrder(t *testing.T) {
	a, okA := canonicalize([]byte("b=2&a=1"))
	b, okB := canonicalize([]byte("a=1&b=2"))

	assert.True(t, okA)
	assert.True(t, okB)
	assert.Equal(t, a, b)
}
