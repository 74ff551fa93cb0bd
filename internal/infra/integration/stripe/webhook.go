package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultTolerance bounds how old a signed payload may be. Matches the
// official SDKs.
const DefaultTolerance = 5 * time.Minute

var (
	ErrMissingSignature = errors.New("missing Stripe-Signature header")
	ErrInvalidSignature = errors.New("webhook signature verification failed")
	ErrStaleTimestamp   = errors.New("webhook timestamp outside tolerance")
)

// ConstructEvent verifies the Stripe-Signature header against the raw
// request body and returns the parsed event. The body must be the exact
// bytes Stripe sent; any JSON re-encoding breaks the signature.
func (c *Client) ConstructEvent(payload []byte, sigHeader string) (Event, error) {
	var event Event

	if sigHeader == "" {
		return event, ErrMissingSignature
	}

	timestamp, signatures, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return event, err
	}

	if time.Since(time.Unix(timestamp, 0)) > DefaultTolerance {
		return event, ErrStaleTimestamp
	}

	expected := computeSignature(timestamp, payload, c.webhookSecret)
	verified := false
	for _, sig := range signatures {
		decoded, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			verified = true
			break
		}
	}
	if !verified {
		return event, ErrInvalidSignature
	}

	if err := json.Unmarshal(payload, &event); err != nil {
		return event, fmt.Errorf("verified payload is not valid JSON: %w", err)
	}
	return event, nil
}

// parseSignatureHeader splits "t=1700000000,v1=abc,v1=def" into the
// timestamp and the v1 signature candidates.
func parseSignatureHeader(header string) (int64, []string, error) {
	var (
		timestamp  int64
		signatures []string
	)

	for _, pair := range strings.Split(header, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			continue
		}
		switch parts[0] {
		case "t":
			ts, err := strconv.ParseInt(parts[1], 10, 64)
			if err != nil {
				return 0, nil, ErrInvalidSignature
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, parts[1])
		}
	}

	if timestamp == 0 || len(signatures) == 0 {
		return 0, nil, ErrInvalidSignature
	}
	return timestamp, signatures, nil
}

func computeSignature(timestamp int64, payload []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return mac.Sum(nil)
}

// SignPayload produces a valid Stripe-Signature header for a payload.
// Used by tests and the local webhook simulator.
func SignPayload(payload []byte, secret string, at time.Time) string {
	ts := at.Unix()
	sig := computeSignature(ts, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(sig))
}
