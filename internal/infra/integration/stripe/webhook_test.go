package stripe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const testSecret = "whsec_test_secret"

func testPayload() []byte {
	return []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"customer":"cus_1"}}}`)
}

func TestConstructEventValidSignature(t *testing.T) {
	client := NewClient("sk_test", testSecret)
	payload := testPayload()
	header := SignPayload(payload, testSecret, time.Now())

	event, err := client.ConstructEvent(payload, header)

	assert.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, EventCheckoutSessionCompleted, event.Type)
}

func TestConstructEventRejectsTamperedPayload(t *testing.T) {
	client := NewClient("sk_test", testSecret)
	header := SignPayload(testPayload(), testSecret, time.Now())

	tampered := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"customer":"cus_EVIL"}}}`)
	_, err := client.ConstructEvent(tampered, header)

	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestConstructEventRejectsWrongSecret(t *testing.T) {
	client := NewClient("sk_test", testSecret)
	payload := testPayload()
	header := SignPayload(payload, "whsec_other", time.Now())

	_, err := client.ConstructEvent(payload, header)

	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestConstructEventRejectsStaleTimestamp(t *testing.T) {
	client := NewClient("sk_test", testSecret)
	payload := testPayload()
	header := SignPayload(payload, testSecret, time.Now().Add(-DefaultTolerance-time.Minute))

	_, err := client.ConstructEvent(payload, header)

	assert.ErrorIs(t, err, ErrStaleTimestamp)
}

func TestConstructEventRejectsMissingOrGarbageHeader(t *testing.T) {
	client := NewClient("sk_test", testSecret)
	payload := testPayload()

	_, err := client.ConstructEvent(payload, "")
	assert.ErrorIs(t, err, ErrMissingSignature)

	_, err = client.ConstructEvent(payload, "t=abc,v1=zzz")
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = client.ConstructEvent(payload, "v1=deadbeef")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestParseSignatureHeaderMultipleV1(t *testing.T) {
	ts, sigs, err := parseSignatureHeader("t=1700000000,v1=aaa,v1=bbb")

	assert.NoError(t, err)
	assert.Equal(t, int64(1700000000), ts)
	assert.Equal(t, []string{"aaa", "bbb"}, sigs)
}
