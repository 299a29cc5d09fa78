package connection

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-sync/src/helpers"
	"market-sync/src/models"
)

func TestCodecRoundTripSmallPayload(t *testing.T) {
	c := NewCodec(1024)
	payload, _ := json.Marshal(models.MMarketUpdatePayload{Symbol: "AAPL", Price: 187.5})
	msg := models.MMessage{Type: models.TypeMarketUpdate, Payload: payload, Timestamp: 42}

	data, err := c.Encode(msg)
	require.NoError(t, err)

	// Below the threshold the frame carries the payload verbatim
	var frame models.MMessage
	require.NoError(t, json.Unmarshal(data, &frame))
	assert.False(t, frame.Compressed)

	decoded, err := c.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, msg.Type, decoded.Type)
	assert.Equal(t, msg.Timestamp, decoded.Timestamp)
	assert.JSONEq(t, string(payload), string(decoded.Payload))
}

func TestCodecCompressesLargePayload(t *testing.T) {
	c := NewCodec(64)
	big, _ := json.Marshal(map[string]string{"blob": string(bytes.Repeat([]byte("x"), 500))})
	msg := models.MMessage{Type: models.TypeMarketUpdate, Payload: big, Timestamp: 1}

	data, err := c.Encode(msg)
	require.NoError(t, err)

	var frame models.MMessage
	require.NoError(t, json.Unmarshal(data, &frame))
	assert.True(t, frame.Compressed)

	// Decode hands back the inflated payload with the flag cleared
	decoded, err := c.Decode(data)
	require.NoError(t, err)
	assert.False(t, decoded.Compressed)
	assert.JSONEq(t, string(big), string(decoded.Payload))
}

func TestCodecCompressionDisabled(t *testing.T) {
	c := NewCodec(0)
	big, _ := json.Marshal(map[string]string{"blob": string(bytes.Repeat([]byte("x"), 5000))})

	data, err := c.Encode(models.MMessage{Type: models.TypePing, Payload: big})
	require.NoError(t, err)

	var frame models.MMessage
	require.NoError(t, json.Unmarshal(data, &frame))
	assert.False(t, frame.Compressed)
}

func TestCodecRejectsGarbage(t *testing.T) {
	c := NewCodec(1024)

	_, err := c.Decode([]byte("{not json"))
	require.Error(t, err)
	assert.True(t, helpers.IsProtocol(err))
}

func TestCodecRejectsMissingType(t *testing.T) {
	c := NewCodec(1024)

	_, err := c.Decode([]byte(`{"payload":{},"timestamp":1}`))
	require.Error(t, err)
	assert.True(t, helpers.IsProtocol(err))
}

func TestCodecRejectsBadCompressedPayload(t *testing.T) {
	c := NewCodec(1024)

	// Compressed flag set but the payload is not a base64 string
	_, err := c.Decode([]byte(`{"type":"market_update","payload":{"a":1},"compressed":true}`))
	require.Error(t, err)
	assert.True(t, helpers.IsProtocol(err))

	// Valid base64 of bytes that are not a deflate stream
	_, err = c.Decode([]byte(`{"type":"market_update","payload":"aGVsbG8=","compressed":true}`))
	require.Error(t, err)
	assert.True(t, helpers.IsProtocol(err))
}
