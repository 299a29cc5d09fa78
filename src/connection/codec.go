package connection

import (
	"bytes"
	"compress/flate"
	"encoding/base64"
	"encoding/json"
	"io"

	"market-sync/src/helpers"
	"market-sync/src/models"
)

// -----------------------------------------------------------------------------
// Codec serializes messages to JSON text frames. Payloads larger than the
// threshold are deflate-compressed and carried base64-encoded with the
// compressed flag set; decoding always hands callers an inflated payload.
// -----------------------------------------------------------------------------

type Codec struct {
	CompressionThreshold int // bytes; <= 0 disables compression
}

// -----------------------------------------------------------------------------

func NewCodec(thresholdBytes int) *Codec {
	return &Codec{CompressionThreshold: thresholdBytes}
}

// -----------------------------------------------------------------------------

// Encode renders a frame, compressing the payload when it exceeds the
// threshold.
func (c *Codec) Encode(msg models.MMessage) ([]byte, error) {
	if c.CompressionThreshold > 0 && len(msg.Payload) > c.CompressionThreshold {
		var buf bytes.Buffer
		w, err := flate.NewWriter(&buf, flate.DefaultCompression)
		if err != nil {
			return nil, helpers.NewProtocolError("compressor init failed", err)
		}
		if _, err := w.Write(msg.Payload); err != nil {
			return nil, helpers.NewProtocolError("payload compression failed", err)
		}
		if err := w.Close(); err != nil {
			return nil, helpers.NewProtocolError("payload compression failed", err)
		}

		encoded, err := json.Marshal(base64.StdEncoding.EncodeToString(buf.Bytes()))
		if err != nil {
			return nil, helpers.NewProtocolError("payload encoding failed", err)
		}
		msg.Payload = encoded
		msg.Compressed = true
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return nil, helpers.NewProtocolError("frame encoding failed", err)
	}
	return data, nil
}

// -----------------------------------------------------------------------------

// Decode parses a frame and inflates the payload if the compressed flag is
// set. Malformed frames come back as ProtocolError.
func (c *Codec) Decode(data []byte) (models.MMessage, error) {
	var msg models.MMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return models.MMessage{}, helpers.NewProtocolError("undecodable frame", err)
	}
	if msg.Type == "" {
		return models.MMessage{}, helpers.NewProtocolError("frame missing type tag", nil)
	}

	if msg.Compressed {
		var b64 string
		if err := json.Unmarshal(msg.Payload, &b64); err != nil {
			return models.MMessage{}, helpers.NewProtocolError("compressed payload is not a base64 string", err)
		}
		raw, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return models.MMessage{}, helpers.NewProtocolError("compressed payload base64 decode failed", err)
		}

		r := flate.NewReader(bytes.NewReader(raw))
		inflated, err := io.ReadAll(r)
		if err != nil {
			return models.MMessage{}, helpers.NewProtocolError("payload inflate failed", err)
		}
		r.Close()

		msg.Payload = inflated
		msg.Compressed = false
	}

	return msg, nil
}
