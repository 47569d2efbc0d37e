package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrNotObject is returned when a payload that must be an object is not
var ErrNotObject = errors.New("payload is not an object")

// Codec turns envelopes into frames and back. Binary codecs are written
// as websocket binary messages.
type Codec interface {
	Name() string
	Binary() bool
	Encode(env Envelope) ([]byte, error)
	// Decode splits a frame into its type and still-encoded payload
	Decode(frame []byte) (t string, payload []byte, err error)
	Unmarshal(payload []byte, v interface{}) error
}

var (
	JSON    Codec = jsonCodec{}
	Msgpack Codec = msgpackCodec{}
)

// CodecByName resolves the ?codec= query value. Empty selects JSON.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSON, nil
	case "msgpack":
		return Msgpack, nil
	}
	return nil, fmt.Errorf("unknown codec %q", name)
}

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }
func (jsonCodec) Binary() bool { return false }

func (jsonCodec) Encode(env Envelope) ([]byte, error) {
	if env.T == "" {
		return nil, fmt.Errorf("encode: empty message type")
	}
	return json.Marshal(env)
}

func (jsonCodec) Decode(frame []byte) (string, []byte, error) {
	if len(frame) == 0 {
		return "", nil, fmt.Errorf("decode: empty frame")
	}
	var env InEnvelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return "", nil, err
	}
	return env.T, env.D, nil
}

func (jsonCodec) Unmarshal(payload []byte, v interface{}) error {
	return json.Unmarshal(payload, v)
}

// msgpackCodec reuses the json struct tags so both codecs share one schema
type msgpackCodec struct{}

type msgpackInEnvelope struct {
	T string             `json:"t"`
	D msgpack.RawMessage `json:"d,omitempty"`
}

func (msgpackCodec) Name() string { return "msgpack" }
func (msgpackCodec) Binary() bool { return true }

func (msgpackCodec) Encode(env Envelope) ([]byte, error) {
	if env.T == "" {
		return nil, fmt.Errorf("encode: empty message type")
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(env); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c msgpackCodec) Decode(frame []byte) (string, []byte, error) {
	if len(frame) == 0 {
		return "", nil, fmt.Errorf("decode: empty frame")
	}
	var env msgpackInEnvelope
	if err := c.Unmarshal(frame, &env); err != nil {
		return "", nil, err
	}
	return env.T, env.D, nil
}

func (msgpackCodec) Unmarshal(payload []byte, v interface{}) error {
	dec := msgpack.NewDecoder(bytes.NewReader(payload))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}

// DecodePayload unmarshals payload into a fresh T
func DecodePayload[T any](c Codec, payload []byte) (T, error) {
	var out T
	if len(payload) == 0 {
		return out, fmt.Errorf("empty payload")
	}
	err := c.Unmarshal(payload, &out)
	return out, err
}

// DecodeInput parses an input payload. Anything other than a JSON object
// is rejected; missing flags default to false.
func DecodeInput(payload json.RawMessage) (InputMsg, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return InputMsg{}, ErrNotObject
	}
	var in InputMsg
	if err := json.Unmarshal(trimmed, &in); err != nil {
		return InputMsg{}, fmt.Errorf("input: %w", err)
	}
	return in, nil
}
