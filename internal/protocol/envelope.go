// Package protocol implements the JSON-Lines message format spoken
// between the vehicle Query Service and its clients: one envelope per
// line, correlated by id.
package protocol

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"vehicle-search/internal/common/validation"
	"vehicle-search/internal/models"
)

const Version = "mcp-min-0.1"

const (
	KindQuery  = "query"
	KindResult = "result"
	KindError  = "error"
)

// UnknownID answers a line whose own id could not be read.
const UnknownID = "-"

// MaxLineBytes caps a single message.
const MaxLineBytes = 1 << 20

type Envelope struct {
	Protocol string          `json:"protocol_mcp"`
	Kind     string          `json:"kind"`
	ID       string          `json:"id"`
	Payload  json.RawMessage `json:"payload"`
}

type QueryPayload struct {
	Filters models.VehicleQuery `json:"filters"`
}

// ErrorPayload always carries details, null when there are none.
type ErrorPayload struct {
	Message string      `json:"message"`
	Details interface{} `json:"details"`
}

func newEnvelope(kind, id string, payload interface{}) (Envelope, error) {
	raw, err := marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", kind, err)
	}
	return Envelope{Protocol: Version, Kind: kind, ID: id, Payload: raw}, nil
}

func NewQuery(id string, q models.VehicleQuery) (Envelope, error) {
	return newEnvelope(KindQuery, id, QueryPayload{Filters: q})
}

func NewResult(id string, r models.QueryResult) (Envelope, error) {
	if r.Items == nil {
		r.Items = []models.VehicleDTO{}
	}
	return newEnvelope(KindResult, id, r)
}

// NewError never fails: details that cannot be encoded are dropped.
func NewError(id, message string, details interface{}) Envelope {
	env, err := newEnvelope(KindError, id, ErrorPayload{Message: message, Details: details})
	if err != nil {
		env, _ = newEnvelope(KindError, id, ErrorPayload{Message: message})
	}
	return env
}

// DecodePayload unmarshals the payload into v.
func (e Envelope) DecodePayload(v interface{}) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("envelope %s has no payload", e.ID)
	}
	return json.Unmarshal(e.Payload, v)
}

// Decode parses and validates one line.
func Decode(line []byte) (Envelope, error) {
	line = bytes.TrimSpace(line)
	if res := validation.ValidateEnvelope(line); !res.Valid {
		return Envelope{}, fmt.Errorf("invalid envelope: %s", res.Error())
	}
	var env Envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return Envelope{}, err
	}
	if env.Protocol == "" {
		env.Protocol = Version
	}
	return env, nil
}

// Encode writes env followed by a newline. Non-ASCII text is written as is.
func Encode(w io.Writer, env Envelope) error {
	if env.Protocol == "" {
		env.Protocol = Version
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(env)
}

// NewLineScanner splits a stream into message lines.
func NewLineScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)
	return sc
}

func marshal(v interface{}) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
