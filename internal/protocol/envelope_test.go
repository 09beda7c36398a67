package protocol

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-search/internal/models"
)

func TestEncode_OneLineWithVersion(t *testing.T) {
	env, err := NewQuery("abc", models.VehicleQuery{FilterSet: models.FilterSet{
		Model: models.String("Corolla"), Limit: 20,
	}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, env))

	out := buf.String()
	assert.True(t, strings.HasSuffix(out, "\n"))
	assert.Equal(t, 1, strings.Count(out, "\n"))
	assert.Contains(t, out, `"protocol_mcp":"mcp-min-0.1"`)
	assert.Contains(t, out, `"payload":{"filters":{"model":"Corolla","limit":20}}`)
}

func TestEncode_KeepsNonASCII(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, NewError("x", "Mensagem não é 'query'.", nil)))
	assert.Contains(t, buf.String(), "Mensagem não é 'query'.")
	assert.Contains(t, buf.String(), `"details":null`)
}

func TestDecode_RoundTripsQuery(t *testing.T) {
	line := `{"kind":"query","id":"42","payload":{"filters":{"make":"Fiat","color":"preto","mileage_max":50000}}}`
	env, err := Decode([]byte(line + "\n"))
	require.NoError(t, err)
	assert.Equal(t, Version, env.Protocol)
	assert.Equal(t, KindQuery, env.Kind)

	var p QueryPayload
	require.NoError(t, env.DecodePayload(&p))
	assert.Equal(t, "Fiat", *p.Filters.Make)
	assert.Equal(t, "preto", *p.Filters.Color)
	assert.Equal(t, 50000, *p.Filters.MileageMax)
	assert.Equal(t, models.DefaultLimit, p.Filters.Limit)
}

func TestDecode_Rejects(t *testing.T) {
	for _, line := range []string{
		`not json`,
		`{"kind":"query"}`,
		`{"kind":"hello","id":"1","payload":{}}`,
		`{"protocol_mcp":"v2","kind":"query","id":"1","payload":{}}`,
	} {
		_, err := Decode([]byte(line))
		assert.Error(t, err, line)
	}
}

func TestNewResult_NilItemsBecomeEmptyArray(t *testing.T) {
	env, err := NewResult("1", models.QueryResult{})
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Payload, &raw))
	assert.Equal(t, []interface{}{}, raw["items"])
	assert.Equal(t, float64(0), raw["total"])
}

func TestNewError_UnencodableDetailsDropped(t *testing.T) {
	env := NewError("1", "falhou", make(chan int))
	var p ErrorPayload
	require.NoError(t, env.DecodePayload(&p))
	assert.Equal(t, "falhou", p.Message)
	assert.Nil(t, p.Details)
}

func TestNewLineScanner(t *testing.T) {
	sc := NewLineScanner(strings.NewReader("a\n\nb\n"))
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	assert.Equal(t, []string{"a", "", "b"}, lines)
}
