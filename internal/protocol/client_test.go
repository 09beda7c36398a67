package protocol

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-search/internal/common/errors"
	"vehicle-search/internal/models"
)

// fakeServer accepts one connection, reads one line and answers with
// whatever reply returns. A nil reply closes the connection silently.
func fakeServer(t *testing.T, reply func(req Envelope) []byte) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		line, err := bufio.NewReader(conn).ReadBytes('\n')
		if err != nil {
			return
		}
		req, err := Decode(line)
		if err != nil {
			return
		}
		if out := reply(req); out != nil {
			_, _ = conn.Write(out)
		}
	}()
	return ln.Addr().String()
}

func fixedID(id string) Option {
	return WithIDGenerator(func() string { return id })
}

// ==========================
// Success
// ==========================

func TestQuery_Result(t *testing.T) {
	var seen QueryPayload
	addr := fakeServer(t, func(req Envelope) []byte {
		_ = req.DecodePayload(&seen)
		return []byte(`{"protocol_mcp":"mcp-min-0.1","kind":"result","id":"` + req.ID +
			`","payload":{"items":[{"id":1,"make":"Toyota","model":"Corolla","year":2020,"color":"Prata","mileage_km":30000,"price":95000.5}],"total":1}}` + "\n")
	})

	c := NewClient(addr, time.Second)
	res, err := c.Query(context.Background(), models.FilterSet{Make: models.String("Toyota"), Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Corolla", res.Items[0].Model)
	assert.Equal(t, "Toyota", *seen.Filters.Make)
}

func TestQuery_ResultWithoutItems(t *testing.T) {
	addr := fakeServer(t, func(req Envelope) []byte {
		return []byte(`{"kind":"result","id":"` + req.ID + `","payload":{"total":0}}` + "\n")
	})
	res, err := NewClient(addr, time.Second).Query(context.Background(), models.NewFilterSet())
	require.NoError(t, err)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
}

// ==========================
// Failure mapping
// ==========================

func TestQuery_RemoteError(t *testing.T) {
	addr := fakeServer(t, func(req Envelope) []byte {
		return []byte(`{"kind":"error","id":"` + req.ID + `","payload":{"message":"no such table: cars","details":{"table":"cars"}}}` + "\n")
	})
	_, err := NewClient(addr, time.Second).Query(context.Background(), models.NewFilterSet())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeRemoteError))
	assert.Equal(t, "no such table: cars", errors.UserMessage(err))
}

func TestQuery_RemoteErrorWithUnknownID(t *testing.T) {
	addr := fakeServer(t, func(Envelope) []byte {
		return []byte(`{"kind":"error","id":"-","payload":{"message":"bad line"}}` + "\n")
	})
	_, err := NewClient(addr, time.Second).Query(context.Background(), models.NewFilterSet())
	assert.True(t, errors.HasCode(err, errors.ErrCodeRemoteError))
}

func TestQuery_EmptyResponse(t *testing.T) {
	addr := fakeServer(t, func(Envelope) []byte { return nil })
	_, err := NewClient(addr, time.Second).Query(context.Background(), models.NewFilterSet())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeEmptyResponse))
	assert.Equal(t, "Resposta vazia do servidor", errors.UserMessage(err))
}

func TestQuery_GarbageResponse(t *testing.T) {
	addr := fakeServer(t, func(Envelope) []byte { return []byte("{oops\n") })
	_, err := NewClient(addr, time.Second).Query(context.Background(), models.NewFilterSet())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeProtocolDecodeFailed))
	assert.Contains(t, errors.UserMessage(err), "Falha ao parsear resposta: ")
}

func TestQuery_MismatchedID(t *testing.T) {
	addr := fakeServer(t, func(Envelope) []byte {
		return []byte(`{"kind":"result","id":"other","payload":{"items":[],"total":0}}` + "\n")
	})
	_, err := NewClient(addr, time.Second, fixedID("mine")).Query(context.Background(), models.NewFilterSet())
	assert.True(t, errors.HasCode(err, errors.ErrCodeProtocolDecodeFailed))
}

func TestQuery_UnexpectedKind(t *testing.T) {
	addr := fakeServer(t, func(req Envelope) []byte {
		return []byte(`{"kind":"query","id":"` + req.ID + `","payload":{}}` + "\n")
	})
	_, err := NewClient(addr, time.Second).Query(context.Background(), models.NewFilterSet())
	assert.True(t, errors.HasCode(err, errors.ErrCodeProtocolDecodeFailed))
}

func TestQuery_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	_, err = NewClient(addr, time.Second).Query(context.Background(), models.NewFilterSet())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeTransportFailure))
}

func TestQuery_Timeout(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		<-done
	}()

	_, err = NewClient(ln.Addr().String(), 100*time.Millisecond).Query(context.Background(), models.NewFilterSet())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeQueryTimeout))
}

func TestNewClient_DefaultTimeout(t *testing.T) {
	c := NewClient("127.0.0.1:1", 0)
	assert.Equal(t, DefaultTimeout, c.timeout)
	assert.Equal(t, "127.0.0.1:1", c.Address())
}
