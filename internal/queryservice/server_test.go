package queryservice

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-search/internal/common/errors"
	"vehicle-search/internal/common/logger"
	"vehicle-search/internal/models"
	"vehicle-search/internal/protocol"
)

func startServer(t *testing.T, store Store, opts ...ServerOption) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	srv := NewServer(store, logger.NewTestLogger(t), opts...)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("server did not stop")
		}
	})
	return ln.Addr().String()
}

// rawSession sends lines on one connection and reads one response per request.
type rawSession struct {
	conn   net.Conn
	reader *bufio.Reader
}

func dial(t *testing.T, addr string) *rawSession {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	_ = conn.SetDeadline(time.Now().Add(2 * time.Second))
	return &rawSession{conn: conn, reader: bufio.NewReader(conn)}
}

func (s *rawSession) roundTrip(t *testing.T, line string) protocol.Envelope {
	t.Helper()
	_, err := s.conn.Write([]byte(line + "\n"))
	require.NoError(t, err)
	resp, err := s.reader.ReadBytes('\n')
	require.NoError(t, err)
	env, err := protocol.Decode(resp)
	require.NoError(t, err)
	return env
}

func errorMessage(t *testing.T, env protocol.Envelope) string {
	t.Helper()
	require.Equal(t, protocol.KindError, env.Kind)
	var p protocol.ErrorPayload
	require.NoError(t, env.DecodePayload(&p))
	return p.Message
}

// ==========================
// Through the client
// ==========================

func TestServer_SQLiteThroughClient(t *testing.T) {
	addr := startServer(t, newSQLiteStore(t))
	client := protocol.NewClient(addr, 2*time.Second)

	res, err := client.Query(context.Background(), models.FilterSet{BodyType: models.String("SUV"), Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, "HR-V", res.Items[0].Model)

	res, err = client.Query(context.Background(), models.FilterSet{Make: models.String("Ferrari"), Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total)
	assert.NotNil(t, res.Items)
}

func TestServer_StoreErrorBecomesRemoteError(t *testing.T) {
	addr := startServer(t, StoreFunc(func(context.Context, models.VehicleQuery) ([]models.Vehicle, error) {
		return nil, assert.AnError
	}))

	_, err := protocol.NewClient(addr, 2*time.Second).Query(context.Background(), models.NewFilterSet())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeRemoteError))
	assert.Equal(t, assert.AnError.Error(), errors.UserMessage(err))
}

func TestServer_StoreTimeout(t *testing.T) {
	addr := startServer(t, StoreFunc(func(ctx context.Context, _ models.VehicleQuery) ([]models.Vehicle, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}), WithRequestTimeout(20*time.Millisecond))

	s := dial(t, addr)
	env := s.roundTrip(t, `{"kind":"query","id":"slow","payload":{"filters":{}}}`)
	assert.Equal(t, "slow", env.ID)
	assert.Equal(t, context.DeadlineExceeded.Error(), errorMessage(t, env))

	var p protocol.ErrorPayload
	require.NoError(t, env.DecodePayload(&p))
	assert.Equal(t, "QUERY_TIMEOUT", p.Details.(map[string]interface{})["code"])
}

// ==========================
// Raw protocol
// ==========================

func TestServer_OneResponsePerLineAndSurvivesBadInput(t *testing.T) {
	seen := make(chan models.VehicleQuery, 1)
	addr := startServer(t, StoreFunc(func(_ context.Context, q models.VehicleQuery) ([]models.Vehicle, error) {
		seen <- q
		return fixtureVehicles()[:1], nil
	}))
	s := dial(t, addr)

	env := s.roundTrip(t, "this is not json")
	assert.Equal(t, protocol.UnknownID, env.ID)
	errorMessage(t, env)

	env = s.roundTrip(t, `{"kind":"result","id":"r1","payload":{}}`)
	assert.Equal(t, "r1", env.ID)
	assert.Equal(t, "Mensagem não é 'query'.", errorMessage(t, env))

	env = s.roundTrip(t, `{"kind":"query","id":"bad","payload":{"filters":{"year_min":"2018"}}}`)
	assert.Equal(t, "bad", env.ID)
	assert.Contains(t, errorMessage(t, env), "year_min")

	// blank lines get no answer; the next real request still does
	_, err := s.conn.Write([]byte("\n   \n"))
	require.NoError(t, err)

	env = s.roundTrip(t, `{"protocol_mcp":"mcp-min-0.1","kind":"query","id":"ok","payload":{"filters":{"make":"Toyota","mileage_max":40000}}}`)
	assert.Equal(t, protocol.KindResult, env.Kind)
	assert.Equal(t, "ok", env.ID)
	assert.Equal(t, protocol.Version, env.Protocol)

	var r models.QueryResult
	require.NoError(t, env.DecodePayload(&r))
	assert.Equal(t, 1, r.Total)
	q := <-seen
	assert.Equal(t, "Toyota", *q.Make)
	assert.Equal(t, 40000, *q.MileageMax)
}

func TestServer_MissingFiltersMeansEverything(t *testing.T) {
	addr := startServer(t, newSQLiteStore(t))
	env := dial(t, addr).roundTrip(t, `{"kind":"query","id":"all","payload":{}}`)

	var r models.QueryResult
	require.NoError(t, env.DecodePayload(&r))
	assert.Equal(t, len(fixtureVehicles()), r.Total)
}

func TestServer_ConcurrentClients(t *testing.T) {
	addr := startServer(t, newSQLiteStore(t))
	client := protocol.NewClient(addr, 2*time.Second)

	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func() {
			_, err := client.Query(context.Background(), models.FilterSet{State: models.String("SP"), Limit: 20})
			errs <- err
		}()
	}
	for i := 0; i < 10; i++ {
		assert.NoError(t, <-errs)
	}
}

func TestServer_CloseStopsServe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := NewServer(StoreFunc(func(context.Context, models.VehicleQuery) ([]models.Vehicle, error) {
		return nil, nil
	}), logger.NewNoOpLogger())

	done := make(chan error, 1)
	go func() { done <- srv.Serve(context.Background(), ln) }()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		srv.mu.Lock()
		defer srv.mu.Unlock()
		return len(srv.conns) == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, srv.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
}
