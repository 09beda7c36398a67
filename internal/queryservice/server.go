package queryservice

import (
	"bytes"
	"context"
	stderrors "errors"
	"net"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"vehicle-search/internal/common/errors"
	"vehicle-search/internal/common/logger"
	"vehicle-search/internal/common/metrics"
	"vehicle-search/internal/common/observability"
	"vehicle-search/internal/common/validation"
	"vehicle-search/internal/models"
	"vehicle-search/internal/protocol"
)

const msgNotQuery = "Mensagem não é 'query'."

// Server answers every request line with exactly one response line and
// stays up whatever the request contains.
type Server struct {
	store   Store
	timeout time.Duration
	logger  logger.Logger
	obs     *observability.Observability

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	wg       sync.WaitGroup
}

type ServerOption func(*Server)

func WithObservability(obs *observability.Observability) ServerOption {
	return func(s *Server) { s.obs = obs }
}

// WithRequestTimeout bounds each store query.
func WithRequestTimeout(d time.Duration) ServerOption {
	return func(s *Server) { s.timeout = d }
}

func NewServer(store Store, log logger.Logger, opts ...ServerOption) *Server {
	s := &Server{
		store:   store,
		timeout: 10 * time.Second,
		logger:  log.WithFields(map[string]interface{}{"component": "query-server"}),
		conns:   make(map[net.Conn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListenAndServe binds addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.NewTransportFailureError(err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln, one goroutine each, until ctx is
// cancelled or Close is called. Open connections are closed on the way out.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("query server listening", map[string]interface{}{"address": ln.Addr().String()})

	stop := context.AfterFunc(ctx, func() { _ = s.Close() })
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || stderrors.Is(err, net.ErrClosed) {
				s.wg.Wait()
				return nil
			}
			s.logger.Warn("accept failed", map[string]interface{}{"error": err.Error()})
			continue
		}
		s.track(conn, true)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.track(conn, false)
			s.handleConn(ctx, conn)
		}()
	}
}

// Close stops accepting and drops open connections.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	for c := range s.conns {
		_ = c.Close()
	}
	return err
}

func (s *Server) track(c net.Conn, add bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		s.conns[c] = struct{}{}
		return
	}
	delete(s.conns, c)
	_ = c.Close()
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	remote := conn.RemoteAddr().String()
	s.logger.Debug("connection opened", map[string]interface{}{"remote": remote})

	sc := protocol.NewLineScanner(conn)
	for sc.Scan() {
		line := sc.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		resp := s.Handle(ctx, line)
		if err := protocol.Encode(conn, resp); err != nil {
			s.logger.Warn("write failed", map[string]interface{}{"remote": remote, "error": err.Error()})
			return
		}
	}
	if err := sc.Err(); err != nil && !stderrors.Is(err, net.ErrClosed) {
		s.logger.Warn("read failed", map[string]interface{}{"remote": remote, "error": err.Error()})
	}
	s.logger.Debug("connection closed", map[string]interface{}{"remote": remote})
}

// Handle turns one request line into its response envelope.
func (s *Server) Handle(ctx context.Context, line []byte) protocol.Envelope {
	ctx, span := s.obs.StartSpan(ctx, "query-service.request")
	defer span.End()

	env, err := protocol.Decode(line)
	if err != nil {
		s.obs.RecordRequest(ctx, "invalid", metrics.StatusError)
		return protocol.NewError(protocol.UnknownID, err.Error(),
			map[string]interface{}{"code": string(errors.ErrCodeInvalidInput)})
	}
	span.SetAttributes(attribute.String("request.id", env.ID), attribute.String("request.kind", env.Kind))

	if env.Kind != protocol.KindQuery {
		s.obs.RecordRequest(ctx, env.Kind, metrics.StatusError)
		return protocol.NewError(env.ID, msgNotQuery, nil)
	}

	if res := validation.ValidateQueryPayload(env.Payload); !res.Valid {
		s.obs.RecordRequest(ctx, env.Kind, metrics.StatusError)
		return errorEnvelope(env.ID, errors.NewInvalidFilterFormatError(res.Error()))
	}
	var payload protocol.QueryPayload
	if err := env.DecodePayload(&payload); err != nil {
		s.obs.RecordRequest(ctx, env.Kind, metrics.StatusError)
		return protocol.NewError(env.ID, err.Error(),
			map[string]interface{}{"code": string(errors.ErrCodeInvalidFilterFormat)})
	}

	result, err := s.query(ctx, payload.Filters)
	if err != nil {
		s.obs.RecordRequest(ctx, env.Kind, metrics.StatusError)
		span.RecordError(err)
		stdErr, _ := errors.AsStandardError(err)
		return errorEnvelope(env.ID, stdErr)
	}

	resp, err := protocol.NewResult(env.ID, result)
	if err != nil {
		return protocol.NewError(env.ID, err.Error(), map[string]interface{}{"code": string(errors.ErrCodeInternal)})
	}
	s.obs.RecordRequest(ctx, env.Kind, resultStatus(result))
	return resp
}

// query runs the store with the request timeout and classifies failures.
func (s *Server) query(ctx context.Context, q models.VehicleQuery) (models.QueryResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	rows, err := s.store.Query(ctx, q)
	elapsed := time.Since(start)

	if err != nil {
		var stdErr *errors.StandardError
		switch {
		case stderrors.Is(ctx.Err(), context.DeadlineExceeded):
			stdErr = errors.NewQueryTimeoutError("query cars")
			stdErr.Details = err.Error()
		default:
			var ok bool
			if stdErr, ok = errors.AsStandardError(err); !ok {
				stdErr = errors.NewQueryExecutionFailedError("store", err)
				stdErr.Details = err.Error()
			}
		}
		metrics.RecordQuery(elapsed, 0, stdErr)
		s.logger.Error("query failed", map[string]interface{}{
			"error":     err.Error(),
			"errorCode": string(stdErr.Code),
			"filters":   q.FilterSet.String(),
		})
		return models.QueryResult{}, stdErr
	}

	result := models.NewQueryResult(rows)
	metrics.RecordQuery(elapsed, result.Total, nil)
	s.logger.Debug("query served", map[string]interface{}{
		"total":     result.Total,
		"elapsedMs": elapsed.Milliseconds(),
	})
	return result, nil
}

func resultStatus(r models.QueryResult) string {
	if r.Total == 0 {
		return metrics.StatusEmpty
	}
	return metrics.StatusOK
}

// errorEnvelope reports the underlying failure text, falling back to the
// generic message, and tags the code in details.
func errorEnvelope(id string, stdErr *errors.StandardError) protocol.Envelope {
	msg := stdErr.Details
	if msg == "" {
		msg = stdErr.Message
	}
	return protocol.NewError(id, msg, map[string]interface{}{"code": string(stdErr.Code)})
}
