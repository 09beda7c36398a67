package protocol

import (
	"bufio"
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/google/uuid"

	"vehicle-search/internal/common/errors"
	"vehicle-search/internal/models"
)

const DefaultTimeout = 5 * time.Second

// Client sends one query per connection to the Query Service.
type Client struct {
	address string
	timeout time.Duration
	dialer  net.Dialer
	newID   func() string
}

type Option func(*Client)

// WithIDGenerator replaces the uuid correlation ids.
func WithIDGenerator(gen func() string) Option {
	return func(c *Client) { c.newID = gen }
}

func NewClient(address string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		address: address,
		timeout: timeout,
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Address() string { return c.address }

// Query runs a parser filter set.
func (c *Client) Query(ctx context.Context, f models.FilterSet) (models.QueryResult, error) {
	return c.QueryVehicles(ctx, models.VehicleQuery{FilterSet: f})
}

// QueryVehicles runs a full vehicle query. The timeout covers dial,
// write and read. Failures are *errors.StandardError values with the
// TRANSPORT_FAILURE, QUERY_TIMEOUT, EMPTY_RESPONSE,
// PROTOCOL_DECODE_FAILED or REMOTE_ERROR codes.
func (c *Client) QueryVehicles(ctx context.Context, q models.VehicleQuery) (models.QueryResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	id := c.newID()
	req, err := NewQuery(id, q)
	if err != nil {
		return models.QueryResult{}, errors.NewInvalidFilterFormatError(err.Error())
	}

	conn, err := c.dialer.DialContext(ctx, "tcp", c.address)
	if err != nil {
		return models.QueryResult{}, c.ioError(ctx, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	if err := Encode(conn, req); err != nil {
		return models.QueryResult{}, c.ioError(ctx, err)
	}

	line, err := bufio.NewReaderSize(conn, 64*1024).ReadBytes('\n')
	if err != nil && !stderrors.Is(err, io.EOF) {
		return models.QueryResult{}, c.ioError(ctx, err)
	}
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return models.QueryResult{}, errors.NewEmptyResponseError()
	}

	return decodeResponse(id, line)
}

func decodeResponse(id string, line []byte) (models.QueryResult, error) {
	resp, err := Decode(line)
	if err != nil {
		return models.QueryResult{}, errors.NewProtocolDecodeError(err)
	}
	if resp.ID != id && !(resp.Kind == KindError && resp.ID == UnknownID) {
		return models.QueryResult{}, errors.NewProtocolDecodeError(
			fmt.Errorf("response id %q does not match request id %q", resp.ID, id))
	}

	switch resp.Kind {
	case KindError:
		var p ErrorPayload
		if err := resp.DecodePayload(&p); err != nil {
			return models.QueryResult{}, errors.NewProtocolDecodeError(err)
		}
		return models.QueryResult{}, errors.NewRemoteError(p.Message, p.Details)
	case KindResult:
		var r models.QueryResult
		if err := resp.DecodePayload(&r); err != nil {
			return models.QueryResult{}, errors.NewProtocolDecodeError(err)
		}
		if r.Items == nil {
			r.Items = []models.VehicleDTO{}
		}
		return r, nil
	default:
		return models.QueryResult{}, errors.NewProtocolDecodeError(
			fmt.Errorf("unexpected response kind %q", resp.Kind))
	}
}

// ioError classifies a dial, write or read failure.
func (c *Client) ioError(ctx context.Context, err error) error {
	var netErr net.Error
	if stderrors.Is(err, os.ErrDeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(stderrors.As(err, &netErr) && netErr.Timeout()) {
		return errors.NewQueryTimeoutError(fmt.Sprintf("query %s", c.address))
	}
	return errors.NewTransportFailureError(err)
}
