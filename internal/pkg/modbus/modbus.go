package modbus

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	gomodbus "github.com/goburrow/modbus"
	"go.uber.org/zap"
)

// ErrConnect marks a TCP-level connect failure.
var ErrConnect = errors.New("connection failed")

// ErrTransport marks an operation that failed after its single retry.
var ErrTransport = errors.New("transport error")

// DefaultTimeout bounds every individual network operation.
const DefaultTimeout = 10 * time.Second

// conn is the subset of the goburrow client the transport needs.
type conn interface {
	ReadHoldingRegisters(address, quantity uint16) ([]byte, error)
	WriteSingleRegister(address, value uint16) ([]byte, error)
}

// Client maintains a single persistent Modbus TCP connection to the
// controller. On any I/O error the connection is torn down and the next
// operation dials again; there is no background reconnect loop. All
// operations are serialized through one mutex, the goburrow client is not
// safe for concurrent use and poll and command I/O must not interleave.
type Client struct {
	mu      sync.Mutex
	address string
	unitID  byte
	timeout time.Duration
	logger  *zap.Logger
	dial    func(address string) (conn, io.Closer, error)
	conn    conn
	closer  io.Closer
}

func New(unitID byte, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		unitID:  unitID,
		timeout: timeout,
		logger:  zap.L(),
	}
	c.dial = c.dialTCP
	return c
}

func (c *Client) dialTCP(address string) (conn, io.Closer, error) {
	handler := gomodbus.NewTCPClientHandler(address)
	handler.Timeout = c.timeout
	handler.SlaveId = c.unitID
	if err := handler.Connect(); err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrConnect, address, err)
	}
	return gomodbus.NewClient(handler), handler, nil
}

// Connect points the client at an address ("ip:port"). An existing
// connection to a different address is closed; dialing happens lazily on the
// first operation so a dead device does not block reconfiguration.
func (c *Client) Connect(address string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.address == address {
		return
	}
	c.teardown()
	c.address = address
}

// ReadHoldingRegisters reads count registers starting at start and returns
// them decoded from wire byte order.
func (c *Client) ReadHoldingRegisters(start, count uint16) ([]uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := c.do(func(cn conn) ([]byte, error) {
		return cn.ReadHoldingRegisters(start, count)
	})
	if err != nil {
		return nil, err
	}
	if len(data) != int(count)*2 {
		c.teardown()
		return nil, fmt.Errorf("%w: short read: got %d bytes, want %d", ErrTransport, len(data), count*2)
	}
	regs := make([]uint16, count)
	for i := range regs {
		regs[i] = binary.BigEndian.Uint16(data[2*i:])
	}
	return regs, nil
}

// WriteRegister writes a single holding register. The device echo is the only
// acknowledgement; confirming the effect is the poll coordinator's job.
func (c *Client) WriteRegister(address, value uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.do(func(cn conn) ([]byte, error) {
		return cn.WriteSingleRegister(address, value)
	})
	return err
}

// do runs one operation with the retry-once policy: any failure tears the
// connection down and a single further attempt is made on a fresh one.
func (c *Client) do(op func(conn) ([]byte, error)) ([]byte, error) {
	if c.address == "" {
		return nil, fmt.Errorf("%w: no address configured", ErrConnect)
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if c.conn == nil {
			cn, closer, err := c.dial(c.address)
			if err != nil {
				lastErr = err
				continue
			}
			c.conn = cn
			c.closer = closer
		}

		data, err := op(c.conn)
		if err == nil {
			return data, nil
		}
		lastErr = err
		c.logger.Debug("modbus operation failed, dropping connection",
			zap.String("address", c.address), zap.Int("attempt", attempt), zap.Error(err))
		c.teardown()
	}
	if errors.Is(lastErr, ErrConnect) {
		return nil, fmt.Errorf("%w: %v", ErrTransport, lastErr)
	}
	return nil, fmt.Errorf("%w: %s: %v", ErrTransport, c.address, lastErr)
}

func (c *Client) teardown() {
	if c.closer != nil {
		_ = c.closer.Close()
	}
	c.conn = nil
	c.closer = nil
}

// Close drops the connection. The client remains usable, the next operation
// dials again.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardown()
	return nil
}
