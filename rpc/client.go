package kitchenrpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"kitchen"
	kitchenmsgpack "kitchen/msgpack"
)

// RemoteError is a non-zero response code with its message.
type RemoteError struct {
	Code    int32
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Unwrap maps well known codes back to the library's sentinel errors.
func (e *RemoteError) Unwrap() error {
	switch e.Code {
	case CodeUnresolved:
		return kitchen.ErrUnresolved
	case CodeInvalidArgs:
		return kitchen.ErrInvalidEntry
	case CodeNoSuchFunc:
		return ErrNoSuchFunc
	}
	return nil
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

// Client calls a Server over one connection. Calls are serialized.
type Client struct {
	mutex   sync.Mutex
	conn    net.Conn
	pb      PacketBuffer
	pending []*Packet
}

func NewClient(conn net.Conn) *Client {
	return &Client{conn: conn}
}

func Dial(ctx context.Context, network, addr string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	return NewClient(conn), nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Call sends fn with args and waits for the response with the same id.
func (c *Client) Call(ctx context.Context, fn string, args Args) (Result, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	req, id, err := NewRequest(fn, &args)
	if err != nil {
		return Result{}, err
	}

	stop := context.AfterFunc(ctx, func() { c.conn.Close() })
	defer stop()

	if err := WritePacket(c.conn, req); err != nil {
		return Result{}, c.ctxErr(ctx, err)
	}
	resp, err := c.wait(id)
	if err != nil {
		return Result{}, c.ctxErr(ctx, err)
	}

	code, err := resp.Code()
	if err != nil {
		return Result{}, err
	}
	if code != CodeOK {
		return Result{}, &RemoteError{Code: code, Message: string(resp.B[KeyMessage])}
	}
	var res Result
	if b, ok := resp.B[KeyResult]; ok {
		if err := msgpack.Unmarshal(b, &res); err != nil {
			return Result{}, err
		}
	}
	return res, nil
}

func (c *Client) ctxErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (c *Client) wait(id uuid.UUID) (*Packet, error) {
	buf := make([]byte, 4096)
	for {
		for len(c.pending) > 0 {
			pkt := c.pending[0]
			c.pending = c.pending[1:]
			if pid, err := pkt.ID(); err == nil && pid == id {
				return pkt, nil
			}
		}
		n, err := c.conn.Read(buf)
		if n > 0 {
			pkts, ferr := c.pb.Feed(buf[:n])
			c.pending = append(c.pending, pkts...)
			if ferr != nil {
				return nil, ferr
			}
			if len(pkts) > 0 {
				continue
			}
		}
		if err != nil {
			return nil, err
		}
	}
}

func (c *Client) ToBaseUnit(ctx context.Context, name string, qty float64, unit string) (kitchen.Quantity, error) {
	res, err := c.Call(ctx, "ToBaseUnit", Args{Name: name, Quantity: qty, Unit: unit})
	if err != nil {
		return kitchen.Quantity{}, err
	}
	return kitchen.Quantity{Quantity: res.Quantity, Unit: kitchen.BaseUnit(res.Unit)}, nil
}

func (c *Client) FromBaseUnit(ctx context.Context, name string, baseQty float64, targetUnit string) (float64, error) {
	res, err := c.Call(ctx, "FromBaseUnit", Args{Name: name, Quantity: baseQty, Unit: targetUnit})
	if err != nil {
		return 0, err
	}
	return res.Quantity, nil
}

func (c *Client) IsStockSufficient(ctx context.Context, name string, stockQty float64, stockUnit string, requiredQty float64, requiredUnit string) (bool, error) {
	res, err := c.Call(ctx, "IsStockSufficient", Args{
		Name: name, Quantity: stockQty, Unit: stockUnit,
		RequiredQuantity: requiredQty, RequiredUnit: requiredUnit,
	})
	if err != nil {
		return false, err
	}
	return res.Sufficient, nil
}

func (c *Client) CalculateDeficit(ctx context.Context, name string, stockQty float64, stockUnit string, requiredQty float64, requiredUnit string) (kitchen.Deficit, error) {
	res, err := c.Call(ctx, "CalculateDeficit", Args{
		Name: name, Quantity: stockQty, Unit: stockUnit,
		RequiredQuantity: requiredQty, RequiredUnit: requiredUnit,
	})
	if err != nil {
		return kitchen.Deficit{}, err
	}
	return kitchen.Deficit{Deficit: res.Quantity, Unit: kitchen.BaseUnit(res.Unit)}, nil
}

func (c *Client) AvailableUnits(ctx context.Context, name string) ([]string, error) {
	res, err := c.Call(ctx, "AvailableUnits", Args{Name: name})
	if err != nil {
		return nil, err
	}
	if res.Units == nil {
		return []string{}, nil
	}
	return res.Units, nil
}

func (c *Client) BaseUnit(ctx context.Context, name string) (kitchen.BaseUnit, bool, error) {
	res, err := c.Call(ctx, "BaseUnit", Args{Name: name})
	if err != nil {
		return "", false, err
	}
	return kitchen.BaseUnit(res.Unit), res.Found, nil
}

func (c *Client) FormatQuantityDisplay(ctx context.Context, name string, qty float64, unit string) (string, error) {
	res, err := c.Call(ctx, "FormatQuantityDisplay", Args{Name: name, Quantity: qty, Unit: unit})
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

func (c *Client) RegisterIngredient(ctx context.Context, name string, base kitchen.BaseUnit, units ...kitchen.UnitFactor) error {
	args := Args{Name: name, BaseUnit: string(base)}
	for _, u := range units {
		args.Units = append(args.Units, kitchenmsgpack.UnitConversion{Unit: u.Unit, Factor: u.Factor})
	}
	_, err := c.Call(ctx, "RegisterIngredient", args)
	return err
}
