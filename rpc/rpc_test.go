package kitchenrpc_test

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"kitchen"
	kitchenrpc "kitchen/rpc"
)

func newServer(t *testing.T) *kitchenrpc.Server {
	t.Helper()
	conv := kitchen.NewConverter(kitchen.DefaultTable(), kitchen.WithLogger(zerolog.Nop()))
	return kitchenrpc.NewServer(conv).WithLogger(zerolog.Nop())
}

func TestPacketBufferReassembles(t *testing.T) {
	var stream bytes.Buffer
	for _, fn := range []string{"ToBaseUnit", "BaseUnit", "AvailableUnits"} {
		pkt, _, err := kitchenrpc.NewRequest(fn, &kitchenrpc.Args{Name: "beras"})
		require.NoError(t, err)
		require.NoError(t, kitchenrpc.WritePacket(&stream, pkt))
	}
	data := stream.Bytes()

	var pb kitchenrpc.PacketBuffer
	var got []*kitchenrpc.Packet
	// feed in small chunks that split packets
	for len(data) > 0 {
		n := min(7, len(data))
		pkts, err := pb.Feed(data[:n])
		require.NoError(t, err)
		got = append(got, pkts...)
		data = data[n:]
	}
	require.Len(t, got, 3)
	assert.Equal(t, "ToBaseUnit", string(got[0].H[kitchenrpc.KeyFunction]))
	assert.Equal(t, "AvailableUnits", string(got[2].H[kitchenrpc.KeyFunction]))
	assert.Zero(t, pb.Len())
}

func TestProcessPkt_Errors(t *testing.T) {
	s := newServer(t)

	resp := s.ProcessPkt(&kitchenrpc.Packet{})
	code, err := resp.Code()
	require.NoError(t, err)
	assert.Equal(t, kitchenrpc.CodeNoFunc, code)

	req, _, err := kitchenrpc.NewRequest("DropTables", &kitchenrpc.Args{})
	require.NoError(t, err)
	code, _ = s.ProcessPkt(req).Code()
	assert.Equal(t, kitchenrpc.CodeNoSuchFunc, code)

	req, _, err = kitchenrpc.NewRequest("ToBaseUnit", nil)
	require.NoError(t, err)
	code, _ = s.ProcessPkt(req).Code()
	assert.Equal(t, kitchenrpc.CodeNoArg, code)

	req, id, err := kitchenrpc.NewRequest("ToBaseUnit", &kitchenrpc.Args{Name: "unknown item", Quantity: 5, Unit: "kg"})
	require.NoError(t, err)
	resp = s.ProcessPkt(req)
	code, _ = resp.Code()
	assert.Equal(t, kitchenrpc.CodeUnresolved, code)
	respID, err := resp.ID()
	require.NoError(t, err)
	assert.Equal(t, id, respID)
}

func TestProcessPkt_ToBaseUnit(t *testing.T) {
	s := newServer(t)

	req, _, err := kitchenrpc.NewRequest("ToBaseUnit", &kitchenrpc.Args{Name: "Beras", Quantity: 2, Unit: "KG"})
	require.NoError(t, err)
	resp := s.ProcessPkt(req)
	code, err := resp.Code()
	require.NoError(t, err)
	require.Equal(t, kitchenrpc.CodeOK, code)

	var res kitchenrpc.Result
	require.NoError(t, msgpack.Unmarshal(resp.B[kitchenrpc.KeyResult], &res))
	assert.Equal(t, 2000.0, res.Quantity)
	assert.Equal(t, "gram", res.Unit)
}

func TestClientOverPipe(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	serverConn, clientConn := net.Pipe()
	s := newServer(t)
	done := make(chan error, 1)
	go func() { done <- s.ServeConn(ctx, serverConn) }()

	c := kitchenrpc.NewClient(clientConn)

	q, err := c.ToBaseUnit(ctx, "beras", 2, "kg")
	require.NoError(t, err)
	assert.Equal(t, kitchen.Quantity{Quantity: 2000, Unit: kitchen.Gram}, q)

	v, err := c.FromBaseUnit(ctx, "beras", 1500, "kg")
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)

	ok, err := c.IsStockSufficient(ctx, "garam", 1, "sdt", 6, "gram")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.IsStockSufficient(ctx, "telur ayam", 0, "butir", 2, "butir")
	require.NoError(t, err)
	assert.False(t, ok)

	d, err := c.CalculateDeficit(ctx, "bawang merah", 1, "siung", 3, "siung")
	require.NoError(t, err)
	assert.Equal(t, kitchen.Deficit{Deficit: 30, Unit: kitchen.Gram}, d)

	units, err := c.AvailableUnits(ctx, "unknown item")
	require.NoError(t, err)
	assert.Equal(t, []string{}, units)

	bu, found, err := c.BaseUnit(ctx, "santan")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, kitchen.ML, bu)

	text, err := c.FormatQuantityDisplay(ctx, "beras", 2, "kg")
	require.NoError(t, err)
	assert.Equal(t, "2 kg", text)

	require.NoError(t, c.RegisterIngredient(ctx, "daun salam", kitchen.Gram, kitchen.UnitFactor{Unit: "lembar", Factor: 2}))
	q, err = c.ToBaseUnit(ctx, "daun salam", 3, "lembar")
	require.NoError(t, err)
	assert.Equal(t, 6.0, q.Quantity)

	_, err = c.ToBaseUnit(ctx, "unknown item", 5, "kg")
	require.ErrorIs(t, err, kitchen.ErrUnresolved)
	var remote *kitchenrpc.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, kitchenrpc.CodeUnresolved, remote.Code)

	err = c.RegisterIngredient(ctx, "aneh", kitchen.BaseUnit("ons"))
	require.ErrorIs(t, err, kitchen.ErrInvalidEntry)

	require.NoError(t, c.Close())
	require.NoError(t, <-done)
}

func TestServeStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	s := newServer(t)
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	c, err := kitchenrpc.Dial(ctx, "tcp", ln.Addr().String())
	require.NoError(t, err)
	q, err := c.ToBaseUnit(ctx, "air", 1, "liter")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, q.Quantity)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	_ = c.Close()
}
