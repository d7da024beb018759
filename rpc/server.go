package kitchenrpc

import (
	"context"
	"errors"
	"net"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"

	"kitchen"
	kitchenmsgpack "kitchen/msgpack"
)

var ServerFuncs = []string{
	"ToBaseUnit",
	"FromBaseUnit",
	"IsStockSufficient",
	"CalculateDeficit",
	"AvailableUnits",
	"BaseUnit",
	"FormatQuantityDisplay",
	"RegisterIngredient",
}

// Args carries the parameters of every server function. Each function reads
// the fields it needs.
type Args struct {
	Name             string                          `msgpack:"name,omitempty"`
	Quantity         float64                         `msgpack:"quantity,omitempty"`
	Unit             string                          `msgpack:"unit,omitempty"`
	RequiredQuantity float64                         `msgpack:"required_quantity,omitempty"`
	RequiredUnit     string                          `msgpack:"required_unit,omitempty"`
	BaseUnit         string                          `msgpack:"base_unit,omitempty"`
	Units            []kitchenmsgpack.UnitConversion `msgpack:"units,omitempty"`
}

type Result struct {
	Quantity   float64  `msgpack:"quantity,omitempty"`
	Unit       string   `msgpack:"unit,omitempty"`
	Sufficient bool     `msgpack:"sufficient,omitempty"`
	Found      bool     `msgpack:"found,omitempty"`
	Units      []string `msgpack:"units,omitempty"`
	Text       string   `msgpack:"text,omitempty"`
}

// Server answers conversion requests against one converter.
type Server struct {
	conv   *kitchen.Converter
	logger zerolog.Logger
}

func NewServer(conv *kitchen.Converter) *Server {
	return &Server{
		conv:   conv,
		logger: log.Logger.With().Str("component", "rpc").Logger(),
	}
}

func (s *Server) WithLogger(logger zerolog.Logger) *Server {
	s.logger = logger.With().Str("component", "rpc").Logger()
	return s
}

func errorCode(err error) int32 {
	switch {
	case errors.Is(err, kitchen.ErrUnresolved):
		return CodeUnresolved
	case errors.Is(err, kitchen.ErrInvalidEntry), errors.Is(err, kitchen.ErrInvalidQuantity):
		return CodeInvalidArgs
	default:
		return CodeExecFailed
	}
}

func (s *Server) execFailed(pkt *Packet, err error) *Packet {
	return NewResponse(pkt, errorCode(err), err.Error(), nil)
}

// ProcessPkt executes one request and returns its response. It never
// returns nil.
func (s *Server) ProcessPkt(pkt *Packet) *Packet {
	// layer 0, check func
	funcBytes, ok := pkt.H[KeyFunction]
	if !ok {
		return NewResponse(pkt, CodeNoFunc, ErrReqHasNoFunc.Error(), nil)
	}
	funcStr := string(funcBytes)
	if !slices.Contains(ServerFuncs, funcStr) {
		return NewResponse(pkt, CodeNoSuchFunc, ErrNoSuchFunc.Error(), nil)
	}

	// layer 1, check arg
	argBytes, ok := pkt.B[KeyArg]
	if !ok || len(argBytes) == 0 {
		return NewResponse(pkt, CodeNoArg, ErrReqHasNoArg.Error(), nil)
	}
	var args Args
	if err := msgpack.Unmarshal(argBytes, &args); err != nil {
		return NewResponse(pkt, CodeBadArg, err.Error(), nil)
	}

	// layer last
	var res Result
	switch funcStr {
	case "ToBaseUnit":
		q, err := s.conv.ToBaseUnit(args.Name, args.Quantity, args.Unit)
		if err != nil {
			return s.execFailed(pkt, err)
		}
		res.Quantity, res.Unit = q.Quantity, string(q.Unit)
	case "FromBaseUnit":
		v, err := s.conv.FromBaseUnit(args.Name, args.Quantity, args.Unit)
		if err != nil {
			return s.execFailed(pkt, err)
		}
		res.Quantity, res.Unit = v, args.Unit
	case "IsStockSufficient":
		res.Sufficient = s.conv.IsStockSufficient(args.Name, args.Quantity, args.Unit, args.RequiredQuantity, args.RequiredUnit)
	case "CalculateDeficit":
		d, err := s.conv.CalculateDeficit(args.Name, args.Quantity, args.Unit, args.RequiredQuantity, args.RequiredUnit)
		if err != nil {
			return s.execFailed(pkt, err)
		}
		res.Quantity, res.Unit = d.Deficit, string(d.Unit)
	case "AvailableUnits":
		res.Units = s.conv.AvailableUnits(args.Name)
	case "BaseUnit":
		bu, found := s.conv.BaseUnit(args.Name)
		res.Unit, res.Found = string(bu), found
	case "FormatQuantityDisplay":
		res.Text = s.conv.FormatQuantityDisplay(args.Name, args.Quantity, args.Unit)
	case "RegisterIngredient":
		units := make([]kitchen.UnitFactor, 0, len(args.Units))
		for _, u := range args.Units {
			units = append(units, kitchen.UnitFactor{Unit: u.Unit, Factor: u.Factor})
		}
		if err := s.conv.RegisterIngredient(args.Name, kitchen.BaseUnit(args.BaseUnit), units...); err != nil {
			return s.execFailed(pkt, err)
		}
		res.Found = true
	}

	b, err := msgpack.Marshal(&res)
	if err != nil {
		return NewResponse(pkt, CodeExecFailed, err.Error(), nil)
	}
	return NewResponse(pkt, CodeOK, "ok", b)
}

// Serve accepts connections on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("serving")
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.ServeConn(ctx, conn); err != nil {
				s.logger.Warn().Err(err).Str("remote", conn.RemoteAddr().String()).Msg("connection closed with error")
			}
		}()
	}
}

// ServeConn answers the requests arriving on conn until it is closed or ctx
// is done. It closes conn.
func (s *Server) ServeConn(ctx context.Context, conn net.Conn) error {
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	var pb PacketBuffer
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			pkts, ferr := pb.Feed(buf[:n])
			for _, pkt := range pkts {
				if werr := WritePacket(conn, s.ProcessPkt(pkt)); werr != nil {
					return werr
				}
			}
			if ferr != nil {
				return ferr
			}
		}
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) || isEOF(err) {
				return nil
			}
			return err
		}
	}
}
