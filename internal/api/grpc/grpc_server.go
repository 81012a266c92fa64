package grpc

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/olyamironova/orderbook/internal/core"
	"github.com/olyamironova/orderbook/internal/domain"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"
)

var _ OrderBookServer = (*GRPCServer)(nil)

type GRPCServer struct {
	Eng *core.Engine
	log *slog.Logger
}

func NewGRPCServer(eng *core.Engine, logger *slog.Logger) *GRPCServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &GRPCServer{Eng: eng, log: logger.With("component", "grpc")}
}

// NewServer builds a grpc.Server with the service and logging registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(LoggingInterceptor(s.log)))
	srv := grpc.NewServer(opts...)
	RegisterOrderBookServer(srv, s)
	return srv
}

// Serve runs until ctx is cancelled and then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.NewServer()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("grpc server listening", "addr", lis.Addr().String())
		errCh <- srv.Serve(lis)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	srv.GracefulStop()
	if err := <-errCh; err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	s.log.Info("grpc server stopped")
	return nil
}

func (s *GRPCServer) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*PlaceOrderResponse, error) {
	side, err := domain.ParseSide(req.Side)
	if err != nil {
		return nil, toStatus(err)
	}
	exec, err := s.Eng.PlaceOrder(ctx, side, domain.Price(req.Price), domain.Quantity(req.Quantity))
	if err != nil {
		return nil, toStatus(err)
	}

	trades := make([]*Trade, 0, len(exec.Trades))
	for _, t := range exec.Trades {
		trades = append(trades, &Trade{
			Id:         t.ID,
			Price:      int64(t.Price),
			Quantity:   int64(t.Quantity),
			MakerOrder: t.MakerID,
			TakerOrder: t.TakerID,
			TakerSide:  string(t.TakerSide),
			ExecutedAt: TimeToProto(t.ExecutedAt),
		})
	}
	return &PlaceOrderResponse{
		OrderId:   exec.Order.ID,
		Requested: int64(exec.Requested),
		Filled:    int64(exec.Filled()),
		Remaining: int64(exec.Order.Quantity),
		Status:    string(exec.Status()),
		Trades:    trades,
	}, nil
}

func (s *GRPCServer) BestBuy(ctx context.Context, _ *BestRequest) (*Level, error) {
	lvl, ok := s.Eng.BestBuy(ctx)
	if !ok {
		return nil, status.Error(codes.NotFound, "no bids")
	}
	return toLevel(lvl), nil
}

func (s *GRPCServer) BestSell(ctx context.Context, _ *BestRequest) (*Level, error) {
	lvl, ok := s.Eng.BestSell(ctx)
	if !ok {
		return nil, status.Error(codes.NotFound, "no asks")
	}
	return toLevel(lvl), nil
}

func (s *GRPCServer) GetDepth(ctx context.Context, req *GetDepthRequest) (*GetDepthResponse, error) {
	if req.Depth < 0 {
		return nil, status.Errorf(codes.InvalidArgument, "depth must be >= 0, got %d", req.Depth)
	}
	snap := s.Eng.CachedDepth(ctx, int(req.Depth))
	return &GetDepthResponse{
		Symbol:    snap.Symbol,
		Bids:      toLevels(snap.Bids),
		Asks:      toLevels(snap.Asks),
		Timestamp: TimeToProto(snap.Timestamp),
	}, nil
}

func toLevel(l domain.Level) *Level {
	return &Level{Price: int64(l.Price), Quantity: int64(l.Quantity), Orders: int32(l.Orders)}
}

func toLevels(levels []domain.Level) []*Level {
	res := make([]*Level, 0, len(levels))
	for _, l := range levels {
		res = append(res, toLevel(l))
	}
	return res
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidSide),
		errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrQuantityOverflow):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Errorf(codes.Internal, "place order: %v", err)
	}
}

func TimeToProto(t time.Time) *timestamppb.Timestamp {
	return timestamppb.New(t)
}

// LoggingInterceptor logs every unary call with its method, duration and code.
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		level := slog.LevelDebug
		if err != nil {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "rpc",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration", time.Since(start),
		)
		return resp, err
	}
}
