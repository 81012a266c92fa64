package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const serviceName = "orderbook.v1.OrderBook"

// OrderBookServer is the server API of the orderbook.v1.OrderBook service.
type OrderBookServer interface {
	PlaceOrder(context.Context, *PlaceOrderRequest) (*PlaceOrderResponse, error)
	BestBuy(context.Context, *BestRequest) (*Level, error)
	BestSell(context.Context, *BestRequest) (*Level, error)
	GetDepth(context.Context, *GetDepthRequest) (*GetDepthResponse, error)
}

func fullMethod(name string) string {
	return "/" + serviceName + "/" + name
}

func unary[Req, Resp any](name string, call func(OrderBookServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(OrderBookServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(OrderBookServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*OrderBookServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("PlaceOrder", OrderBookServer.PlaceOrder),
		unary("BestBuy", OrderBookServer.BestBuy),
		unary("BestSell", OrderBookServer.BestSell),
		unary("GetDepth", OrderBookServer.GetDepth),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "orderbook/v1/orderbook",
}

func RegisterOrderBookServer(s grpc.ServiceRegistrar, srv OrderBookServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client calls the OrderBook service using the JSON codec.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, name string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	if err := cc.Invoke(ctx, fullMethod(name), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PlaceOrder(ctx context.Context, in *PlaceOrderRequest, opts ...grpc.CallOption) (*PlaceOrderResponse, error) {
	return invoke[PlaceOrderResponse](ctx, c.cc, "PlaceOrder", in, opts)
}

func (c *Client) BestBuy(ctx context.Context, opts ...grpc.CallOption) (*Level, error) {
	return invoke[Level](ctx, c.cc, "BestBuy", &BestRequest{}, opts)
}

func (c *Client) BestSell(ctx context.Context, opts ...grpc.CallOption) (*Level, error) {
	return invoke[Level](ctx, c.cc, "BestSell", &BestRequest{}, opts)
}

func (c *Client) GetDepth(ctx context.Context, in *GetDepthRequest, opts ...grpc.CallOption) (*GetDepthResponse, error) {
	return invoke[GetDepthResponse](ctx, c.cc, "GetDepth", in, opts)
}
