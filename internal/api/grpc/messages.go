package grpc

import (
	"google.golang.org/protobuf/types/known/timestamppb"
)

type PlaceOrderRequest struct {
	Side     string `json:"side"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
}

type PlaceOrderResponse struct {
	OrderId   string   `json:"order_id"`
	Requested int64    `json:"requested"`
	Filled    int64    `json:"filled"`
	Remaining int64    `json:"remaining"`
	Status    string   `json:"status"`
	Trades    []*Trade `json:"trades"`
}

type Trade struct {
	Id         string                 `json:"id"`
	Price      int64                  `json:"price"`
	Quantity   int64                  `json:"quantity"`
	MakerOrder string                 `json:"maker_order"`
	TakerOrder string                 `json:"taker_order"`
	TakerSide  string                 `json:"taker_side"`
	ExecutedAt *timestamppb.Timestamp `json:"executed_at"`
}

type BestRequest struct{}

type Level struct {
	Price    int64 `json:"price"`
	Quantity int64 `json:"quantity"`
	Orders   int32 `json:"orders"`
}

type GetDepthRequest struct {
	Depth int32 `json:"depth"`
}

type GetDepthResponse struct {
	Symbol    string                 `json:"symbol"`
	Bids      []*Level               `json:"bids"`
	Asks      []*Level               `json:"asks"`
	Timestamp *timestamppb.Timestamp `json:"timestamp"`
}
