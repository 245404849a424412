package services

import (
	"context"

	"stockanalyzer/clients/http_client"
)

type TickerServiceI interface {
	AllTickers(ctx context.Context) ([]string, error)
}

type tickerService struct {
	client *http_client.Client
}

func NewTickerService(client *http_client.Client) TickerServiceI {
	return &tickerService{client: client}
}

func (ts *tickerService) AllTickers(ctx context.Context) ([]string, error) {
	return ts.client.AllTickers(ctx)
}
