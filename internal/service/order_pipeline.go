package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/alexanderjung3838-wq/roboentrega/internal/adapter/meli"
	"github.com/alexanderjung3838-wq/roboentrega/internal/domain"
	"github.com/alexanderjung3838-wq/roboentrega/internal/repository"
)

// TopicOrders is the only webhook topic the pipeline acts on.
const TopicOrders = "orders_v2"

// OrderPipeline resolves webhook order events and messages buyers of paid
// orders. Work runs detached from the webhook request: failures are logged
// and dropped, never surfaced to the marketplace.
type OrderPipeline struct {
	creds   *CredentialService
	api     meli.API
	rules   *RuleTable
	ledger  repository.ProcessedOrderLedger
	timeout time.Duration
	logger  *zap.Logger
}

// NewOrderPipeline wires the resolve-and-dispatch pipeline. timeout bounds
// each event's processing end to end.
func NewOrderPipeline(creds *CredentialService, api meli.API, rules *RuleTable, ledger repository.ProcessedOrderLedger, timeout time.Duration, logger *zap.Logger) *OrderPipeline {
	if logger == nil {
		logger = zap.L()
	}
	if ledger == nil {
		ledger = repository.NoopLedger{}
	}
	return &OrderPipeline{
		creds:   creds,
		api:     api,
		rules:   rules,
		ledger:  ledger,
		timeout: timeout,
		logger:  logger,
	}
}

// Dispatch hands a webhook event to the pipeline. Events outside TopicOrders
// are dropped. Qualifying events are processed on their own goroutine with an
// independent deadline; the caller never waits on the outcome.
func (p *OrderPipeline) Dispatch(topic, resource string) {
	if topic != TopicOrders {
		p.logger.Debug("ignoring notification",
			zap.String("topic", topic),
			zap.String("resource", resource))
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		if err := p.Process(ctx, resource); err != nil {
			p.logger.Error("order event processing failed",
				zap.String("resource", resource),
				zap.Error(err))
		}
	}()
}

// Process fetches the order behind a resource reference and, when it is paid
// and not yet handled, sends the buyer the rule-selected message.
func (p *OrderPipeline) Process(ctx context.Context, resource string) error {
	token, err := p.creds.AccessToken(ctx)
	if err != nil {
		return fmt.Errorf("acquire token: %w", err)
	}

	order, err := p.api.FetchOrder(ctx, token, resource)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrOrderFetchFailed, err)
	}

	if order.Status != domain.StatusPaid {
		p.logger.Info("skipping unpaid order",
			zap.Int64("order_id", order.ID),
			zap.String("status", order.Status))
		return nil
	}

	first, err := p.ledger.MarkProcessed(ctx, order.ID)
	if err != nil {
		// A duplicate message beats a silent miss, so ledger errors fail open.
		p.logger.Warn("processed-order ledger unavailable",
			zap.Int64("order_id", order.ID),
			zap.Error(err))
	} else if !first {
		p.logger.Info("order already messaged, skipping",
			zap.Int64("order_id", order.ID))
		return nil
	}

	msg := domain.OutboundMessage{
		From: order.Seller.ID,
		To:   order.Buyer.ID,
		Text: p.rules.Select(order),
	}
	if err := p.api.SendMessage(ctx, token, order.MessagePackID(), order.Seller.ID, msg); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDispatchFailed, err)
	}

	p.logger.Info("buyer message sent",
		zap.Int64("order_id", order.ID),
		zap.Int64("pack_id", order.MessagePackID()),
		zap.Int64("buyer_id", order.Buyer.ID))
	return nil
}
