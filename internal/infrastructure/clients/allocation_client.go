package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	apperrors "github.com/wms-platform/fulfillment-service/pkg/errors"
	"github.com/wms-platform/fulfillment-service/pkg/logging"

	"github.com/wms-platform/fulfillment-service/internal/domain"
)

// allocationRequest is the payload sent to the allocation engine
type allocationRequest struct {
	OrderID    string                  `json:"orderId"`
	WaveID     string                  `json:"waveId,omitempty"`
	StrategyID string                  `json:"strategyId"`
	Rules      domain.StrategyRules    `json:"rules"`
	Lines      []allocationRequestLine `json:"lines"`
}

type allocationRequestLine struct {
	LineNo     int     `json:"lineNo"`
	SKU        string  `json:"sku"`
	UOM        string  `json:"uom"`
	QtyOrdered float64 `json:"qtyOrdered"`
}

// AllocationEngineClient calls the external allocation engine over HTTP.
// Implements domain.AllocationEngine. Calls run through a circuit breaker so
// a struggling engine sheds load instead of queueing requests.
type AllocationEngineClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *logging.Logger
}

// NewAllocationEngineClient creates a new AllocationEngineClient
func NewAllocationEngineClient(baseURL string, logger *logging.Logger) *AllocationEngineClient {
	settings := gobreaker.Settings{
		Name:        "allocation-engine",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String())
		},
	}

	return &AllocationEngineClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

// Allocate asks the engine to reserve inventory for one order under the
// given strategy. A shortage is reported in the result lines, never as an
// error; errors mean the engine could not be consulted at all.
func (c *AllocationEngineClient) Allocate(ctx context.Context, order *domain.Order, strategy *domain.AllocationStrategy) (*domain.AllocationResult, error) {
	payload := allocationRequest{
		OrderID:    order.OrderID,
		WaveID:     order.WaveID,
		StrategyID: strategy.StrategyID,
		Rules:      strategy.Rules,
		Lines:      make([]allocationRequestLine, len(order.Lines)),
	}
	for i, l := range order.Lines {
		payload.Lines[i] = allocationRequestLine{
			LineNo:     l.LineNo,
			SKU:        l.SKU,
			UOM:        l.UOM,
			QtyOrdered: l.QtyOrdered,
		}
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doAllocate(ctx, payload)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.logger.Warn("Allocation engine circuit open", "orderId", order.OrderID)
			return nil, apperrors.ErrServiceUnavailable("allocation engine")
		}
		return nil, err
	}

	return result.(*domain.AllocationResult), nil
}

func (c *AllocationEngineClient) doAllocate(ctx context.Context, payload allocationRequest) (*domain.AllocationResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal allocation request: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/allocations", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call allocation engine: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("allocation engine returned status %d", resp.StatusCode)
	}

	var result domain.AllocationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode allocation response: %w", err)
	}

	return &result, nil
}
