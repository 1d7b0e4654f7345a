package main

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wms-platform/fulfillment-service/pkg/logging"
	"github.com/wms-platform/fulfillment-service/pkg/middleware"

	"github.com/wms-platform/fulfillment-service/internal/application"
	"github.com/wms-platform/fulfillment-service/internal/domain"
)

func createOrderHandler(service *application.OrderApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			OrderNumber         string     `json:"orderNumber" binding:"required"`
			CustomerID          string     `json:"customerId" binding:"required"`
			OrderType           string     `json:"orderType" binding:"required"`
			Priority            int        `json:"priority" binding:"required"`
			RequestedDeliveryAt *time.Time `json:"requestedDeliveryAt"`
			Notes               string     `json:"notes"`
			Lines               []struct {
				SKU        string  `json:"sku" binding:"required"`
				UOM        string  `json:"uom"`
				QtyOrdered float64 `json:"qtyOrdered" binding:"required"`
			} `json:"lines" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		cmd := application.CreateOrderCommand{
			OrderNumber:         req.OrderNumber,
			CustomerID:          req.CustomerID,
			OrderType:           req.OrderType,
			Priority:            req.Priority,
			RequestedDeliveryAt: req.RequestedDeliveryAt,
			Notes:               req.Notes,
		}
		for _, l := range req.Lines {
			cmd.Lines = append(cmd.Lines, application.CreateOrderLine{
				SKU:        l.SKU,
				UOM:        l.UOM,
				QtyOrdered: l.QtyOrdered,
			})
		}

		order, err := service.CreateOrder(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusCreated, order)
	}
}

func getOrderHandler(service *application.OrderApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		query := application.GetOrderQuery{OrderID: c.Param("orderId")}
		order, err := service.GetOrder(c.Request.Context(), query)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

func listOrdersByStatusHandler(service *application.OrderApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		status := c.Param("status")
		if !domain.OrderStatus(status).IsValid() {
			responder.RespondBadRequest("invalid order status: " + status)
			return
		}

		orders, err := service.ListOrdersByStatus(c.Request.Context(), application.ListOrdersByStatusQuery{Status: status})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": orders, "count": len(orders)})
	}
}

func resolveStrategyHandler(service *application.OrderApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		query := application.GetOrderQuery{OrderID: c.Param("orderId")}
		strategy, err := service.ResolveStrategyForOrder(c.Request.Context(), query)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, strategy)
	}
}

func verifyOrderHandler(service *application.OrderApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return orderTransitionHandler(logger, func(c *gin.Context) (*application.OrderDTO, error) {
		return service.VerifyOrder(c.Request.Context(), application.OrderTransitionCommand{OrderID: c.Param("orderId")})
	})
}

func allocateOrderHandler(service *application.OrderApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			StrategyID string `json:"strategyId"`
		}
		// Body is optional; without one the strategy is resolved
		_ = c.ShouldBindJSON(&req)

		cmd := application.AllocateOrderCommand{
			OrderID:    c.Param("orderId"),
			StrategyID: req.StrategyID,
		}
		result, err := service.AllocateOrder(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func acceptShortagesHandler(service *application.OrderApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return orderTransitionHandler(logger, func(c *gin.Context) (*application.OrderDTO, error) {
		return service.AcceptShortages(c.Request.Context(), application.OrderTransitionCommand{OrderID: c.Param("orderId")})
	})
}

func releaseOrderHandler(service *application.OrderApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return orderTransitionHandler(logger, func(c *gin.Context) (*application.OrderDTO, error) {
		return service.ReleaseOrder(c.Request.Context(), application.OrderTransitionCommand{OrderID: c.Param("orderId")})
	})
}

func cancelOrderHandler(service *application.OrderApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Reason string `json:"reason"`
		}
		_ = c.ShouldBindJSON(&req)

		cmd := application.CancelOrderCommand{OrderID: c.Param("orderId"), Reason: req.Reason}
		order, err := service.CancelOrder(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

func shipOrderHandler(service *application.OrderApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return orderTransitionHandler(logger, func(c *gin.Context) (*application.OrderDTO, error) {
		return service.MarkShipped(c.Request.Context(), application.OrderTransitionCommand{OrderID: c.Param("orderId")})
	})
}

func lineProgressHandler(service *application.OrderApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		lineNo, err := strconv.Atoi(c.Param("lineNo"))
		if err != nil {
			responder.RespondBadRequest("invalid line number")
			return
		}

		var req struct {
			QtyPicked  float64 `json:"qtyPicked"`
			QtyPacked  float64 `json:"qtyPacked"`
			QtyShipped float64 `json:"qtyShipped"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		cmd := application.RecordLineProgressCommand{
			OrderID:    c.Param("orderId"),
			LineNo:     lineNo,
			QtyPicked:  req.QtyPicked,
			QtyPacked:  req.QtyPacked,
			QtyShipped: req.QtyShipped,
		}
		order, err := service.RecordLineProgress(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

func orderTransitionHandler(logger *logging.Logger, fn func(*gin.Context) (*application.OrderDTO, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		order, err := fn(c)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

func bulkAllocateHandler(service *application.BulkOperationService, logger *logging.Logger) gin.HandlerFunc {
	return bulkHandler(logger, service.BulkAllocate)
}

func bulkReleaseHandler(service *application.BulkOperationService, logger *logging.Logger) gin.HandlerFunc {
	return bulkHandler(logger, service.BulkRelease)
}

func bulkCancelHandler(service *application.BulkOperationService, logger *logging.Logger) gin.HandlerFunc {
	return bulkHandler(logger, service.BulkCancel)
}

func bulkHandler(logger *logging.Logger, fn func(context.Context, application.BulkOperationCommand) (*application.BulkResultDTO, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			OrderIDs []string `json:"orderIds" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		result, err := fn(c.Request.Context(), application.BulkOperationCommand{OrderIDs: req.OrderIDs})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		// Best-effort: the call is a 200 even when some items failed
		c.JSON(http.StatusOK, result)
	}
}

func simulateWaveHandler(bundler *application.WaveBundler, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			WaveType string              `json:"waveType" binding:"required"`
			Criteria waveCriteriaRequest `json:"criteria"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		cmd := application.SimulateWaveCommand{
			WaveType: req.WaveType,
			Criteria: req.Criteria.toDomain(),
		}
		sim, err := bundler.SimulateWave(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, sim)
	}
}

func commitWaveHandler(bundler *application.WaveBundler, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			WaveName   string              `json:"waveName"`
			WaveType   string              `json:"waveType" binding:"required"`
			StrategyID string              `json:"strategyId"`
			Criteria   waveCriteriaRequest `json:"criteria"`
			OrderIDs   []string            `json:"orderIds" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		cmd := application.CommitWaveCommand{
			WaveName:   req.WaveName,
			WaveType:   req.WaveType,
			StrategyID: req.StrategyID,
			Criteria:   req.Criteria.toDomain(),
			OrderIDs:   req.OrderIDs,
		}
		result, err := bundler.CommitWave(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusCreated, result)
	}
}

func listWavesHandler(service *application.WaveExecutionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		query := application.ListWavesQuery{Status: c.Query("status")}
		waves, err := service.ListWaves(c.Request.Context(), query)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": waves, "count": len(waves)})
	}
}

func getWaveHandler(service *application.WaveExecutionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		query := application.GetWaveQuery{WaveID: c.Param("waveId")}
		detail, err := service.GetWave(c.Request.Context(), query)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, detail)
	}
}

func addOrdersToWaveHandler(service *application.WaveExecutionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			OrderIDs []string `json:"orderIds" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		cmd := application.AddOrdersToWaveCommand{WaveID: c.Param("waveId"), OrderIDs: req.OrderIDs}
		result, err := service.AddOrdersToWave(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func allocateWaveHandler(service *application.WaveExecutionService, logger *logging.Logger) gin.HandlerFunc {
	return waveTransitionHandler(logger, func(c *gin.Context) (*application.WaveDTO, error) {
		return service.AllocateWave(c.Request.Context(), application.WaveTransitionCommand{WaveID: c.Param("waveId")})
	})
}

func releaseWaveHandler(service *application.WaveExecutionService, logger *logging.Logger) gin.HandlerFunc {
	return waveTransitionHandler(logger, func(c *gin.Context) (*application.WaveDTO, error) {
		return service.ReleaseWave(c.Request.Context(), application.WaveTransitionCommand{WaveID: c.Param("waveId")})
	})
}

func completeWaveHandler(service *application.WaveExecutionService, logger *logging.Logger) gin.HandlerFunc {
	return waveTransitionHandler(logger, func(c *gin.Context) (*application.WaveDTO, error) {
		return service.CompleteWave(c.Request.Context(), application.WaveTransitionCommand{WaveID: c.Param("waveId")})
	})
}

func cancelWaveHandler(service *application.WaveExecutionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Reason string `json:"reason"`
		}
		_ = c.ShouldBindJSON(&req)

		cmd := application.CancelWaveCommand{WaveID: c.Param("waveId"), Reason: req.Reason}
		wave, err := service.CancelWave(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, wave)
	}
}

func waveTransitionHandler(logger *logging.Logger, fn func(*gin.Context) (*application.WaveDTO, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		wave, err := fn(c)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, wave)
	}
}

func listStrategiesHandler(service *application.OrderApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		strategies, err := service.ListStrategies(c.Request.Context())
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": strategies, "count": len(strategies)})
	}
}

// waveCriteriaRequest is the request-body shape of wave selection criteria
type waveCriteriaRequest struct {
	DeliveryDateFrom *time.Time `json:"deliveryDateFrom"`
	DeliveryDateTo   *time.Time `json:"deliveryDateTo"`
	CustomerID       string     `json:"customerId"`
	OrderType        string     `json:"orderType"`
	MaxPriority      int        `json:"maxPriority"`
}

func (r waveCriteriaRequest) toDomain() domain.WaveCriteria {
	return domain.WaveCriteria{
		DeliveryDateFrom: r.DeliveryDateFrom,
		DeliveryDateTo:   r.DeliveryDateTo,
		CustomerID:       r.CustomerID,
		OrderType:        domain.OrderType(r.OrderType),
		MaxPriority:      r.MaxPriority,
	}
}
