package application

import "github.com/wms-platform/fulfillment-service/internal/domain"

func toOrderDTO(o *domain.Order) OrderDTO {
	lines := make([]OrderLineDTO, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = OrderLineDTO{
			LineNo:       l.LineNo,
			SKU:          l.SKU,
			UOM:          l.UOM,
			QtyOrdered:   l.QtyOrdered,
			QtyAllocated: l.QtyAllocated,
			QtyPicked:    l.QtyPicked,
			QtyPacked:    l.QtyPacked,
			QtyShipped:   l.QtyShipped,
			Status:       string(l.Status),
		}
	}
	return OrderDTO{
		OrderID:             o.OrderID,
		OrderNumber:         o.OrderNumber,
		CustomerID:          o.CustomerID,
		OrderType:           string(o.OrderType),
		Priority:            o.Priority,
		Status:              string(o.Status),
		Lines:               lines,
		HasShortage:         o.HasShortage(),
		WaveID:              o.WaveID,
		StrategyID:          o.StrategyID,
		RequestedDeliveryAt: o.RequestedDeliveryAt,
		Notes:               o.Notes,
		TotalOrdered:        o.Metrics.TotalOrdered,
		TotalAllocated:      o.Metrics.TotalAllocated,
		TotalPicked:         o.Metrics.TotalPicked,
		TotalShipped:        o.Metrics.TotalShipped,
		Version:             o.Version,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
}

func toAllocationResultDTO(o *domain.Order) AllocationResultDTO {
	var short []int
	for _, l := range o.Lines {
		if l.QtyAllocated < l.QtyOrdered {
			short = append(short, l.LineNo)
		}
	}
	return AllocationResultDTO{
		OrderID:     o.OrderID,
		StrategyID:  o.StrategyID,
		Status:      string(o.Status),
		HasShortage: o.HasShortage(),
		ShortLines:  short,
		Order:       toOrderDTO(o),
	}
}

func toWaveOrderDTO(wo domain.WaveOrder) WaveOrderDTO {
	return WaveOrderDTO{
		OrderID:             wo.OrderID,
		OrderNumber:         wo.OrderNumber,
		CustomerID:          wo.CustomerID,
		OrderType:           string(wo.OrderType),
		Priority:            wo.Priority,
		LineCount:           wo.LineCount,
		TotalQty:            wo.TotalQty,
		RequestedDeliveryAt: wo.RequestedDeliveryAt,
	}
}

func toCriteriaDTO(c domain.WaveCriteria) CriteriaDTO {
	return CriteriaDTO{
		DeliveryDateFrom: c.DeliveryDateFrom,
		DeliveryDateTo:   c.DeliveryDateTo,
		CustomerID:       c.CustomerID,
		OrderType:        string(c.OrderType),
		MaxPriority:      c.MaxPriority,
	}
}

func toWaveDTO(w *domain.Wave) WaveDTO {
	orders := make([]WaveOrderDTO, len(w.Orders))
	for i, wo := range w.Orders {
		orders[i] = toWaveOrderDTO(wo)
	}
	return WaveDTO{
		WaveID:       w.WaveID,
		WaveNumber:   w.WaveNumber,
		WaveType:     string(w.WaveType),
		Status:       string(w.Status),
		StrategyID:   w.StrategyID,
		StrategyName: w.StrategyName,
		Criteria:     toCriteriaDTO(w.Criteria),
		Orders:       orders,
		OrderCount:   w.OrderCount(),
		TotalLines:   w.TotalLines(),
		TotalQty:     w.TotalQty(),
		Version:      w.Version,
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
		ReleasedAt:   w.ReleasedAt,
		CompletedAt:  w.CompletedAt,
	}
}

func toPickTaskDTO(t domain.PickTask) PickTaskDTO {
	return PickTaskDTO{
		TaskID:     t.TaskID,
		WaveID:     t.WaveID,
		OrderID:    t.OrderID,
		SKU:        t.SKU,
		LocationID: t.LocationID,
		QtyToPick:  t.QtyToPick,
		QtyPicked:  t.QtyPicked,
		Status:     string(t.Status),
		AssigneeID: t.AssigneeID,
	}
}

func toStrategyDTO(s *domain.AllocationStrategy) StrategyDTO {
	types := make([]string, len(s.OrderTypes))
	for i, t := range s.OrderTypes {
		types[i] = string(t)
	}
	return StrategyDTO{
		StrategyID:       s.StrategyID,
		Name:             s.Name,
		Description:      s.Description,
		Active:           s.Active,
		PickingType:      string(s.PickingType),
		PickingPolicy:    s.Rules.PickingPolicy,
		SplitMode:        string(s.Rules.SplitMode),
		MaxSplits:        s.Rules.MaxSplits,
		OrderTypes:       types,
		MaxOrderPriority: s.MaxOrderPriority,
		Priority:         s.Priority,
	}
}

func summarizeOrder(o *domain.Order) domain.WaveOrder {
	return domain.WaveOrder{
		OrderID:             o.OrderID,
		OrderNumber:         o.OrderNumber,
		CustomerID:          o.CustomerID,
		OrderType:           o.OrderType,
		Priority:            o.Priority,
		LineCount:           len(o.Lines),
		TotalQty:            o.TotalOrdered(),
		RequestedDeliveryAt: o.RequestedDeliveryAt,
	}
}
