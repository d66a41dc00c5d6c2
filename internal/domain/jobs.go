package domain

import (
	"context"
	"time"
)

// AggregateCause описывает источник запроса на агрегацию.
type AggregateCause string

const (
	// AggregateCauseScheduled — агрегация запланирована по расписанию.
	AggregateCauseScheduled AggregateCause = "scheduled"
	// AggregateCauseManual — агрегация запущена вручную.
	AggregateCauseManual AggregateCause = "manual"
)

// AggregateJob содержит информацию о задаче пересчёта дневной статистики.
type AggregateJob struct {
	Date        time.Time      `json:"date"`
	RequestedAt time.Time      `json:"requested_at"`
	Cause       AggregateCause `json:"cause"`
}

// AggregateAckFunc подтверждает успешную обработку или запрашивает повтор доставки задачи.
type AggregateAckFunc func(success bool) error

// AggregateQueue описывает очередь задач агрегации.
type AggregateQueue interface {
	Enqueue(ctx context.Context, job AggregateJob) error
	Receive(ctx context.Context) (AggregateJob, AggregateAckFunc, error)
}
