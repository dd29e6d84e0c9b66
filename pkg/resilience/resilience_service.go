package resilience

import (
	"context"

	"campusauth/pkg/logger"

	"go.uber.org/zap"
)

// ServiceResilience обеспечивает отказоустойчивость сервисных вызовов,
// комбинируя Circuit Breaker и retry.
type ServiceResilience struct {
	serviceName    string
	circuitBreaker *CircuitBreaker
	retry          *Retry
}

// NewServiceResilience создает новую обертку отказоустойчивости для сервиса.
func NewServiceResilience(serviceName string) *ServiceResilience {
	return NewServiceResilienceWithRetry(serviceName, DefaultRetryConfig())
}

// NewServiceResilienceWithRetry создает обертку с настроенным retry механизмом.
func NewServiceResilienceWithRetry(serviceName string, retryCfg RetryConfig) *ServiceResilience {
	return &ServiceResilience{
		serviceName:    serviceName,
		circuitBreaker: NewCircuitBreaker(serviceName, DefaultCircuitBreakerConfig()),
		retry:          NewRetry(serviceName, retryCfg),
	}
}

// Execute выполняет операцию с отказоустойчивостью.
func (r *ServiceResilience) Execute(
	ctx context.Context,
	operationName string,
	operation func() error,
) error {
	log := logger.Log(ctx).With(
		zap.String("service", r.serviceName),
		zap.String("operation", operationName),
	)
	log.Debug(ctx, "executing operation with resilience")

	return r.circuitBreaker.Execute(ctx, func() error {
		return r.retry.Execute(ctx, operation)
	})
}

// ExecuteWithResult выполняет операцию с отказоустойчивостью и возвращает результат.
func ExecuteWithResult[T any](
	ctx context.Context,
	r *ServiceResilience,
	operationName string,
	operation func() (T, error),
) (T, error) {
	var result T

	err := r.Execute(ctx, operationName, func() error {
		var opErr error
		result, opErr = operation()
		return opErr
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return result, nil
}
