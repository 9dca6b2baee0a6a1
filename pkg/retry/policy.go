package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/vfg2006/ppc-automation/internal/domain"
	"github.com/vfg2006/ppc-automation/pkg/metrics"
)

// Policy aplica backoff exponencial com jitter (backoff.ExponentialBackOff,
// multiplicador 2). Os atrasos são limitados a MaxDelay e nunca diminuem
// entre tentativas; Retry-After de um 429 eleva o atraso até o limite.
type Policy struct {
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	MaxAttempts    int
	JitterFraction float64

	retryable func(err error) bool
	newTimer  func() backoff.Timer
}

func NewPolicy(base, max time.Duration, maxAttempts int, jitterFraction float64) *Policy {
	return &Policy{
		BaseDelay:      base,
		MaxDelay:       max,
		MaxAttempts:    maxAttempts,
		JitterFraction: jitterFraction,
		retryable:      domain.IsRetryable,
	}
}

// RateLimitOnly devolve uma cópia da política que só reexecuta 429. Usada em
// criações, que não são idempotentes: após um 5xx ou timeout não há como saber
// se a entidade foi criada.
func (p *Policy) RateLimitOnly() *Policy {
	cp := *p
	cp.retryable = func(err error) bool {
		return domain.IsRetryable(err) && errors.Is(err, domain.ErrRateLimitExceeded)
	}
	return &cp
}

func (p *Policy) shouldRetry(err error) bool {
	if p.retryable == nil {
		return domain.IsRetryable(err)
	}
	return p.retryable(err)
}

func (p *Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// backOff monta a sequência de atrasos de uma chamada. last aponta para a
// última falha, lida para respeitar Retry-After.
func (p *Policy) backOff(ctx context.Context, last *error) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.BaseDelay
	exp.MaxInterval = p.MaxDelay
	exp.Multiplier = 2
	exp.RandomizationFactor = p.JitterFraction
	exp.MaxElapsedTime = 0
	exp.Reset()

	b := &cappedBackOff{
		BackOff: backoff.WithMaxRetries(exp, uint64(p.attempts()-1)),
		max:     p.MaxDelay,
		last:    last,
	}
	return backoff.WithContext(b, ctx)
}

// cappedBackOff limita cada atraso a max, eleva-o ao Retry-After da última
// falha e não deixa o jitter reduzir o atraso em relação ao anterior
type cappedBackOff struct {
	backoff.BackOff
	max  time.Duration
	last *error
	prev time.Duration
}

func (b *cappedBackOff) NextBackOff() time.Duration {
	next := b.BackOff.NextBackOff()
	if next == backoff.Stop {
		return backoff.Stop
	}

	if after := domain.RetryAfter(*b.last); after > next {
		next = after
	}
	if next > b.max {
		next = b.max
	}
	if next < b.prev {
		next = b.prev
	}
	b.prev = next
	return next
}

func (b *cappedBackOff) Reset() {
	b.prev = 0
	b.BackOff.Reset()
}

// Do executa fn até obter sucesso, um erro não reexecutável ou esgotar as tentativas.
// Ao esgotar, devolve um FatalAPIError envolvendo a última falha.
func Do[T any](ctx context.Context, p *Policy, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	var (
		lastErr  error
		attempts int
	)

	op := func() (T, error) {
		var zero T
		if err := ctx.Err(); err != nil {
			return zero, backoff.Permanent(err)
		}

		attempts++
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !p.shouldRetry(err) {
			return zero, backoff.Permanent(err)
		}
		return zero, err
	}

	notify := func(err error, delay time.Duration) {
		logrus.WithFields(logrus.Fields{
			"operation": operation,
			"attempt":   attempts,
			"delay":     delay.String(),
			"error":     err.Error(),
		}).Warn("retry: tentativa falhou, aguardando nova tentativa")
		metrics.APIRetries.WithLabelValues(operation).Inc()
	}

	var timer backoff.Timer
	if p.newTimer != nil {
		timer = p.newTimer()
	}

	result, err := backoff.RetryNotifyWithTimerAndData(op, p.backOff(ctx, &lastErr), notify, timer)
	if err != nil && p.shouldRetry(err) {
		return result, domain.NewFatalAPIError(operation, attempts, err)
	}
	return result, err
}

// Run é a versão de Do para operações sem retorno
func Run(ctx context.Context, p *Policy, operation string, fn func(ctx context.Context) error) error {
	_, err := Do(ctx, p, operation, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
