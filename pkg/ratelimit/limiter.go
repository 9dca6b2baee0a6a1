package ratelimit

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/vfg2006/ppc-automation/internal/domain"
)

// Limiter é o token bucket compartilhado por todas as requisições de saída.
// As reservas são atendidas em ordem de chegada, então nenhum chamador fica
// esperando enquanto há tokens disponíveis.
type Limiter struct {
	lim   *rate.Limiter
	burst int
}

func New(perSecond float64, burst int) *Limiter {
	return &Limiter{
		lim:   rate.NewLimiter(rate.Limit(perSecond), burst),
		burst: burst,
	}
}

// Acquire bloqueia até n tokens estarem disponíveis ou o contexto ser cancelado
func (l *Limiter) Acquire(ctx context.Context, n int) error {
	if n < 1 {
		n = 1
	}
	if n > l.burst {
		return domain.NewValidationError("rate_limit_burst", "cannot acquire %d tokens with burst %d", n, l.burst)
	}
	return l.lim.WaitN(ctx, n)
}

func (l *Limiter) Rate() float64 {
	return float64(l.lim.Limit())
}

func (l *Limiter) Burst() int {
	return l.burst
}
