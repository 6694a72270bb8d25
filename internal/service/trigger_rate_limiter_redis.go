package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// TriggerDecision es la respuesta del limitador para un pedido de corrida manual.
type TriggerDecision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// TriggerRateLimiter acota cuantas corridas manuales puede pedir un operador por ventana.
type TriggerRateLimiter interface {
	Allow(ctx context.Context, operator string) TriggerDecision
}

// Ventana fija: el primer disparo fija la expiracion, los siguientes solo cuentan.
const triggerWindowScript = `
local used = redis.call("INCR", KEYS[1])
if used == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {used, redis.call("PTTL", KEYS[1])}
`

const triggerKeyPrefix = "curation:trigger:"

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type redisTriggerRateLimiter struct {
	client redisEvaler
	window time.Duration
	max    int
}

// NewRedisTriggerRateLimiter devuelve nil sin cliente; el handler trata nil como "sin limite".
func NewRedisTriggerRateLimiter(client *redis.Client, window time.Duration, max int) TriggerRateLimiter {
	if client == nil {
		return nil
	}
	return newTriggerLimiter(client, window, max)
}

func newTriggerLimiter(client redisEvaler, window time.Duration, max int) *redisTriggerRateLimiter {
	if window <= 0 {
		window = time.Hour
	}
	if max <= 0 {
		max = 1
	}
	return &redisTriggerRateLimiter{client: client, window: window, max: max}
}

// Allow falla abierto si Redis no responde: el disparo manual ya exige token de operador.
func (l *redisTriggerRateLimiter) Allow(ctx context.Context, operator string) TriggerDecision {
	open := TriggerDecision{Allowed: true}
	if l == nil || l.client == nil {
		return open
	}
	operator = strings.ToLower(strings.TrimSpace(operator))
	if operator == "" {
		return TriggerDecision{RetryAfter: l.window}
	}

	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	res, err := l.client.Eval(ctx, triggerWindowScript, []string{triggerKeyPrefix + operator}, l.window.Milliseconds()).Int64Slice()
	if err != nil || len(res) != 2 {
		return open
	}

	used := int(res[0])
	decision := TriggerDecision{
		Allowed:   used <= l.max,
		Remaining: max(l.max-used, 0),
	}
	if !decision.Allowed {
		decision.RetryAfter = l.window
		if res[1] > 0 {
			decision.RetryAfter = time.Duration(res[1]) * time.Millisecond
		}
	}
	return decision
}
