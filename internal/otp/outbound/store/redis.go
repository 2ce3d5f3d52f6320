package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/gotp/internal/otp/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/clock"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
)

const defaultPrefix = "otp:"

// keyGrace keeps a key alive past its logical expiry so a late read still
// reports Expired instead of NotFound.
const keyGrace = time.Minute

// checkAndConsume returns {kind, remaining}. Kinds follow entity.CheckKind.
var checkAndConsume = redis.NewScript(`
local rec = redis.call('HMGET', KEYS[1], 'code', 'remaining', 'expires_at')
if not rec[1] then
  return {0, 0}
end
if tonumber(ARGV[2]) > tonumber(rec[3]) then
  redis.call('DEL', KEYS[1])
  return {1, 0}
end
if rec[1] == ARGV[1] then
  redis.call('DEL', KEYS[1])
  return {2, 0}
end
local left = redis.call('HINCRBY', KEYS[1], 'remaining', -1)
if left <= 0 then
  redis.call('DEL', KEYS[1])
  return {4, 0}
end
return {3, left}
`)

// Redis stores one hash per identity. The Lua script makes each
// verification a single atomic step on the server.
type Redis struct {
	client redis.UniversalClient
	clock  clock.Clocker
	ins    instrument.Instrumentation
	prefix string
}

func NewRedis(client redis.UniversalClient, clk clock.Clocker, ins instrument.Instrumentation, prefix string) *Redis {
	if prefix == "" {
		prefix = defaultPrefix
	}
	if clk == nil {
		clk = clock.New()
	}
	if ins == nil {
		ins = instrument.NewNoop()
	}
	return &Redis{client: client, clock: clk, ins: ins, prefix: prefix}
}

func (r *Redis) key(identity string) string {
	return r.prefix + identity
}

func (r *Redis) Put(ctx context.Context, identity, code string, maxAttempts int, ttl time.Duration) (err error) {
	ctx, span := startSpan(ctx, r.ins, "Put")
	defer func() { endSpan(span, err) }()

	key := r.key(identity)
	expiresAt := r.clock.Now().Add(ttl).UnixMilli()

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			"code", code,
			"remaining", maxAttempts,
			"expires_at", strconv.FormatInt(expiresAt, 10),
		)
		pipe.PExpire(ctx, key, ttl+keyGrace)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store: redis put: %w", err)
	}
	return nil
}

func (r *Redis) CheckAndConsume(ctx context.Context, identity, candidate string) (_ entity.CheckOutcome, err error) {
	ctx, span := startSpan(ctx, r.ins, "CheckAndConsume")
	defer func() { endSpan(span, err) }()

	now := r.clock.Now().UnixMilli()
	res, err := checkAndConsume.Run(ctx, r.client, []string{r.key(identity)}, candidate, now).Int64Slice()
	if err != nil {
		return entity.CheckOutcome{}, fmt.Errorf("store: redis check: %w", err)
	}
	if len(res) != 2 {
		return entity.CheckOutcome{}, fmt.Errorf("store: redis check: unexpected reply %v", res)
	}

	out := entity.CheckOutcome{Kind: entity.CheckKind(res[0])}
	if out.Kind == entity.CheckMismatch {
		out.Remaining = int(res[1])
	}
	return out, nil
}
