package utils

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cppla/lostfound/config"
)

var (
	regCooldown   = map[string]time.Time{}
	regCooldownMu sync.Mutex
)

// RegistrationCooldownTry enforces a short cooldown between sign-up attempts per IP.
// It returns false while the IP is still cooling down.
func RegistrationCooldownTry(ctx context.Context, ip string) bool {
	cd := config.Get().RegisterCooldown
	if cd <= 0 {
		return true
	}
	if cli := GetRedis(); cli != nil {
		ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()
		ok, err := cli.SetNX(ctx, "reg:cooldown:"+ip, "1", cd).Result()
		if err == nil {
			return ok
		}
		// fall through to memory on redis errors
	}

	now := time.Now()
	regCooldownMu.Lock()
	defer regCooldownMu.Unlock()
	for k, until := range regCooldown {
		if now.After(until) {
			delete(regCooldown, k)
		}
	}
	if until, ok := regCooldown[ip]; ok && now.Before(until) {
		return false
	}
	regCooldown[ip] = now.Add(cd)
	return true
}

// RegistrationDailyLimitCheck allows up to RegisterMaxPerIPPerDay successful sign-ups per IP.
// Without Redis there is no daily cap.
func RegistrationDailyLimitCheck(ctx context.Context, ip string) bool {
	limit := config.Get().RegisterMaxPerIPPerDay
	cli := GetRedis()
	if limit <= 0 || cli == nil {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	n, err := cli.Get(ctx, regDayKey(ip)).Int()
	if err == redis.Nil {
		n = 0
	} else if err != nil {
		return true
	}
	return n < limit
}

// RegistrationDailyIncrement counts a successful sign-up for today.
func RegistrationDailyIncrement(ctx context.Context, ip string) {
	cli := GetRedis()
	if cli == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	key := regDayKey(ip)
	if err := cli.Incr(ctx, key).Err(); err == nil {
		_ = cli.Expire(ctx, key, 24*time.Hour).Err()
	}
}

func regDayKey(ip string) string {
	return "reg:succday:" + ip + ":" + time.Now().Format("20060102")
}
