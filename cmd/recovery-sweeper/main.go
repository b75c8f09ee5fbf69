// Command recovery-sweeper periodically deletes expired and stale recovery
// token rows from Redis.
//
// It operates directly on the token store, so it needs no directory or
// notification backend. Run one instance per Redis keyspace:
//
//	recovery-sweeper -redis-addr localhost:6379 -prefix art -interval 10m
//
// A single pass (for cron-style scheduling) runs with -once.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goRecovery "github.com/nforsey/goRecovery"
	"github.com/redis/go-redis/v9"
)

func main() {
	var (
		redisAddr = flag.String("redis-addr", "", "redis address; REDIS_ADDR env is used when empty")
		prefix    = flag.String("prefix", "art", "token store key prefix")
		interval  = flag.Duration("interval", 10*time.Minute, "time between sweep passes")
		retention = flag.Duration("retention", 7*24*time.Hour, "how long used rows are kept before deletion")
		once      = flag.Bool("once", false, "run a single sweep pass and exit")
	)
	flag.Parse()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}
	if addr == "" {
		fmt.Fprintln(os.Stderr, "redis address required (-redis-addr or REDIS_ADDR)")
		os.Exit(2)
	}
	if *interval <= 0 || *retention <= 0 {
		fmt.Fprintln(os.Stderr, "interval and retention must be > 0")
		os.Exit(2)
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{addr},
	})
	defer func() {
		_ = client.Close()
	}()

	store := goRecovery.NewRedisTokenStore(client, *prefix)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *once {
		if err := sweep(ctx, store, *retention); err != nil {
			fmt.Fprintf(os.Stderr, "sweep failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		if err := sweep(ctx, store, *retention); err != nil {
			fmt.Fprintf(os.Stderr, "sweep failed: %v\n", err)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

func sweep(ctx context.Context, store *goRecovery.RedisTokenStore, retention time.Duration) error {
	passCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	deleted, err := store.DeleteExpiredOrStale(passCtx, time.Now(), retention)
	if err != nil {
		return err
	}

	fmt.Printf("%s swept %d token rows\n", time.Now().UTC().Format(time.RFC3339), deleted)
	return nil
}
