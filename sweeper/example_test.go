package sweeper_test

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	ttlcache "github.com/zhuquanbin/ttl-cache"
	"github.com/zhuquanbin/ttl-cache/sweeper"
)

func Example() {
	cache := ttlcache.New[string, int]()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := sweeper.NewIntervalSweeper(cache, 10*time.Second, log.Logger)
	s.Launch(ctx)
}
