package main

import (
	"time"

	"github.com/google/wire"
	"github.com/pandodao/zilt-wallet/service/payment"
	"github.com/pandodao/zilt-wallet/worker/cleaner"
	"github.com/pandodao/zilt-wallet/worker/syncer"
	"github.com/spf13/viper"
)

var workerSet = wire.NewSet(
	wire.Bind(new(syncer.Refresher), new(*payment.Service)),
	provideSyncerConfig,
	syncer.New,
	provideCleanerConfig,
	cleaner.New,
)

func provideSyncerConfig(v *viper.Viper) syncer.Config {
	v.SetDefault("syncer.interval", time.Minute)
	v.SetDefault("syncer.hydrate_limit", 100)

	return syncer.Config{
		Interval:     v.GetDuration("syncer.interval"),
		HydrateLimit: v.GetInt("syncer.hydrate_limit"),
	}
}

func provideCleanerConfig(v *viper.Viper) cleaner.Config {
	v.SetDefault("verification.challenge_ttl", "10m")

	return cleaner.Config{
		TTL: v.GetDuration("verification.challenge_ttl"),
	}
}
