package main

import (
	"github.com/google/wire"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pandodao/zilt-wallet/core"
	"github.com/pandodao/zilt-wallet/store/challenge"
	"github.com/pandodao/zilt-wallet/store/db"
	"github.com/pandodao/zilt-wallet/store/property"
	"github.com/pandodao/zilt-wallet/store/transaction"
	"github.com/pandodao/zilt-wallet/store/walletcache"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"github.com/tsenart/nap"
)

var storeSet = wire.NewSet(
	provideDB,
	property.New,
	transaction.New,
	provideWalletCache,
	wire.Bind(new(core.WalletCache), new(*walletcache.Cache)),
	provideChallengeStore,
)

func provideDB(v *viper.Viper) (*nap.DB, func(), error) {
	v.SetDefault("db.driver", "sqlite3")
	v.SetDefault("db.dsn", "wallet.db")

	driver := v.GetString("db.driver")
	dsn := v.GetString("db.dsn")

	for _, replica := range v.GetStringSlice("db.replicas") {
		dsn += ";" + replica
	}

	conn, err := nap.Open(driver, dsn)
	if err != nil {
		return nil, nil, err
	}

	if err := db.Migrate(conn.Master(), driver); err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	return conn, func() { _ = conn.Close() }, nil
}

func provideWalletCache(v *viper.Viper) *walletcache.Cache {
	v.SetDefault("wallet.currency", "USDC")
	return walletcache.New(v.GetString("wallet.currency"))
}

func provideChallengeStore(v *viper.Viper) (core.ChallengeStore, func(), error) {
	v.SetDefault("verification.store", "memory")
	v.SetDefault("verification.challenge_ttl", "10m")

	if v.GetString("verification.store") != "redis" {
		return challenge.NewMemory(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     v.GetString("verification.redis_addr"),
		Password: v.GetString("verification.redis_password"),
	})

	ttl := v.GetDuration("verification.challenge_ttl")
	return challenge.NewRedis(client, ttl), func() { _ = client.Close() }, nil
}
