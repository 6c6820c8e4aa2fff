package main

import (
	"fmt"
	"time"

	"github.com/google/wire"
	"github.com/pandodao/zilt-wallet/core"
	"github.com/pandodao/zilt-wallet/service/fee"
	"github.com/pandodao/zilt-wallet/service/identity"
	"github.com/pandodao/zilt-wallet/service/ledger"
	"github.com/pandodao/zilt-wallet/service/payment"
	"github.com/pandodao/zilt-wallet/service/signer"
	"github.com/pandodao/zilt-wallet/service/verification"
	"github.com/pandodao/zilt-wallet/service/verifier"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

var serviceSet = wire.NewSet(
	provideFeeConfig,
	fee.New,
	identity.New,
	wire.Bind(new(core.IdentitySession), new(*identity.Session)),
	provideVerifierConfig,
	verifier.New,
	provideGateConfig,
	verification.New,
	wire.Bind(new(core.VerificationGate), new(*verification.Gate)),
	provideSignerConfig,
	signer.New,
	signer.Signer,
	signer.Submitter,
	provideLedgerConfig,
	ledger.New,
	provideRegistry,
	wire.Bind(new(prometheus.Registerer), new(*prometheus.Registry)),
	payment.NewMetrics,
	providePaymentConfig,
	payment.New,
)

func provideFeeConfig(v *viper.Viper) (fee.Config, error) {
	cfg := fee.DefaultConfig()

	for key, rate := range map[string]*decimal.Decimal{
		"fee.transfer_rate":   &cfg.TransferRate,
		"fee.withdrawal_rate": &cfg.WithdrawalRate,
	} {
		s := v.GetString(key)
		if s == "" {
			continue
		}

		d, err := decimal.NewFromString(s)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", key, err)
		}

		*rate = d
	}

	return cfg, nil
}

func provideVerifierConfig(v *viper.Viper) verifier.Config {
	v.SetDefault("verification.timeout", 15*time.Second)

	return verifier.Config{
		Endpoint: v.GetString("verification.endpoint"),
		Timeout:  v.GetDuration("verification.timeout"),
	}
}

func provideGateConfig(v *viper.Viper) verification.Config {
	v.SetDefault("verification.send_interval", 30*time.Second)
	v.SetDefault("verification.max_attempts", 5)

	return verification.Config{
		SendInterval: v.GetDuration("verification.send_interval"),
		MaxAttempts:  v.GetInt("verification.max_attempts"),
	}
}

func provideSignerConfig(v *viper.Viper) signer.Config {
	v.SetDefault("signer.timeout", 30*time.Second)

	return signer.Config{
		Endpoint:    v.GetString("signer.endpoint"),
		Timeout:     v.GetDuration("signer.timeout"),
		MaxFailures: v.GetUint32("signer.max_failures"),
	}
}

func provideLedgerConfig(v *viper.Viper) ledger.Config {
	v.SetDefault("ledger.timeout", 30*time.Second)

	return ledger.Config{
		Endpoint: v.GetString("ledger.endpoint"),
		Timeout:  v.GetDuration("ledger.timeout"),
		Token:    v.GetString("ledger.token"),
	}
}

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return reg
}

func providePaymentConfig(v *viper.Viper) payment.Config {
	v.SetDefault("wallet.currency", "USDC")
	v.SetDefault("address.prefix", "G")
	v.SetDefault("address.length", 56)

	return payment.Config{
		Currency:      v.GetString("wallet.currency"),
		AddressPrefix: v.GetString("address.prefix"),
		AddressLength: v.GetInt("address.length"),
		GatedMethods:  v.GetStringSlice("deposit.gated_methods"),
	}
}
