package cmd

import (
	"net/http"

	"github.com/pandodao/zilt-wallet/core"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var txOpt struct {
	amount      string
	method      string
	phone       string
	destination string
	recipient   string
	note        string
}

func createTransaction(cmd *cobra.Command, body map[string]any) error {
	amount, err := decimal.NewFromString(txOpt.amount)
	if err != nil {
		return err
	}

	body["amount"] = amount

	var tx core.Transaction
	if err := do(request(cmd).SetBody(body).SetResult(&tx), http.MethodPost, "/transactions"); err != nil {
		return err
	}

	return printJson(cmd, tx)
}

var depositCmd = &cobra.Command{
	Use:   "deposit",
	Short: "add funds through a payment method",
	RunE: func(cmd *cobra.Command, args []string) error {
		return createTransaction(cmd, map[string]any{
			"type":   core.TransactionTypeDeposit,
			"method": txOpt.method,
			"phone":  txOpt.phone,
		})
	},
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "withdraw funds to an external address",
	RunE: func(cmd *cobra.Command, args []string) error {
		return createTransaction(cmd, map[string]any{
			"type":        core.TransactionTypeWithdrawal,
			"destination": txOpt.destination,
		})
	},
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "send funds to another wallet",
	RunE: func(cmd *cobra.Command, args []string) error {
		return createTransaction(cmd, map[string]any{
			"type":      core.TransactionTypeTransfer,
			"recipient": txOpt.recipient,
			"note":      txOpt.note,
		})
	},
}

func init() {
	rootCmd.AddCommand(depositCmd, withdrawCmd, sendCmd)

	for _, c := range []*cobra.Command{depositCmd, withdrawCmd, sendCmd} {
		c.Flags().StringVar(&txOpt.amount, "amount", "0", "amount")
	}

	depositCmd.Flags().StringVar(&txOpt.method, "method", string(core.PaymentMethodCryptoWallet), "payment method")
	depositCmd.Flags().StringVar(&txOpt.phone, "phone", "", "phone number for mobile money")
	withdrawCmd.Flags().StringVar(&txOpt.destination, "to", "", "destination address")
	sendCmd.Flags().StringVar(&txOpt.recipient, "to", "", "recipient address")
	sendCmd.Flags().StringVar(&txOpt.note, "note", "", "note (optional)")
}
