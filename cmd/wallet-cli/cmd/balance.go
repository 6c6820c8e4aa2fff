package cmd

import (
	"net/http"
	"strconv"

	"github.com/pandodao/generic"
	"github.com/pandodao/zilt-wallet/core"
	"github.com/spf13/cobra"
)

var refreshOpt bool

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "show the wallet balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		var balance core.Balance
		r := request(cmd).
			SetQueryParam("refresh", strconv.FormatBool(refreshOpt)).
			SetResult(&balance)

		if err := do(r, http.MethodGet, "/balance"); err != nil {
			return err
		}

		cmd.Println(balance.Amount.StringFixed(2), balance.Currency)
		return nil
	},
}

type historyRow struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Amount string `json:"amount"`
	Status string `json:"status"`
	Date   string `json:"date"`
}

func historyRowFromTransaction(tx *core.Transaction) historyRow {
	return historyRow{
		ID:     tx.ID,
		Type:   string(tx.Type),
		Amount: tx.BalanceEffect().StringFixed(2) + " " + tx.Currency,
		Status: string(tx.Status),
		Date:   tx.CreatedAt.Format("2006-01-02 15:04"),
	}
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "list transactions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp struct {
			Transactions []*core.Transaction `json:"transactions"`
		}

		r := request(cmd).
			SetQueryParam("refresh", strconv.FormatBool(refreshOpt)).
			SetResult(&resp)

		if err := do(r, http.MethodGet, "/transactions"); err != nil {
			return err
		}

		return printJson(cmd, generic.MapSlice(resp.Transactions, historyRowFromTransaction))
	},
}

var txCmd = &cobra.Command{
	Use:   "tx <id>",
	Short: "show one transaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var tx core.Transaction
		r := request(cmd).SetPathParam("id", args[0]).SetResult(&tx)
		if err := do(r, http.MethodGet, "/transactions/{id}"); err != nil {
			return err
		}

		return printJson(cmd, tx)
	},
}

var methodsCmd = &cobra.Command{
	Use:   "methods",
	Short: "list deposit methods and whether they need phone verification",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]any
		if err := do(request(cmd).SetResult(&resp), http.MethodGet, "/methods"); err != nil {
			return err
		}

		return printJson(cmd, resp["methods"])
	},
}

func init() {
	rootCmd.AddCommand(balanceCmd, historyCmd, txCmd, methodsCmd)

	balanceCmd.Flags().BoolVar(&refreshOpt, "refresh", false, "fetch from the ledger first")
	historyCmd.Flags().BoolVar(&refreshOpt, "refresh", false, "fetch from the ledger first")
}
