package cmd

import (
	"net/http"

	"github.com/pandodao/zilt-wallet/core"
	"github.com/spf13/cobra"
)

var loginOpt core.WalletIdentity

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "bind a wallet identity to the server session",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]string
		if err := do(request(cmd).SetBody(loginOpt).SetResult(&resp), http.MethodPost, "/session"); err != nil {
			return err
		}

		return printJson(cmd, resp)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "clear the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := do(request(cmd), http.MethodDelete, "/session"); err != nil {
			return err
		}

		cmd.Println("logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "show the account of the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]string
		if err := do(request(cmd).SetResult(&resp), http.MethodGet, "/session"); err != nil {
			return err
		}

		return printJson(cmd, resp)
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)

	loginCmd.Flags().StringVar(&loginOpt.AccountRef, "account", "", "account reference")
	loginCmd.Flags().StringVar(&loginOpt.SigningKeyRef, "key", "", "signing key reference")
	loginCmd.MarkFlagRequired("account")
	loginCmd.MarkFlagRequired("key")
}
