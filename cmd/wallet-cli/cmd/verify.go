package cmd

import (
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var verifyOpt struct {
	phone  string
	amount string
	code   string
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "phone verification for mobile money deposits",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]any
		r := request(cmd).SetPathParam("phone", verifyOpt.phone).SetResult(&resp)
		if err := do(r, http.MethodGet, "/verifications/{phone}"); err != nil {
			return err
		}

		return printJson(cmd, resp)
	},
}

var verifySendCmd = &cobra.Command{
	Use:   "send",
	Short: "send a code to the phone",
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := decimal.NewFromString(verifyOpt.amount)
		if err != nil {
			return err
		}

		var resp map[string]any
		r := request(cmd).SetBody(map[string]any{
			"phone":  verifyOpt.phone,
			"amount": amount,
		}).SetResult(&resp)

		if err := do(r, http.MethodPost, "/verifications"); err != nil {
			return err
		}

		return printJson(cmd, resp)
	},
}

var verifyCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "check the code received by the phone",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]any
		r := request(cmd).SetBody(map[string]string{
			"phone": verifyOpt.phone,
			"code":  verifyOpt.code,
		}).SetResult(&resp)

		if err := do(r, http.MethodPost, "/verifications/check"); err != nil {
			return err
		}

		return printJson(cmd, resp)
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.AddCommand(verifySendCmd, verifyCheckCmd)

	verifyCmd.PersistentFlags().StringVar(&verifyOpt.phone, "phone", "", "phone number")
	verifySendCmd.Flags().StringVar(&verifyOpt.amount, "amount", "0", "deposit amount")
	verifyCheckCmd.Flags().StringVar(&verifyOpt.code, "code", "", "verification code")
}
