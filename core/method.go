package core

type PaymentMethod string

const (
	PaymentMethodEcoCash      PaymentMethod = "EcoCash"
	PaymentMethodMPesa        PaymentMethod = "M-PESA"
	PaymentMethodCryptoWallet PaymentMethod = "Crypto Wallet"
)

var PaymentMethods = []PaymentMethod{
	PaymentMethodEcoCash,
	PaymentMethodMPesa,
	PaymentMethodCryptoWallet,
}

func (m PaymentMethod) IsValid() bool {
	for _, v := range PaymentMethods {
		if v == m {
			return true
		}
	}

	return false
}

// RequiresVerification reports whether deposits through m are fiat rails
// that must pass the phone verification gate by default.
func (m PaymentMethod) RequiresVerification() bool {
	return m == PaymentMethodEcoCash || m == PaymentMethodMPesa
}
