package payment

import "strings"

// ValidAddress reports whether addr is in the ledger-native form: the
// reserved prefix followed by upper-case base32 characters, fixed length.
func (s *Service) ValidAddress(addr string) bool {
	if len(addr) != s.cfg.AddressLength || !strings.HasPrefix(addr, s.cfg.AddressPrefix) {
		return false
	}

	for _, r := range addr[len(s.cfg.AddressPrefix):] {
		if (r < 'A' || r > 'Z') && (r < '2' || r > '7') {
			return false
		}
	}

	return true
}
