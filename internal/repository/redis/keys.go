package redisrepo

import "fmt"

const ns = "standpos:v1"

func KeyEventConfig() string {
	return ns + ":config"
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

func KeyIdemSale(idemKey string) string {
	return fmt.Sprintf("%s:idem:sales:%s", ns, idemKey)
}

func ChannelLedgerChanged() string {
	return ns + ":ledger:changed"
}
