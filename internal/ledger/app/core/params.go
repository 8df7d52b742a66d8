package core

import "time"

const (
	ServiceName = "ledger-service"

	// WaitTime bounds request handling and graceful shutdown, in seconds.
	WaitTime = 10

	DefaultPort = 3001

	// AwaitingTransaction is shown for orders without a payment reference.
	AwaitingTransaction = "AWAITING_TX"

	RevenueDays  = 7
	PopularLimit = 5
)

type LedgerParams struct {
	Port     int
	Location *time.Location
}
