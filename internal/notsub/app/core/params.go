package core

const (
	ServiceName = "notification-subscriber"

	// WaitTime bounds shutdown, in seconds.
	WaitTime = 10
)
