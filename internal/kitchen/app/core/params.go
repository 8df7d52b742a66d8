package core

import (
	"errors"
	"time"
)

const (
	ServiceName = "kitchen-worker"

	// WaitTime bounds single database operations, in seconds.
	WaitTime = 20

	DefaultHeartbeatInterval = 30
	DefaultPrefetch          = 4
)

var ErrWorkerOnline = errors.New("worker with this name is already online")

type WorkerParams struct {
	WorkerName        string
	HeartbeatInterval int
	Prefetch          int
	Workers           int
	CookTime          time.Duration
	ServeTime         time.Duration
}
