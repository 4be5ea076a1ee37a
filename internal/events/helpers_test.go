package events

import (
	"io"

	"github.com/wolfman30/realestate-concierge/pkg/logging"
)

func nopLogger() *logging.Logger {
	return logging.NewWithWriter(io.Discard, "error")
}
