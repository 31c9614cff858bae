package network

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"

	"golang.org/x/sys/unix"
)

// ProbeState is the outcome of a TCP connect probe.
type ProbeState int

const (
	// ProbeOpen means the connection was accepted.
	ProbeOpen ProbeState = iota
	// ProbeClosed means nothing answered: refused, unreachable or timed out.
	ProbeClosed
	// ProbeError means the socket itself could not be used.
	ProbeError
)

func (s ProbeState) String() string {
	switch s {
	case ProbeOpen:
		return "open"
	case ProbeClosed:
		return "closed"
	default:
		return "error"
	}
}

// ProbeTCP attempts a TCP connection to host:port within timeout and closes
// it immediately. The returned error is nil only for ProbeOpen.
func ProbeTCP(ctx context.Context, host string, port int, timeout time.Duration) (ProbeState, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return classifyDialError(err), err
	}
	_ = conn.Close()
	return ProbeOpen, nil
}

func classifyDialError(err error) ProbeState {
	var netErr net.Error
	switch {
	case errors.Is(err, unix.ECONNREFUSED),
		errors.Is(err, unix.EHOSTUNREACH),
		errors.Is(err, unix.ENETUNREACH),
		errors.Is(err, context.DeadlineExceeded):
		return ProbeClosed
	case errors.As(err, &netErr) && netErr.Timeout():
		return ProbeClosed
	default:
		return ProbeError
	}
}
