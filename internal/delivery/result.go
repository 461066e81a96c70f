// Package delivery holds the outcome type shared by the live and push
// fan-out stages.
package delivery

// Status is the outcome of delivering one notification over one channel.
type Status int

const (
	StatusDelivered Status = iota + 1
	StatusNotConnected
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusDelivered:
		return "delivered"
	case StatusNotConnected:
		return "not_connected"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Result is what a fan-out stage reports. Results are logged, never retried.
type Result struct {
	Channel string
	Status  Status
	// Reason explains a failure; empty otherwise.
	Reason string
}

func Delivered(channel string) Result {
	return Result{Channel: channel, Status: StatusDelivered}
}

func NotConnected(channel string) Result {
	return Result{Channel: channel, Status: StatusNotConnected}
}

func Failed(channel, reason string) Result {
	return Result{Channel: channel, Status: StatusFailed, Reason: reason}
}

func (r Result) OK() bool { return r.Status == StatusDelivered }
