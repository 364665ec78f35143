package stomp

// MetricsHook receives engine counters. Implementations must be fast and must
// not call back into the Client.
type MetricsHook interface {
	OnFrameSent(command string)
	OnFrameReceived(command string)
	OnFrameRejected(command string, status Status)
	OnDecodeError()
	OnStatusChange(status Status)
	OnReconnectAttempt(attempt int)
	OnPing()
}

type noopMetrics struct{}

func (noopMetrics) OnFrameSent(string)             {}
func (noopMetrics) OnFrameReceived(string)         {}
func (noopMetrics) OnFrameRejected(string, Status) {}
func (noopMetrics) OnDecodeError()                 {}
func (noopMetrics) OnStatusChange(Status)          {}
func (noopMetrics) OnReconnectAttempt(int)         {}
func (noopMetrics) OnPing()                        {}
