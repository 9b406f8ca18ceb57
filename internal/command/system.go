package command

// SystemEventType identifies a process-level request raised by a command.
type SystemEventType string

const (
	SystemEventShutdown SystemEventType = "shutdown"
	SystemEventRestart  SystemEventType = "restart"
)

// SystemEvent is a request the command layer cannot satisfy itself; main
// consumes the bus and acts on it (exit codes for the supervisor).
type SystemEvent struct {
	Type SystemEventType
	By   string
}

var systemEventBus = make(chan SystemEvent, 16)

// PublishSystemEvent posts an event without blocking; if the bus is full the
// event is dropped.
func PublishSystemEvent(evt SystemEvent) {
	select {
	case systemEventBus <- evt:
	default:
	}
}

// SystemEvents returns the receive side of the bus.
func SystemEvents() <-chan SystemEvent {
	return systemEventBus
}
