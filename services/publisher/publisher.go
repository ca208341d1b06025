package publisher

// Publisher announces newly saved jobs to downstream consumers
type Publisher interface {
	// Publish publishes a message under key
	Publish(key string, message []byte) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams() error

	// Close closes the publisher connection
	Close() error
}

// Nop is a Publisher that drops everything; used when no broker is configured
type Nop struct{}

func (Nop) Publish(string, []byte) error { return nil }
func (Nop) TrimStreams() error           { return nil }
func (Nop) Close() error                 { return nil }
