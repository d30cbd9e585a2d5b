package publisher

// Publisher represents a service for publishing new-listing messages
type Publisher interface {
	// Publish publishes a message keyed by source name
	Publish(source string, message []byte) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams() error

	// Close closes the publisher connection
	Close() error
}
