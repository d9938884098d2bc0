package publisher

// Event names published on the listing stream
const (
	EventListingNew          = "listing.new"
	EventListingPriceChanged = "listing.price_changed"
)

// Publisher represents a service for publishing listing lifecycle events
type Publisher interface {
	// Publish publishes an event with a payload to the stream
	Publish(event string, payload []byte) error

	// TrimStream trims the stream to the configured maximum length
	TrimStream() error

	// Close closes the publisher connection
	Close() error
}
