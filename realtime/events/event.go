package events

const (
	// TypeField discriminates the event kind on the wire.
	TypeField = "type"
	// IDField carries the sender-assigned event identifier.
	IDField = "event_id"
)

// Event is a single wire envelope. It is transient: built by the caller or
// decoded from the wire, dispatched, and not retained afterwards.
type Event struct {
	fields map[string]any
}

func New(eventType string) Event {
	return Event{fields: map[string]any{TypeField: eventType}}
}

// FromFields wraps an already-decoded JSON object. The map is copied so the
// caller keeps ownership of its argument.
func FromFields(fields map[string]any) Event {
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		copied[key] = value
	}
	return Event{fields: copied}
}

func (e Event) Type() string {
	eventType, _ := e.fields[TypeField].(string)
	return eventType
}

// ID returns the event identifier, or "" when the sender has not assigned
// one yet.
func (e Event) ID() string {
	id, _ := e.fields[IDField].(string)
	return id
}

// WithID returns a copy of the event carrying id. The receiver is left
// untouched, so a caller-supplied identifier is never overwritten in place.
func (e Event) WithID(id string) Event {
	copied := FromFields(e.fields)
	copied.fields[IDField] = id
	return copied
}

// Set stores a payload field and returns the event for chaining.
func (e Event) Set(key string, value any) Event {
	if e.fields == nil {
		e.fields = map[string]any{}
	}
	e.fields[key] = value
	return e
}

// Get looks up a payload field.
func (e Event) Get(key string) (any, bool) {
	value, ok := e.fields[key]
	return value, ok
}

// Fields exposes the underlying object for encoding. The map is shared with
// the event; codecs must not mutate it.
func (e Event) Fields() map[string]any {
	return e.fields
}
