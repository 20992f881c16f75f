package contextkeys

// contextKey is an unexported type to prevent collisions with context keys defined in
// other packages.
type contextKey string

// String makes contextKey satisfy the Stringer interface to assist with debugging.
func (c contextKey) String() string {
	return "contacts-api context key " + string(c)
}

// RequestIDKey is the key for the per-request correlation id in context.Context
const RequestIDKey = contextKey("requestID")

// ComponentKey is the key for the component name used by the logger
const ComponentKey = contextKey("component")

// OperationKey is the key for the operation name used by the logger
const OperationKey = contextKey("operation")
