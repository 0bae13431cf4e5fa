// Package interfaces defines the core interfaces shared across the dungeondraw
// packages.
//
// These abstractions cover logging and settings persistence so that the theme
// registry, the form controllers and the HTTP surface can be wired with
// injected collaborators and tested with in-memory fakes.
package interfaces

// Logger defines the interface for leveled, printf-style logging.
//
// Implementations should be safe for concurrent use. The format parameter
// follows fmt.Printf conventions.
//
// Example usage:
//
//	logger.Debug("Copied theme %q to %q", src, dst)
//	logger.Info("Listening on %s", addr)
//	logger.Error("Failed to parse stored themes: %v", err)
type Logger interface {
	// Debug logs debug-level messages. These are typically only shown
	// when debug logging is explicitly enabled.
	Debug(format string, args ...interface{})

	// Info logs informational messages about normal application flow.
	Info(format string, args ...interface{})

	// Error logs error messages for exceptional conditions that should
	// be investigated.
	Error(format string, args ...interface{})
}

// SettingsStore is the key-value persistence capability the host exposes to
// a module. Values are opaque strings scoped by module id and setting key.
//
// Get returns an empty string for keys that were never set. Set follows
// last-writer-wins semantics; there is no optimistic locking.
type SettingsStore interface {
	Get(moduleID, key string) (string, error)
	Set(moduleID, key, value string) error
}
