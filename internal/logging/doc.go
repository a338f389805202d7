// Package logging provides concrete implementations of the dbhandler.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: Writes formatted messages to stderr (or any io.Writer) with thread-safe output
//   - NullLogger: Discards all messages
//   - MemoryLogger: Records messages for later inspection (useful for testing)
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
