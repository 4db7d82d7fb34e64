// Package logging provides concrete implementations of the csvingest.Logger interface.
//
//   - ConsoleLogger: prefixed lines on stderr (or any io.Writer), verbose output opt-in
//   - NullLogger: discards everything, for tests and library use
package logging
