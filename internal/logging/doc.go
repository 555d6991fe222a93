// Package logging provides structured, file-based logging with rotation
// for codevector. By default the server logs to stderr; when a log file
// is configured it logs there too, in JSON, so `codevector logs` can
// tail and filter it.
package logging
