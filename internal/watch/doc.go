// Package watch keeps generated API clients in sync with a server's OpenAPI
// document during development.
//
// A [Watcher] fetches the document from a [Source] once per interval and
// compares it byte-for-byte with the previous fetch. When it differs, the
// watcher hands a [Regenerator] (usually a [CommandRegenerator] running the
// client generator) to its executor and skips further checks until that
// regeneration has finished. The first successful fetch only records the
// document.
//
// For documents on local disk a [Notifier] adds debounced checks on file
// writes between ticks.
package watch
