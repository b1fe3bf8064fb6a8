// Package output writes spec document snapshots.
//
// A [FileWriter] replaces its target atomically so a generator reading the
// snapshot never sees a half-written file. [Convert] re-encodes JSON
// documents as YAML when a YAML snapshot is requested.
package output
