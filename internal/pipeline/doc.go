// Package pipeline wires the vocabulary, the OCR and edge-mask collaborators
// and the graph assembler into one extraction run.
//
// An Extractor owns a logrus logger. Every entry of a run carries a run_id
// field, and entries produced by a specific stage carry a stage field.
// Observers registered with OnLog receive the message of every entry that
// passes the logger's level.
//
// Failures are returned as *StageError values naming the load, recognition
// or extraction stage. Collaborator errors are wrapped, never retried, and
// never turned into an empty result.
package pipeline
