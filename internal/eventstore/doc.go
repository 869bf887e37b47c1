// Package eventstore keeps an append-only history of site builds in SQLite.
//
// The site builder appends one event per notable step (build started, page
// rendered or failed, build completed or failed). Recent folds those events
// back into per-build summaries for `makesite history`.
package eventstore
