// Package handler keeps one live database connection and runs queries
// through it with a bounded number of attempts.
//
// Every public query operation is wrapped by Resilient, which reconnects
// before the call and turns any failure into a logged, structured Outcome
// instead of an error. Fetch and QueryTable keep the silent contract (empty
// or nil result on failure); FetchWithOutcome and QueryTableWithOutcome expose
// the Outcome for callers that need to tell "no rows" from "all attempts failed".
//
// A Handler is not safe for concurrent use.
package handler
