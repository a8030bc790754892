// Package state holds per-user conversation progress for multi-step
// flows: which flow the user is in, the current step, the draft being
// assembled, idempotency markers for duplicate update suppression and
// the screen history stack backing the "back" button.
//
// State lives in memory only. A restart drops active conversations,
// which is acceptable: the user simply starts the flow again. Durable
// records are written to Postgres only at flow completion.
package state
