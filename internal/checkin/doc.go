// Package checkin recovers daily check-ins from a batch of chat messages.
//
// Members check in by posting a numbered marker ("1) done", "2. read it",
// "3?) late"). Each day the numbering restarts at 1 and climbs by one per
// member. The package provides:
//   - ParseOrdinal: extracts the leading marker from message text
//   - Scan: walks a most-recent-first batch and credits members whose
//     marker continues the ascending sequence
//   - Window: the target day and the instant its check-in window opens
//
// # Sequence Rules
//
// Scan keeps an expected counter starting at 1:
//   - ordinal == expected: the member is credited and the counter advances
//   - ordinal > expected: stray duplicate or insertion, skipped
//   - ordinal < expected: the batch has crossed into an earlier day; stop
//
// Messages without a marker are skipped and never move the counter.
//
// Nothing in this package performs I/O. Diagnostics go to the *slog.Logger
// supplied by the caller.
package checkin
