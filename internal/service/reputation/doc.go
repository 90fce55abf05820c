// Package reputation implements the email reputation policy: it ingests
// bounce, complaint and delivery events, decides when an address must be
// blocked from future sends, and computes the trailing sending rates the
// provider judges the account by.
//
// Per-address state machine: clean -> soft-watch -> suppressed.
//
//   - Any hard bounce suppresses permanently.
//   - Any complaint suppresses permanently.
//   - The 3rd soft bounce within a trailing 7-day window suppresses
//     non-permanently (the count includes the triggering event).
//
// The event append is the one step that must not fail silently; losing a
// bounce or complaint corrupts every later suppression decision. Suppression
// writes, metrics increments and consent-status denormalization are side
// effects: their failures are logged and swallowed.
package reputation
