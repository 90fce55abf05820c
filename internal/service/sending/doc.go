// Package sending orchestrates outbound email across the compliance stack.
//
// Every send runs the same gauntlet: template and variable validation first,
// then per-recipient suppression and consent checks, compliance variable
// injection, rate limiting, and finally the provider transport. Template or
// variable problems fail the whole call before any mail moves; recipient
// problems never do. A recipient that is suppressed, lacks consent, or hits
// a transport error is recorded in the result and the batch continues.
// A batch counts as successful when at least one message was accepted.
package sending
