// Package suppression implements the suppression list service.
//
// This is the gate every outbound send passes through. Suppressions flow in
// from the reputation policy (hard/soft bounces, complaints) and from explicit
// unsubscribes, and are checked before dispatch and before consent
// registration.
//
// When the backing store cannot be reached the check fails closed: the
// address is reported suppressed with a generic reason. A possibly-bounced
// address must never receive mail because of an outage.
//
// The service layer contains pure business logic and depends on the
// Repository interface defined in repository.go. It never imports net/http
// or database/sql directly.
package suppression
