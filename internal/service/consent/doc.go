// Package consent manages the opt-in registry and the contact pipeline.
//
// One consent record exists per address; re-consenting replaces the prior
// record. The registry answers one question for the send path: may this
// template go to this address. Transactional templates carry implied consent
// from the existing business relationship, so they resolve a recipient even
// when no record is stored. Marketing templates require a stored record with
// an explicit opt-in and active status.
//
// Status fields here are denormalized for reads. The suppression list stays
// authoritative for send-eligibility; a stale consent status never overrides
// an active suppression.
package consent
