// Package votingledger implements the community proposal ledger inside the
// governance context.
//
// The module owns proposal lifecycle orchestration (create/vote/resolve),
// one-ballot-per-identity enforcement, deadline-gated resolution, and
// event production through the outbox. It keeps business rules in
// application/domain layers and isolates infrastructure concerns behind
// ports and adapters.
package votingledger
