// Package relay implements the subscription fan-out and delivery-state core.
//
// # Components
//
//   - Registry: owns subscription records (subscribe, list by owner,
//     resolve by source, unsubscribe)
//   - Dispatcher: turns one inbound event into one Pending delivery record
//     per subscriber registered for the event's source
//   - Sweeper: re-attempts Failed deliveries through the Attempter interface
//
// # Delivery lifecycle
//
// A delivery record is created Pending at fan-out time and moves only forward:
// Pending to Delivered or Failed, and a retry may flip Failed to Delivered or
// leave it Failed. Pending records are never revisited by the sweeper, records
// are never deleted, and delivery is at-least-once: fan-out is not atomic and
// the sweep has no retry cap.
//
// # Attempter
//
// Outbound delivery is isolated behind the Attempter interface so the sweeper
// is testable with deterministic fakes. StubAttempter always succeeds;
// HTTPAttempter POSTs the payload to the subscriber's URL.
package relay
