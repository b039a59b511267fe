// Package gateway exposes the relay core over HTTP.
//
// # Endpoints
//
//	POST   /register          open     create a principal
//	POST   /login             open     issue a bearer token
//	POST   /validate-token    open     report token validity
//	POST   /webhook           open     ingest an event (fan-out)
//	POST   /subscribe         bearer   create a subscription
//	GET    /subscriptions     bearer   list subscriptions by owner
//	DELETE /unsubscribe/{id}  bearer   delete a subscription
//	POST   /retry             bearer   re-attempt Failed deliveries
//	GET    /health            open     liveness
//	GET    /metrics           open     prometheus (when enabled)
//
// Event intake is deliberately open: producers post events for a source
// without authenticating. Every error renders as {"error": "..."} with the
// status mapped from the domain taxonomy (validation 400, auth 401, not
// found and no-subscribers 404, store faults 500).
package gateway
