// Package auth provides bearer-token authentication for hookrelay.
//
// Tokens are HS256-signed JWTs carrying the principal's username in the "sub"
// claim and the relay issuer in "iss". The Tokens type mints and verifies
// them with a fixed secret and lifetime;
// Middleware gates HTTP endpoints and attaches the verified principal to the
// request context for handlers to read via FromContext.
//
// Event ingestion is deliberately left ungated: producers are not first-class
// authenticated actors, so only subscription management and the retry sweep
// require a bearer token.
package auth
