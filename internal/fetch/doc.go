// Package fetch holds the HTTP clients for the upstream data feeds:
// the card price tracker API and the Frankfurter exchange-rate API.
// Payload extraction is kept separate from transport so it can be
// tested without a network.
package fetch
