// Package mock provides test doubles for the ai interfaces.
//
// Mocks return concrete types so tests can inject custom behavior via the
// exported function fields and assert call counts.
package mock
