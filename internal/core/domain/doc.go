// Package domain contains the core entities and business rules.
// It has no dependencies on adapters or infrastructure.
package domain
