// Package services contains the core business logic, wired to
// infrastructure through the driven ports and exposed through the driving
// ports. External capabilities are passed to constructors explicitly;
// services never look up collaborators from ambient context.
package services
