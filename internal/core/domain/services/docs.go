// Package services holds domain services that span more than one aggregate or
// depend on who is acting.
//
// The package includes:
//   - OrderLifecycle: role-aware validation and application of order transitions
package services
