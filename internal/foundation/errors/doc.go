// Package errors provides the classified error primitives used across docweave.
//
// A ClassifiedError carries a category, a severity and structured context. Errors are
// created through the fluent ErrorBuilder and presented to users through the CLI and
// HTTP adapters, which map categories to exit codes and status codes.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategorySnippet, "snippet not found").
//		WithContext("path", ref.Path).
//		WithContext("page", page).
//		Build()
package errors
