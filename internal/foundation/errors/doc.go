// Package errors provides the classified error type used across makesite.
//
// A ClassifiedError carries a category (content, markup, template, config, ...),
// a severity and structured context. Packages build them through the fluent
// ErrorBuilder and the CLI maps them to exit codes via CLIErrorAdapter.
//
//	err := errors.ContentError("malformed filename").
//		WithContext("name", base).
//		Build()
package errors
