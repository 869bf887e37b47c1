// Package testing contains fixtures and assertions shared by makesite tests:
// a builder for throwaway site trees and chained checks over a build's output.
package testing

const (
	// testDirPermissions is the permission mode for creating fixture directories.
	testDirPermissions = 0o750

	// testFilePermissions is the permission mode for creating fixture files.
	testFilePermissions = 0o600
)
