package errors

const msgMalformedFilename = "malformed filename"

// MalformedFilename reports a content file name that does not match
// [YYYY-MM-DD-]<name>. It is fatal for the build of the page that needs it.
func MalformedFilename(name string, cause error) *ClassifiedError {
	return ContentError(msgMalformedFilename).
		WithCause(cause).
		WithContext("name", name).
		Build()
}

// IsMalformedFilename reports whether err's chain contains a MalformedFilename error.
func IsMalformedFilename(err error) bool {
	c, ok := AsClassified(err)
	return ok && c.Category() == CategoryContent && c.Message() == msgMalformedFilename
}
