package eventstore

import (
	"git.home.luguber.info/inful/makesite/internal/foundation/errors"
)

// Sentinels wrapped by store operations; match with errors.Is.
var (
	ErrDatabaseOpenFailed     = errors.HistoryError("could not open build history database").Build()
	ErrInitializeSchemaFailed = errors.HistoryError("failed to initialize build history schema").Build()
	ErrEventAppendFailed      = errors.HistoryError("failed to append build event").Build()
	ErrEventQueryFailed       = errors.HistoryError("failed to query build events").Build()
	ErrMarshalPayloadFailed   = errors.HistoryError("failed to marshal event payload").Build()
)

// wrap attaches cause to a sentinel so both errors.Is(err, sentinel) and
// errors.Is(err, cause) hold.
func wrap(sentinel *errors.ClassifiedError, cause error) error {
	return errors.WrapError(cause, errors.CategoryHistory, sentinel.Message()).Build()
}
