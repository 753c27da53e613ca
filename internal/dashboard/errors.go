package dashboard

import "errors"

// Error definitions for dashboard operations.
var (
	// ErrContentTooShort is returned when knowledge-base content fails the
	// local minimum-length validation, before any network call is made.
	ErrContentTooShort = errors.New("knowledge base content must be at least 10 characters")

	// ErrUnknownKnowledgeType is returned for knowledge-base types outside
	// the fixed supported set.
	ErrUnknownKnowledgeType = errors.New("unknown knowledge base type")

	// ErrReplyRejected is returned when the messaging integration reports a
	// delivery failure in an otherwise successful response.
	ErrReplyRejected = errors.New("reply was not delivered")
)
