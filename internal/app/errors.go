package app

import "errors"

// ErrClosed is returned by operations on a closed App.
var ErrClosed = errors.New("app closed")

// sourceNotFoundError signals an unknown dictionary id or URI (404).
type sourceNotFoundError struct{ id string }

func (e sourceNotFoundError) Error() string { return "dictionary not found: " + e.id }

func ErrSourceNotFound(id string) error { return sourceNotFoundError{id: id} }

// IsSourceNotFound reports whether err indicates an unknown dictionary.
func IsSourceNotFound(err error) bool {
	var e sourceNotFoundError
	return errors.As(err, &e)
}

// sourceExistsError signals an add of a dictionary id already in the set (409).
type sourceExistsError struct{ id string }

func (e sourceExistsError) Error() string { return "dictionary already added: " + e.id }

func ErrSourceExists(id string) error { return sourceExistsError{id: id} }

// IsSourceExists reports whether err indicates a duplicate dictionary id.
func IsSourceExists(err error) bool {
	var e sourceExistsError
	return errors.As(err, &e)
}

// lookupCanceledError reports that a waited-for lookup was superseded.
type lookupCanceledError struct{ query, by string }

func (e lookupCanceledError) Error() string {
	return "lookup " + e.query + " canceled by " + e.by
}

// ErrLookupCanceled returns the error for query superseded by another query.
func ErrLookupCanceled(query, by string) error { return lookupCanceledError{query: query, by: by} }

// IsLookupCanceled reports whether err indicates a superseded lookup.
func IsLookupCanceled(err error) bool {
	var e lookupCanceledError
	return errors.As(err, &e)
}
