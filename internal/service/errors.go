package service

import "errors"

// Validation errors: user-correctable, returned before any side effect.
var (
	ErrMissingFields   = errors.New("missing required fields")
	ErrTooLarge        = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrInvalidFileData = errors.New("file data is not valid base64")
)

// ErrNotFound is returned when a record is absent or owned by someone else.
var ErrNotFound = errors.New("file not found")

// ErrStorageWrite is returned when the object store rejected the upload.
var ErrStorageWrite = errors.New("upload to storage failed")

// Persistence errors.
var (
	ErrMetadataWrite = errors.New("metadata write failed")
	ErrDeleteFailed  = errors.New("delete failed")
	ErrPersistence   = errors.New("metadata store error")
)

// ErrInternal wraps anything unexpected, including recovered panics.
var ErrInternal = errors.New("internal error")

// ErrorKind is the coarse category of a flow error.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindNotFound
	KindStorage
	KindPersistence
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindStorage:
		return "storage"
	case KindPersistence:
		return "persistence"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Classify maps err onto the error taxonomy. Unrecognised errors are internal.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrMissingFields), errors.Is(err, ErrTooLarge),
		errors.Is(err, ErrUnsupportedType), errors.Is(err, ErrInvalidFileData):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrStorageWrite):
		return KindStorage
	case errors.Is(err, ErrMetadataWrite), errors.Is(err, ErrDeleteFailed), errors.Is(err, ErrPersistence):
		return KindPersistence
	default:
		return KindInternal
	}
}
