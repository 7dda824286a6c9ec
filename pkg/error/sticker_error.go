package error

import (
	"fmt"
	"net/http"
)

// DownloadEmptyError means the media fetch returned no bytes.
type DownloadEmptyError string

func (err DownloadEmptyError) Error() string {
	return string(err)
}

func (err DownloadEmptyError) ErrCode() string {
	return "DOWNLOAD_EMPTY"
}

func (err DownloadEmptyError) StatusCode() int {
	return http.StatusBadGateway
}

// UnsupportedTypeError means the target media kind cannot become a sticker.
type UnsupportedTypeError string

func (err UnsupportedTypeError) Error() string {
	return string(err)
}

func (err UnsupportedTypeError) ErrCode() string {
	return "UNSUPPORTED_TYPE"
}

func (err UnsupportedTypeError) StatusCode() int {
	return http.StatusUnsupportedMediaType
}

// TranscodeError wraps the transcoder failure that ended a conversion.
type TranscodeError struct {
	Attempt int
	Cause   error
}

func NewTranscodeError(attempt int, cause error) *TranscodeError {
	return &TranscodeError{Attempt: attempt, Cause: cause}
}

func (err *TranscodeError) Error() string {
	return fmt.Sprintf("transcode failed on attempt %d: %v", err.Attempt, err.Cause)
}

func (err *TranscodeError) Unwrap() error {
	return err.Cause
}

func (err *TranscodeError) ErrCode() string {
	return "TRANSCODE_ERROR"
}

func (err *TranscodeError) StatusCode() int {
	return http.StatusUnprocessableEntity
}
