package error

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscodeError_Unwrap(t *testing.T) {
	cause := errors.New("ffmpeg exited with status 1")
	err := fmt.Errorf("convert: %w", NewTranscodeError(1, cause))

	var te *TranscodeError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 1, te.Attempt)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "TRANSCODE_ERROR", te.ErrCode())
}

func TestDeliveryFailureError_Unwrap(t *testing.T) {
	cause := errors.New("socket closed")
	err := &DeliveryFailureError{Destination: "123@s.whatsapp.net", Cause: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "123@s.whatsapp.net")
	assert.Equal(t, http.StatusBadGateway, err.StatusCode())
}

func TestGenericErrors(t *testing.T) {
	cases := []struct {
		err    GenericError
		code   string
		status int
	}{
		{NotFoundError("missing"), "NOT_FOUND_ERROR", http.StatusNotFound},
		{InternalServerError("boom"), "INTERNAL_SERVER_ERROR", http.StatusInternalServerError},
		{ValidationError("bad"), "VALIDATION_ERROR", http.StatusBadRequest},
		{DownloadEmptyError("empty"), "DOWNLOAD_EMPTY", http.StatusBadGateway},
		{UnsupportedTypeError("audio"), "UNSUPPORTED_TYPE", http.StatusUnsupportedMediaType},
		{SessionFatalError{Attempts: 5, Reason: "logged out"}, "SESSION_FATAL", http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.code, tc.err.ErrCode())
		assert.Equal(t, tc.status, tc.err.StatusCode())
		assert.NotEmpty(t, tc.err.Error())
	}
}
