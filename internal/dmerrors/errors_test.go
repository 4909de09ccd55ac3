package dmerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorString(t *testing.T) {
	e := &Error{Code: NotFound, Message: "uri not found", URI: "./DevInfo/DevId"}
	assert.Equal(t, "NotFound: uri not found (uri: ./DevInfo/DevId)", e.Error())

	e2 := &Error{Code: Usage, Message: "nil handle"}
	assert.Equal(t, "Usage: nil handle", e2.Error())
}

func TestCodeStringUnknown(t *testing.T) {
	assert.Equal(t, "Unknown(999)", Code(999).String())
}

func TestFactoryFunctions(t *testing.T) {
	nf := NewNotFoundError("./X/Y")
	assert.Equal(t, NotFound, nf.Code)
	assert.Equal(t, "./X/Y", nf.URI)

	na := NewNotAllowedError("./X/Y", "alice")
	assert.Equal(t, NotAllowed, na.Code)
	assert.Contains(t, na.Message, "alice")

	ic := NewInvalidCredentialsError("digest mismatch")
	assert.Equal(t, InvalidCredentials, ic.Code)

	cf := NewCommandFailedError("./X", "invalid IMEI")
	assert.Equal(t, CommandFailed, cf.Code)

	cni := NewCommandNotImplementedError("./X")
	assert.Equal(t, CommandNotImplemented, cni.Code)

	ofns := NewOptionalFeatureNotSupportedError("./X")
	assert.Equal(t, OptionalFeatureNotSupported, ofns.Code)

	ie := NewInternalError(errors.New("codec desync"))
	assert.Equal(t, Internal, ie.Code)
	assert.Equal(t, "codec desync", ie.Message)

	df := NewDeviceFullError("./Vendor/ConfigCache")
	assert.Equal(t, DeviceFull, df.Code)
}

func TestErrEndMatchesErrorsIs(t *testing.T) {
	var err error = ErrEnd
	assert.True(t, errors.Is(err, ErrEnd))
	assert.True(t, IsEnd(err))
	assert.False(t, IsEnd(NewNotFoundError("./X")))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, NotFound, CodeOf(NewNotFoundError("./X")))
	assert.Equal(t, Code(0), CodeOf(errors.New("plain error")))
}

func TestIsNotFoundAndIsNotAllowed(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFoundError("./X")))
	assert.False(t, IsNotFound(NewNotAllowedError("./X", "bob")))
	assert.True(t, IsNotAllowed(NewNotAllowedError("./X", "bob")))
}
