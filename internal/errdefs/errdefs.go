package errdefs

type ErrorType int

const (
	ErrTypeInstallerNotFound ErrorType = iota
	ErrTypeWrongInterpreter
	ErrTypeInstallFailed
	ErrTypeNotMHTML
	ErrTypeNoRootPart
	ErrTypeGeneric
)

type CustomError struct {
	Type    ErrorType
	Message string
	// Code is the process exit status to propagate, 0 when unset.
	Code int
}

func (e *CustomError) Error() string {
	return e.Message
}

func NewCustomError(errType ErrorType, message string) error {
	return &CustomError{
		Type:    errType,
		Message: message,
	}
}

var ErrInstallerNotFound = NewCustomError(ErrTypeInstallerNotFound, "installer not found")
var ErrNoRootPart = NewCustomError(ErrTypeNoRootPart, "no root part in archive")
