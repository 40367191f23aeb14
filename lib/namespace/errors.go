package namespace

import "fmt"

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode),
// an error message and the underlying platform error. The platform error is
// kept so provenance survives without relying on ambient thread state.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message
	Err  error   // The underlying platform error, may be nil
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("NamespaceError (code %s): %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("NamespaceError (code %s): %s", e.Code, e.Msg)
}

// Unwrap exposes the underlying platform error to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error with the given code, message and cause.
func NewError(code RetCode, msg string, err error) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
		Err:  err,
	}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess        RetCode = iota // 0: Operation executed successfully.
	RetCNotInitialized                // 1: Context used before EnsureInitialized.
	RetCHashInit                      // 2: Hash algorithm context could not be opened. Never produced here (sha256 cannot fail to open); reserved to keep the numbering stable.
	RetCPrincipal                     // 3: Principal identity construction failed.
	RetCBoundary                      // 4: Isolation boundary creation failed.
	RetCNamespace                     // 5: Namespace create-or-open failed.
	RetCLockCreate                    // 6: Lock object create-or-open failed.
	RetCWaitFailed                    // 7: Wait ended with an outcome other than acquired or abandoned.
)

// String returns the symbolic name of the return code.
func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCNotInitialized:
		return "NotInitialized"
	case RetCHashInit:
		return "HashInit"
	case RetCPrincipal:
		return "Principal"
	case RetCBoundary:
		return "Boundary"
	case RetCNamespace:
		return "Namespace"
	case RetCLockCreate:
		return "LockCreate"
	case RetCWaitFailed:
		return "WaitFailed"
	default:
		return "Unknown"
	}
}
