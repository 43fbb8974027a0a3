// Package errcode defines the numeric error taxonomy shared across the
// mining engine's public API, matching the existing hs-miner registry so
// callers that already speak that vocabulary don't need a translation
// layer.
package errcode

import "fmt"

// Code is a contractual integer error code. Zero means success.
type Code int

const (
	SUCCESS     Code = 0
	ENOMEM      Code = 1
	ETIMEOUT    Code = 2
	EFAILURE    Code = 3
	EBADARGS    Code = 4
	EENCODING   Code = 5
	ENODEVICE   Code = 6
	EBADPROPS   Code = 7
	ENOSUPPORT  Code = 8
	EMAXLOAD    Code = 9
	EBADPATH    Code = 10
	ENOSOLUTION Code = 11
	ENEGTARGET  Code = 19
	EHIGHHASH   Code = 20

	// EABORT reports external cancellation. Some older miners overload
	// ETIMEOUT for this; a distinct code keeps cancellation and timeout
	// distinguishable at the API boundary.
	EABORT Code = 21
)

var names = map[Code]string{
	SUCCESS:     "SUCCESS",
	ENOMEM:      "ENOMEM",
	ETIMEOUT:    "ETIMEOUT",
	EFAILURE:    "EFAILURE",
	EBADARGS:    "EBADARGS",
	EENCODING:   "EENCODING",
	ENODEVICE:   "ENODEVICE",
	EBADPROPS:   "EBADPROPS",
	ENOSUPPORT:  "ENOSUPPORT",
	EMAXLOAD:    "EMAXLOAD",
	EBADPATH:    "EBADPATH",
	ENOSOLUTION: "ENOSOLUTION",
	ENEGTARGET:  "ENEGTARGET",
	EHIGHHASH:   "EHIGHHASH",
	EABORT:      "EABORT",
}

// String returns the contractual name for the code, or a numeric fallback.
func (c Code) String() string {
	if name, ok := names[c]; ok {
		return name
	}
	return fmt.Sprintf("ECODE(%d)", int(c))
}

// Error implements the error interface so a Code can be returned/compared
// like any other Go error.
func (c Code) Error() string {
	return c.String()
}

// OK reports whether the code represents success.
func (c Code) OK() bool {
	return c == SUCCESS
}
