// Package attr provides access to the per-file override attribute that causes
// a file to disobey the system-wide default handler. It is the only package
// that touches the host's extended attribute store.
package attr

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/pkg/xattr"
)

// Exported error variables. Callers differentiate failure classes with
// errors.Is; a missing attribute is never an error.
var (
	// ErrNotFound indicates the file vanished between discovery and the
	// attribute operation.
	ErrNotFound = errors.New("file not found")

	// ErrPermissionDenied indicates the host refused the attribute read or
	// removal.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrAttrQuery wraps any other failure while querying the attribute.
	ErrAttrQuery = errors.New("attribute query failed")

	// ErrAttrRemove wraps any other failure while removing the attribute.
	ErrAttrRemove = errors.New("attribute removal failed")
)

// Accessor queries and removes the override attribute on a single file.
// Implementations must be stateless and safe for concurrent use against
// different paths.
type Accessor interface {
	// HasOverride reports whether the override attribute is present.
	// An absent attribute is a false result, not an error.
	HasOverride(path string) (bool, error)

	// ClearOverride removes the override attribute. Removing an attribute
	// that is already absent succeeds (idempotent).
	ClearOverride(path string) error

	// Attribute returns the attribute name this accessor operates on.
	Attribute() string
}

// DefaultAttribute returns the conventional override attribute name for the
// current platform. On darwin this is the LaunchServices "open with"
// binding; elsewhere user-namespace attributes are used.
func DefaultAttribute() string {
	if runtime.GOOS == "darwin" {
		return "com.apple.LaunchServices.OpenWith"
	}
	return "user.openwith"
}

// XattrAccessor implements Accessor on top of the host xattr syscalls.
type XattrAccessor struct {
	attribute string
}

// NewXattrAccessor creates an accessor for the given attribute name. An
// empty name selects the platform default.
func NewXattrAccessor(attribute string) *XattrAccessor {
	if attribute == "" {
		attribute = DefaultAttribute()
	}
	return &XattrAccessor{attribute: attribute}
}

// Attribute implements Accessor.
func (a *XattrAccessor) Attribute() string { return a.attribute }

// HasOverride implements Accessor.
func (a *XattrAccessor) HasOverride(path string) (bool, error) {
	_, err := xattr.LGet(path, a.attribute)
	if err == nil {
		return true, nil
	}
	if isAttrAbsent(err) {
		return false, nil
	}
	return false, classify(err, ErrAttrQuery, "query %q on %s", a.attribute, path)
}

// ClearOverride implements Accessor.
func (a *XattrAccessor) ClearOverride(path string) error {
	err := xattr.LRemove(path, a.attribute)
	if err == nil || isAttrAbsent(err) {
		return nil
	}
	return classify(err, ErrAttrRemove, "remove %q from %s", a.attribute, path)
}

// isAttrAbsent reports whether err means the attribute does not exist on an
// otherwise readable file.
func isAttrAbsent(err error) bool {
	return errors.Is(err, xattr.ENOATTR)
}

// classify maps a raw xattr error onto the package's typed errors, keeping
// the underlying cause in the chain.
func classify(err, fallback error, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: %s: %v", ErrNotFound, msg, err)
	case errors.Is(err, os.ErrPermission):
		return fmt.Errorf("%w: %s: %v", ErrPermissionDenied, msg, err)
	default:
		return fmt.Errorf("%w: %s: %v", fallback, msg, err)
	}
}
