package errors

import (
	stderrors "errors"

	"github.com/vango-dev/deeplink/pkg/accounts"
	"github.com/vango-dev/deeplink/pkg/deeplink"
	"github.com/vango-dev/deeplink/pkg/pattern"
	"github.com/vango-dev/deeplink/pkg/schema"
)

// Classify maps an error from the deeplink packages to a coded LinkError.
// An error that already carries a LinkError is returned as is. Errors with
// no matching code become uncoded CLI errors.
func Classify(err error) *LinkError {
	if err == nil {
		return nil
	}

	var le *LinkError
	if stderrors.As(err, &le) {
		return le
	}

	var compileErr *pattern.CompileError
	var schemaErr *schema.Error
	switch {
	case stderrors.As(err, &compileErr):
		switch {
		case stderrors.Is(err, pattern.ErrUnknownField):
			return New("DL102").Wrap(err)
		case stderrors.Is(err, pattern.ErrUnboundField):
			return New("DL103").Wrap(err)
		default:
			return New("DL101").Wrap(err)
		}
	case stderrors.As(err, &schemaErr):
		return New("DL104").Wrap(err)
	case stderrors.Is(err, accounts.ErrObjectTooLarge):
		return New("DL302").Wrap(err)
	case stderrors.Is(err, accounts.ErrUnsupportedFormat):
		return New("DL205").Wrap(err)
	case isAccountValidation(err):
		return New("DL204").Wrap(err)
	case stderrors.Is(err, deeplink.ErrAccountSource):
		return New("DL301").Wrap(err)
	}

	return &LinkError{Category: CategoryCLI, Message: err.Error()}
}

func isAccountValidation(err error) bool {
	for _, target := range []error{
		accounts.ErrEmptyID,
		accounts.ErrEmptyHost,
		accounts.ErrInvalidHost,
		accounts.ErrUnknownFamily,
		accounts.ErrDuplicateKey,
	} {
		if stderrors.Is(err, target) {
			return true
		}
	}
	return false
}
