package detector

import "errors"

// WeakError marks a content-level failure: the detector worked but the text
// gave no acceptable answer. Weak errors never count toward failover.
type WeakError struct {
	Err error
}

func newWeakError(err error) *WeakError {
	return &WeakError{Err: err}
}

func (e *WeakError) Error() string {
	return e.Err.Error()
}

func (e *WeakError) Unwrap() error {
	return e.Err
}

func CheckWeakError(err error) bool {
	var weakErr *WeakError
	return errors.As(err, &weakErr)
}
