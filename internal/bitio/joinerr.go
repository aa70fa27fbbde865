package bitio

import "errors"

func joinErrs(kind, cause error) error {
	return errors.Join(kind, cause)
}
