package util

func CatchError(errp *error) {
	if r := recover(); r != nil {
		if err, ok := r.(error); ok {
			*errp = err
			return
		}
		panic(r)
	}
}

// FirstError returns first no nil error from given errors.
func FirstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
