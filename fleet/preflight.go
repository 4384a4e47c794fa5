package fleet

import (
	"errors"
	"io/fs"
	"os"
)

// CheckCredentials verifies that every host's key file exists. It returns
// one *CredentialError per host whose key is missing, in fleet order, and
// nil when all keys are present.
func CheckCredentials(f *Fleet) []*CredentialError {
	var out []*CredentialError
	for _, h := range f.Hosts {
		st, err := os.Stat(h.KeyPath)
		if err == nil && st.Mode().IsRegular() {
			continue
		}
		if err == nil {
			err = &fs.PathError{Op: "stat", Path: h.KeyPath, Err: fs.ErrInvalid}
		}
		out = append(out, &CredentialError{Host: h.Name, KeyPath: h.KeyPath, Err: err})
	}
	return out
}

// CredentialsError folds pre-flight failures into a single error.
func CredentialsError(errs []*CredentialError) error {
	if len(errs) == 0 {
		return nil
	}
	joined := make([]error, 0, len(errs))
	for _, e := range errs {
		joined = append(joined, e)
	}
	return errors.Join(joined...)
}
