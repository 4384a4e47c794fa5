package fleet

import "fmt"

// ConfigError reports a fleet config that cannot be read or is missing
// required fields. It is fatal for the run.
type ConfigError struct {
	Path  string
	Field string
	Msg   string
	Err   error
}

func (e *ConfigError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}
	switch {
	case e.Field != "" && e.Path != "":
		return fmt.Sprintf("fleet config %s: %s: %s", e.Path, e.Field, msg)
	case e.Field != "":
		return fmt.Sprintf("fleet config: %s: %s", e.Field, msg)
	case e.Path != "":
		return fmt.Sprintf("fleet config %s: %s", e.Path, msg)
	}
	return "fleet config: " + msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// CredentialError reports a host whose SSH key file is absent.
type CredentialError struct {
	Host    string
	KeyPath string
	Err     error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("host %s: SSH key %s does not exist, you can generate it with: mybackup genkey %s",
		e.Host, e.KeyPath, e.KeyPath)
}

func (e *CredentialError) Unwrap() error { return e.Err }
