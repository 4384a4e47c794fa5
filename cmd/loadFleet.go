package cmd

import (
	"fmt"

	"github.com/nuclearcat/mybackup/fleet"
)

// loadFleet reads and validates the fleet config, then checks that every
// host's key file exists. Missing keys are all reported together and stop
// the run before any host is contacted.
func loadFleet(path string) (*fleet.Fleet, error) {
	fl, err := fleet.Load(path)
	if err != nil {
		return nil, err
	}
	if err := fleet.CredentialsError(fleet.CheckCredentials(fl)); err != nil {
		return nil, fmt.Errorf("credential pre-flight failed:\n%w", err)
	}
	return fl, nil
}
