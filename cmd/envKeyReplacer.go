package cmd

import "strings"

// envKeyReplacer maps flag names such as known-hosts to MYBACKUP_KNOWN_HOSTS.
var envKeyReplacer = strings.NewReplacer("-", "_")
