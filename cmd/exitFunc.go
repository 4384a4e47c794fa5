package cmd

import "os"

// exitFunc terminates the process after Execute reports a failed run.
// Tests swap it to observe the exit code.
var exitFunc = os.Exit
