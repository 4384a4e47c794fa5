package fleet

import "os"

// readFile is a seam so tests can exercise unreadable configs.
var readFile = os.ReadFile
