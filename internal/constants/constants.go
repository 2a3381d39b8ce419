// Package constants holds build-wide values.
package constants

import "runtime"

// Version is reported by -version
const Version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH
