package version

// Version is the version of the simulator server and its clients.
// It is set at build time using ldflags:
// -ldflags "-X github.com/rxtech-lab/trading-simulator/internal/version.Version=1.2.3"
// The value "main" marks a development build.
var Version = "v1.0.0"

// GetVersion returns the build version.
func GetVersion() string {
	return Version
}
