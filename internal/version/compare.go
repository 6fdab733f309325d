package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
)

// CheckCompatibility reports whether a client built at clientVersion can talk to a server
// running serverVersion.
//
// Rules:
//   - "main" on either side is a development build and skips the check
//   - major versions must match
//   - the server minor version must be at least the client's
//   - patch versions may differ
//
// Examples:
//   - server 1.2.0, client 1.2.7 -> OK
//   - server 1.3.0, client 1.2.0 -> OK (server is newer)
//   - server 1.2.0, client 1.3.0 -> ERROR (client needs newer routes)
//   - server 2.0.0, client 1.2.0 -> ERROR
func CheckCompatibility(serverVersion, clientVersion string) error {
	serverVersion = strings.TrimPrefix(strings.TrimSpace(serverVersion), "v")
	clientVersion = strings.TrimPrefix(strings.TrimSpace(clientVersion), "v")

	if serverVersion == "main" || clientVersion == "main" {
		return nil
	}

	server, err := semver.NewVersion(serverVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid server version '%s'", serverVersion)
	}

	client, err := semver.NewVersion(clientVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid client version '%s'", clientVersion)
	}

	if server.Major() != client.Major() {
		return errors.Newf(errors.ErrCodeVersionMismatch,
			"major version mismatch: server is %d.x.x but client requires %d.x.x",
			server.Major(), client.Major())
	}

	if server.Minor() < client.Minor() {
		return errors.Newf(errors.ErrCodeVersionMismatch,
			"server %d.%d.x is older than client %d.%d.x",
			server.Major(), server.Minor(), client.Major(), client.Minor())
	}

	return nil
}
