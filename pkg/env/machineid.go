package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// MachineID retrieves an ID identifying this machine for the app.
// The raw machine ID is hashed so it's not exposed on the broker.
// Falls back to the hostname where no machine ID exists.
func MachineID(app string) string {
	id, err := machineid.ProtectedID(app)
	if err == nil {
		return id[:12]
	}
	glog.Warningf("machine id unavailable: %v", err)
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "unknown"
	}
	return host
}
