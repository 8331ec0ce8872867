package xid

import (
	"bytes"
	"crypto/md5"
	"os"

	"github.com/google/uuid"
)

// Host identity sources, in the order DetectHostIdentity tries them.
const (
	SourceMachineID = "machine-id"
	SourceHostname  = "hostname"
	SourceRandom    = "random"
	SourceOverride  = "override"
)

// machineIDFiles are read in order; the first non-empty one wins.
var machineIDFiles = []string{
	"/etc/machine-id",
	"/var/lib/dbus/machine-id",
	"/sys/class/dmi/id/product_uuid",
}

// HostIdentity is the per-process part of an ID. It is computed once and
// never changes afterwards.
type HostIdentity struct {
	MachineID [3]byte
	Pid       uint16
	// Source records where the machine id came from.
	Source string
}

// NewHostIdentity derives an identity from an arbitrary host string and an
// OS process id.
func NewHostIdentity(host string, pid int, source string) HostIdentity {
	sum := md5.Sum([]byte(host))
	h := HostIdentity{
		Pid:    uint16(pid),
		Source: source,
	}
	copy(h.MachineID[:], sum[:3])
	return h
}

// DetectHostIdentity reads the platform machine id, falling back to the
// hostname and finally to a random UUID.
func DetectHostIdentity() HostIdentity {
	pid := os.Getpid()

	for _, path := range machineIDFiles {
		b, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if id := bytes.TrimSpace(b); len(id) > 0 {
			return NewHostIdentity(string(id), pid, SourceMachineID)
		}
	}

	if name, err := os.Hostname(); err == nil && name != "" {
		return NewHostIdentity(name, pid, SourceHostname)
	}

	return NewHostIdentity(uuid.NewString(), pid, SourceRandom)
}
