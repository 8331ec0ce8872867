package services

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/cyphera/cyphera-xdk/internal/logger"
	"github.com/cyphera/cyphera-xdk/pkg/xid"
)

// MaxBatchSize caps NewBatch.
const MaxBatchSize = 1000

// ErrInvalidBatchSize is returned for batch sizes outside 1..MaxBatchSize.
var ErrInvalidBatchSize = fmt.Errorf("batch size must be between 1 and %d", MaxBatchSize)

// IDService hands out XIDs from a single process-wide generator.
type IDService struct {
	generator *xid.Generator
}

// IDInfo is the decomposed form of an ID.
type IDInfo struct {
	ID        string    `json:"id"`
	Time      time.Time `json:"time"`
	MachineID string    `json:"machine_id"`
	Pid       uint16    `json:"pid"`
	Counter   int32     `json:"counter"`
}

// NewIDService shares the process-wide xid generator, so IDs minted through
// xid.New and through the service come from one counter. A non-empty
// machineOverride builds a dedicated generator for that machine id instead.
func NewIDService(machineOverride string) *IDService {
	var g *xid.Generator
	if machineOverride != "" {
		g = xid.NewGenerator(xid.NewHostIdentity(machineOverride, os.Getpid(), xid.SourceOverride))
	} else {
		g = xid.Default()
	}

	logger.SetHostIdentity(g.Host())
	logger.Info("Initialized id generator")

	return NewIDServiceWithGenerator(g)
}

// NewIDServiceWithGenerator wraps an existing generator.
func NewIDServiceWithGenerator(g *xid.Generator) *IDService {
	return &IDService{generator: g}
}

// New returns a fresh ID.
func (s *IDService) New() xid.ID {
	return s.generator.New()
}

// NewString returns a fresh ID in its 20-character form.
func (s *IDService) NewString() string {
	return s.generator.New().String()
}

// NewBatch returns n fresh IDs in generation order.
func (s *IDService) NewBatch(n int) ([]xid.ID, error) {
	if n < 1 || n > MaxBatchSize {
		return nil, ErrInvalidBatchSize
	}
	ids := make([]xid.ID, n)
	for i := range ids {
		ids[i] = s.generator.New()
	}
	return ids, nil
}

// Parse decodes the 20-character form and splits it into its parts.
func (s *IDService) Parse(str string) (*IDInfo, error) {
	id, err := xid.FromString(str)
	if err != nil {
		return nil, err
	}
	return Describe(id), nil
}

// Describe splits id into its parts.
func Describe(id xid.ID) *IDInfo {
	return &IDInfo{
		ID:        id.String(),
		Time:      id.Time().UTC(),
		MachineID: hex.EncodeToString(id.MachineID()),
		Pid:       id.Pid(),
		Counter:   id.Counter(),
	}
}
