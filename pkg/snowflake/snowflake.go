package snowflake

import (
	"fmt"
	"strconv"
	"sync"
	"time"
)

// Generator mints 64-bit identifiers that encode a millisecond timestamp,
// a (datacenter, worker) pair and a per-millisecond sequence counter:
//
//	1 bit unused | 41 bits timestamp offset | 5 bits datacenter | 5 bits worker | 12 bits sequence
//
// IDs minted by one Generator are strictly increasing. IDs from generators
// with distinct (datacenter, worker) pairs never collide. There is no
// cross-process coordination: deployments must assign each process its own
// pair.
type Generator struct {
	mu           sync.Mutex
	workerID     int64
	datacenterID int64
	sequence     int64
	lastMillis   int64
}

// Epoch is the custom epoch all timestamps are measured from
// (2024-01-01T00:00:00Z, in Unix milliseconds).
const Epoch int64 = 1704067200000

const (
	workerIDBits     = 5
	datacenterIDBits = 5
	sequenceBits     = 12

	MaxWorkerID     = -1 ^ (-1 << workerIDBits)     // 31
	MaxDatacenterID = -1 ^ (-1 << datacenterIDBits) // 31
	sequenceMask    = -1 ^ (-1 << sequenceBits)     // 4095

	workerIDShift     = sequenceBits
	datacenterIDShift = sequenceBits + workerIDBits
	timestampShift    = sequenceBits + workerIDBits + datacenterIDBits
)

// ClockRewindError reports that the system clock moved backward between two
// NextID calls. Generating would risk duplicate or out-of-order IDs, so the
// call is refused instead.
type ClockRewindError struct {
	LastMillis int64
	NowMillis  int64
}

func (e *ClockRewindError) Error() string {
	return fmt.Sprintf("snowflake: clock moved backwards, refusing to generate (last=%d now=%d)", e.LastMillis, e.NowMillis)
}

// ConfigError reports an out-of-range worker or datacenter id.
type ConfigError struct {
	Field string
	Value int64
	Max   int64
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("snowflake: %s %d out of range [0,%d]", e.Field, e.Value, e.Max)
}

// New returns a Generator for the given (workerID, datacenterID) pair,
// each in [0,31].
func New(workerID, datacenterID int64) (*Generator, error) {
	if workerID < 0 || workerID > MaxWorkerID {
		return nil, &ConfigError{Field: "worker id", Value: workerID, Max: MaxWorkerID}
	}
	if datacenterID < 0 || datacenterID > MaxDatacenterID {
		return nil, &ConfigError{Field: "datacenter id", Value: datacenterID, Max: MaxDatacenterID}
	}
	return &Generator{
		workerID:     workerID,
		datacenterID: datacenterID,
		lastMillis:   -1,
	}, nil
}

// NextID returns the next identifier. Within one millisecond up to 4096 IDs
// are minted; when the sequence overflows the call spins until the clock
// advances, so IDs remain strictly increasing at any call rate.
func (g *Generator) NextID() (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := nowMillis()
	if now < g.lastMillis {
		return 0, &ClockRewindError{LastMillis: g.lastMillis, NowMillis: now}
	}

	if now == g.lastMillis {
		g.sequence = (g.sequence + 1) & sequenceMask
		if g.sequence == 0 {
			now = waitNextMillis(g.lastMillis)
		}
	} else {
		g.sequence = 0
	}
	g.lastMillis = now

	id := (now-Epoch)<<timestampShift |
		g.datacenterID<<datacenterIDShift |
		g.workerID<<workerIDShift |
		g.sequence
	return id, nil
}

// NextIDString returns the next identifier as a decimal string. String form
// is used at every API boundary so 64-bit values survive JSON consumers that
// store integers as floats.
func (g *Generator) NextIDString() (string, error) {
	id, err := g.NextID()
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 10), nil
}

// NextIDs mints n identifiers in one call. The returned slice is strictly
// increasing.
func (g *Generator) NextIDs(n int) ([]int64, error) {
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		id, err := g.NextID()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Parts is the decomposition of an identifier, for diagnostics.
type Parts struct {
	Timestamp    time.Time
	DatacenterID int64
	WorkerID     int64
	Sequence     int64
}

// Parse decomposes an identifier into its fields.
func Parse(id int64) Parts {
	return Parts{
		Timestamp:    time.UnixMilli((id >> timestampShift) + Epoch),
		DatacenterID: (id >> datacenterIDShift) & MaxDatacenterID,
		WorkerID:     (id >> workerIDShift) & MaxWorkerID,
		Sequence:     id & sequenceMask,
	}
}

// ParseString decomposes a decimal-string identifier.
func ParseString(id string) (Parts, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return Parts{}, fmt.Errorf("snowflake: invalid id %q: %w", id, err)
	}
	return Parse(n), nil
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

func waitNextMillis(last int64) int64 {
	now := nowMillis()
	for now <= last {
		now = nowMillis()
	}
	return now
}
