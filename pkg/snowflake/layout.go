package snowflake

import (
	"fmt"
	"time"
)

const (
	// Epoch is 2024-01-01T00:00:00Z in Unix milliseconds.
	Epoch int64 = 1704067200000

	TimestampBits    = 41
	NodeGroupBits    = 5
	NodeInstanceBits = 5
	SequenceBits     = 12

	MaxTimestamp    = -1 ^ (-1 << TimestampBits)
	MaxNodeGroup    = -1 ^ (-1 << NodeGroupBits)
	MaxNodeInstance = -1 ^ (-1 << NodeInstanceBits)
	MaxSequence     = -1 ^ (-1 << SequenceBits)

	NodeInstanceShift = SequenceBits
	NodeGroupShift    = SequenceBits + NodeInstanceBits
	TimestampShift    = SequenceBits + NodeInstanceBits + NodeGroupBits
)

// Parts holds the decoded fields of an ID.
type Parts struct {
	// Timestamp is milliseconds since Epoch.
	Timestamp    int64 `json:"timestamp"`
	NodeGroup    int64 `json:"node_group"`
	NodeInstance int64 `json:"node_instance"`
	Sequence     int64 `json:"sequence"`
}

// Decode splits an ID into its fields without loss.
func Decode(id int64) Parts {
	return Parts{
		Timestamp:    (id >> TimestampShift) & MaxTimestamp,
		NodeGroup:    (id >> NodeGroupShift) & MaxNodeGroup,
		NodeInstance: (id >> NodeInstanceShift) & MaxNodeInstance,
		Sequence:     id & MaxSequence,
	}
}

// Compose packs the fields into an ID, rejecting values that do not fit their
// bit widths.
func Compose(p Parts) (int64, error) {
	if p.Timestamp < 0 || p.Timestamp > MaxTimestamp {
		return 0, fmt.Errorf("timestamp %d: %w", p.Timestamp, ErrEpochOverflow)
	}
	if err := checkNode(p.NodeGroup, p.NodeInstance); err != nil {
		return 0, err
	}
	if p.Sequence < 0 || p.Sequence > MaxSequence {
		return 0, fmt.Errorf("sequence %d outside [0, %d]", p.Sequence, MaxSequence)
	}
	return p.Timestamp<<TimestampShift |
		p.NodeGroup<<NodeGroupShift |
		p.NodeInstance<<NodeInstanceShift |
		p.Sequence, nil
}

// UnixMilli returns the wall clock time of the ID in Unix milliseconds.
func (p Parts) UnixMilli() int64 { return Epoch + p.Timestamp }

// Time returns the UTC wall clock time the ID was minted at, truncated to the
// millisecond.
func (p Parts) Time() time.Time { return time.UnixMilli(p.UnixMilli()).UTC() }

func checkNode(group, instance int64) error {
	if group < 0 || group > MaxNodeGroup {
		return &ConfigError{Field: "node group", Value: group, Max: MaxNodeGroup}
	}
	if instance < 0 || instance > MaxNodeInstance {
		return &ConfigError{Field: "node instance", Value: instance, Max: MaxNodeInstance}
	}
	return nil
}
