package store

import (
	"fmt"
	"strings"
)

// NodeStatus is the lifecycle state of the node session.
type NodeStatus int

const (
	Offline NodeStatus = iota
	Initializing
	Running
	Complete
	Error
)

var nodeStatusNames = map[NodeStatus]string{
	Offline:      "OFFLINE",
	Initializing: "INITIALIZING",
	Running:      "RUNNING",
	Complete:     "COMPLETE",
	Error:        "ERROR",
}

func (s NodeStatus) String() string {
	if name, ok := nodeStatusNames[s]; ok {
		return name
	}

	return fmt.Sprintf("NodeStatus(%d)", int(s))
}

func ParseNodeStatus(s string) (NodeStatus, error) {
	for status, name := range nodeStatusNames {
		if strings.EqualFold(name, s) {
			return status, nil
		}
	}

	return Offline, fmt.Errorf("unknown node status %q", s)
}

// AtLeastRunning reports whether the node has an identity and accepts calls.
func (s NodeStatus) AtLeastRunning() bool {
	return s == Running || s == Complete
}

// CanTransition tells whether the status machine allows going from s to next.
// Error is reachable from anywhere and Initializing is the only way out of it.
// Every other move goes forward; staying in place is allowed.
func (s NodeStatus) CanTransition(next NodeStatus) bool {
	switch {
	case next == Error:
		return true
	case s == Error:
		return next == Initializing
	default:
		return next >= s
	}
}

func (s NodeStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *NodeStatus) UnmarshalText(text []byte) error {
	status, err := ParseNodeStatus(string(text))
	if err != nil {
		return err
	}
	*s = status

	return nil
}
