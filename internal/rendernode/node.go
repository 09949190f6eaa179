// Package rendernode describes the render node a submission is built from.
// Inside Houdini the node is a live host object; outside it, the same named
// parameters are read from a small YAML description exported by the shelf
// tool.
package rendernode

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Network is the Houdini context the render node lives in.
type Network string

const (
	NetworkLOP Network = "lop"
	NetworkROP Network = "rop"
)

var (
	// ErrUnknownNetwork is returned for networks other than lop and rop.
	ErrUnknownNetwork = errors.New("rendernode: unknown network")
	// ErrMissingParm is returned when a required parameter is absent.
	ErrMissingParm = errors.New("rendernode: missing parameter")
)

// ParseNetwork normalizes a network name.
func ParseNetwork(value string) (Network, error) {
	switch Network(strings.ToLower(strings.TrimSpace(value))) {
	case NetworkLOP:
		return NetworkLOP, nil
	case NetworkROP, "":
		return NetworkROP, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownNetwork, value)
	}
}

// Node exposes the named fields of a render node that submission needs.
type Node interface {
	Name() string
	Path() string
	Network() Network
	Int(parm string) (int, bool)
	String(parm string) (string, bool)
}

// description is the on-disk form of a node.
type description struct {
	Name    string         `yaml:"name"`
	Path    string         `yaml:"path"`
	Network string         `yaml:"network"`
	Scene   string         `yaml:"scene,omitempty"`
	Parms   map[string]any `yaml:"parms"`
}

// FileNode is a Node loaded from a YAML description.
type FileNode struct {
	name    string
	path    string
	network Network
	scene   string
	parms   map[string]any
}

// Load reads a node description from disk.
func Load(file string) (*FileNode, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("rendernode: read %s: %w", file, err)
	}
	node, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("rendernode: %s: %w", file, err)
	}
	return node, nil
}

// Parse decodes a node description.
func Parse(data []byte) (*FileNode, error) {
	var desc description
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	network, err := ParseNetwork(desc.Network)
	if err != nil {
		return nil, err
	}
	nodePath := strings.TrimSpace(desc.Path)
	if nodePath == "" {
		return nil, fmt.Errorf("path is required")
	}
	name := strings.TrimSpace(desc.Name)
	if name == "" {
		name = path.Base(nodePath)
	}
	parms := desc.Parms
	if parms == nil {
		parms = map[string]any{}
	}
	return &FileNode{
		name:    name,
		path:    nodePath,
		network: network,
		scene:   strings.TrimSpace(desc.Scene),
		parms:   parms,
	}, nil
}

func (n *FileNode) Name() string     { return n.name }
func (n *FileNode) Path() string     { return n.path }
func (n *FileNode) Network() Network { return n.network }

// Scene returns the hip file the node was exported from, if recorded.
func (n *FileNode) Scene() string { return n.scene }

// Int evaluates a parameter as an integer. Floats are truncated the way the
// host truncates frame parameters, and booleans map to 0/1.
func (n *FileNode) Int(parm string) (int, bool) {
	v, ok := n.parms[parm]
	if !ok {
		return 0, false
	}
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		return int(val), true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// String evaluates a parameter as a string.
func (n *FileNode) String(parm string) (string, bool) {
	v, ok := n.parms[parm]
	if !ok || v == nil {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, true
	default:
		return fmt.Sprint(val), true
	}
}
