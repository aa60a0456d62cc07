// Package urdf parses Universal Robot Description Format data into the
// description model and kinematic chains consumed by the IK solvers.
package urdf

import (
	"encoding/xml"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/katalvlaran/lvlath/bfs"
	"github.com/katalvlaran/lvlath/core"
	"github.com/pkg/errors"

	"github.com/viam-labs/sns-ik/chain"
	"github.com/viam-labs/sns-ik/spatialmath"
)

// Extension is the file extension associated with URDF files.
const Extension string = "urdf"

// robot is the top level URDF XML element.
type robot struct {
	XMLName xml.Name    `xml:"robot"`
	Name    string      `xml:"name,attr"`
	Joints  []jointElem `xml:"joint"`
}

type jointElem struct {
	XMLName xml.Name    `xml:"joint"`
	Name    string      `xml:"name,attr"`
	Type    string      `xml:"type,attr"`
	Parent  frameElem   `xml:"parent"`
	Child   frameElem   `xml:"child"`
	Origin  *poseElem   `xml:"origin,omitempty"`
	Axis    *axisElem   `xml:"axis,omitempty"`
	Limit   *limitElem  `xml:"limit,omitempty"`
	Safety  *safetyElem `xml:"safety_controller,omitempty"`
}

type frameElem struct {
	Link string `xml:"link,attr"`
}

type poseElem struct {
	XYZ string `xml:"xyz,attr"`
	RPY string `xml:"rpy,attr"`
}

type axisElem struct {
	XYZ string `xml:"xyz,attr"`
}

type limitElem struct {
	Lower    float64 `xml:"lower,attr"`    // translation limits are in meters, revolute limits are in radians
	Upper    float64 `xml:"upper,attr"`    // translation limits are in meters, revolute limits are in radians
	Velocity float64 `xml:"velocity,attr"`
	Effort   float64 `xml:"effort,attr"`
}

type safetyElem struct {
	SoftLower float64 `xml:"soft_lower_limit,attr"`
	SoftUpper float64 `xml:"soft_upper_limit,attr"`
}

// Joint is a parsed URDF joint.
type Joint struct {
	Name   string
	Type   string
	Parent string
	Child  string
	Origin spatialmath.Pose
	Axis   r3.Vector
	Limits *chain.JointLimits
}

// Model is a parsed robot description.
type Model struct {
	Name   string
	joints []*Joint
	byName map[string]*Joint
}

// ParseFile reads and parses the URDF file at the given path.
func ParseFile(filename string) (*Model, error) {
	//nolint:gosec
	xmlData, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read URDF file")
	}
	return Parse(xmlData)
}

// Parse converts URDF XML data into a Model.
func Parse(xmlData []byte) (*Model, error) {
	if len(xmlData) == 0 {
		return nil, errors.New("no model information in URDF data")
	}
	urdf := &robot{}
	if err := xml.Unmarshal(xmlData, urdf); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal URDF data")
	}

	m := &Model{Name: urdf.Name, byName: map[string]*Joint{}}
	for _, elem := range urdf.Joints {
		j := &Joint{
			Name:   elem.Name,
			Type:   elem.Type,
			Parent: elem.Parent.Link,
			Child:  elem.Child.Link,
			Origin: spatialmath.NewZeroPose(),
			// URDF defaults the axis to (1,0,0) when unspecified
			Axis: r3.Vector{X: 1},
		}
		if elem.Origin != nil {
			xyz, err := floatTriple(elem.Origin.XYZ)
			if err != nil {
				return nil, errors.Wrapf(err, "bad origin xyz on joint %q", elem.Name)
			}
			rpy, err := floatTriple(elem.Origin.RPY)
			if err != nil {
				return nil, errors.Wrapf(err, "bad origin rpy on joint %q", elem.Name)
			}
			j.Origin = spatialmath.NewPoseFromRPY(r3.Vector{X: xyz[0], Y: xyz[1], Z: xyz[2]}, rpy[0], rpy[1], rpy[2])
		}
		if elem.Axis != nil {
			xyz, err := floatTriple(elem.Axis.XYZ)
			if err != nil {
				return nil, errors.Wrapf(err, "bad axis on joint %q", elem.Name)
			}
			j.Axis = r3.Vector{X: xyz[0], Y: xyz[1], Z: xyz[2]}
		}
		if elem.Limit != nil || elem.Type == "continuous" {
			limits := &chain.JointLimits{Continuous: elem.Type == "continuous"}
			if elem.Limit != nil {
				limits.Lower = elem.Limit.Lower
				limits.Upper = elem.Limit.Upper
				limits.Velocity = elem.Limit.Velocity
			}
			if elem.Safety != nil {
				limits.HasSafety = true
				limits.SoftLower = elem.Safety.SoftLower
				limits.SoftUpper = elem.Safety.SoftUpper
			}
			j.Limits = limits
		}
		m.joints = append(m.joints, j)
		m.byName[j.Name] = j
	}
	return m, nil
}

// Joint returns the named joint.
func (m *Model) Joint(name string) (*Joint, bool) {
	j, ok := m.byName[name]
	return j, ok
}

// JointLimits returns the description-level limit data for the named joint.
func (m *Model) JointLimits(name string) (chain.JointLimits, bool) {
	j, ok := m.byName[name]
	if !ok || j.Limits == nil {
		return chain.JointLimits{}, false
	}
	return *j.Limits, true
}

// Chain extracts the serial kinematic chain running from the base link to
// the tip link. The path must follow parent-to-child joints the whole way.
func (m *Model) Chain(base, tip string) (*chain.Chain, error) {
	g := core.NewGraph()
	for _, j := range m.joints {
		if _, err := g.AddEdge(j.Parent, j.Child, 0); err != nil {
			return nil, errors.Wrapf(err, "bad link graph edge for joint %q", j.Name)
		}
	}
	res, err := bfs.BFS(g, base)
	if err != nil {
		return nil, errors.Wrapf(err, "no link %q in model %q", base, m.Name)
	}
	path, err := res.PathTo(tip)
	if err != nil {
		return nil, errors.Wrapf(err, "could not find chain %s to %s", base, tip)
	}

	kc := &chain.Chain{}
	for i := 0; i+1 < len(path); i++ {
		j := m.jointBetween(path[i], path[i+1])
		if j == nil {
			return nil, errors.Errorf("chain from %s to %s does not follow parent to child joints at link %q", base, tip, path[i])
		}
		kc.Segments = append(kc.Segments, chain.Segment{
			Joint: chain.Joint{
				Name: j.Name,
				Kind: kindForType(j.Type),
				Axis: j.Axis,
			},
			Origin: j.Origin,
		})
	}
	return kc, nil
}

// jointBetween returns the joint whose parent and child are exactly the given
// links, or nil.
func (m *Model) jointBetween(parent, child string) *Joint {
	for _, j := range m.joints {
		if j.Parent == parent && j.Child == child {
			return j
		}
	}
	return nil
}

func kindForType(urdfType string) string {
	switch urdfType {
	case "revolute", "continuous":
		return chain.KindRotAxis
	case "prismatic":
		return chain.KindTransAxis
	case "fixed":
		return chain.KindFixed
	}
	return chain.KindNone
}

// floatTriple parses a space-delimited triple such as a URDF xyz or rpy
// attribute. An empty string parses as all zeros.
func floatTriple(s string) ([3]float64, error) {
	var out [3]float64
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return out, nil
	}
	if len(fields) != 3 {
		return out, errors.Errorf("expected 3 space-delimited values, got %q", s)
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return out, err
		}
		out[i] = v
	}
	return out, nil
}
