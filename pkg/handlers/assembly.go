package handlers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/lathe/pkg/host"
)

// Assembly returns the component and joint actions.
func Assembly() Table {
	return Table{
		"list_components":       listComponents,
		"create_component":      createComponent,
		"activate_component":    activateComponent,
		"ground_component":      groundComponent,
		"list_joints":           listJoints,
		"create_joint":          createJoint,
		"create_as_built_joint": createAsBuiltJoint,
	}
}

func listComponents(ctx context.Context, ec *host.Context, params map[string]any) (any, error) {
	root := ec.Root()

	components := []map[string]any{{
		"index":       -1,
		"name":        root.Name,
		"component":   root.Name,
		"is_root":     true,
		"is_grounded": true,
		"is_visible":  true,
		"body_count":  len(root.Bodies),
	}}

	occs := ec.Design().AllOccurrences()
	for i, occ := range occs {
		components = append(components, map[string]any{
			"index":       i,
			"name":        occ.Name,
			"component":   occ.Component.Name,
			"is_root":     false,
			"is_grounded": occ.Grounded,
			"is_visible":  occ.Visible,
			"body_count":  len(occ.Component.Bodies),
		})
	}

	return map[string]any{
		"components":       components,
		"count":            len(components),
		"occurrence_count": len(occs),
	}, nil
}

func createComponent(ctx context.Context, ec *host.Context, params map[string]any) (any, error) {
	var p struct {
		Name string  `json:"name"`
		X    float64 `json:"x"`
		Y    float64 `json:"y"`
		Z    float64 `json:"z"`
		RX   float64 `json:"rx"`
		RY   float64 `json:"ry"`
		RZ   float64 `json:"rz"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}

	d := ec.Design()
	if p.Name == "" {
		p.Name = d.NextComponentName()
	}

	comp := &host.Component{Name: p.Name}
	occ := &host.Occurrence{
		Name:        p.Name + ":1",
		Component:   comp,
		Visible:     true,
		Translation: [3]float64{p.X, p.Y, p.Z},
		Rotation:    [3]float64{p.RX, p.RY, p.RZ},
	}
	d.Root.Occurrences = append(d.Root.Occurrences, occ)

	return map[string]any{
		"message":          fmt.Sprintf("Created component '%s'", comp.Name),
		"occurrence_index": len(d.AllOccurrences()) - 1,
		"component_name":   comp.Name,
		"occurrence_name":  occ.Name,
	}, nil
}

// resolveOccurrence applies the shared index-or-name selector used by the
// assembly actions.
func resolveOccurrence(ec *host.Context, index *int, name string) (*host.Occurrence, error) {
	if index != nil {
		return ec.OccurrenceAt(*index)
	}
	if name != "" {
		return ec.OccurrenceNamed(name)
	}
	return nil, nil
}

func activateComponent(ctx context.Context, ec *host.Context, params map[string]any) (any, error) {
	var p struct {
		OccurrenceIndex *int   `json:"occurrence_index"`
		Name            string `json:"name"`
		ActivateRoot    bool   `json:"activate_root"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}

	d := ec.Design()
	if p.ActivateRoot {
		d.ActivateComponent(d.Root)
		return map[string]any{
			"message":             fmt.Sprintf("Activated root component '%s'", d.Root.Name),
			"activated_component": d.Root.Name,
			"is_root":             true,
		}, nil
	}

	occ, err := resolveOccurrence(ec, p.OccurrenceIndex, p.Name)
	if err != nil {
		return nil, err
	}
	if occ == nil {
		return nil, fmt.Errorf("Provide occurrence_index, name, or activate_root=true")
	}

	d.ActivateComponent(occ.Component)
	return map[string]any{
		"message":             fmt.Sprintf("Activated component '%s'", occ.Component.Name),
		"activated_component": occ.Component.Name,
		"occurrence_name":     occ.Name,
		"is_root":             false,
	}, nil
}

func groundComponent(ctx context.Context, ec *host.Context, params map[string]any) (any, error) {
	var p struct {
		OccurrenceIndex *int   `json:"occurrence_index"`
		Name            string `json:"name"`
		Grounded        *bool  `json:"grounded"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}

	occ, err := resolveOccurrence(ec, p.OccurrenceIndex, p.Name)
	if err != nil {
		return nil, err
	}
	if occ == nil {
		return nil, fmt.Errorf("Provide occurrence_index or name")
	}

	occ.Grounded = p.Grounded == nil || *p.Grounded

	status := "grounded"
	if !occ.Grounded {
		status = "ungrounded"
	}
	return map[string]any{
		"message":         fmt.Sprintf("Component '%s' is now %s", occ.Name, status),
		"occurrence_name": occ.Name,
		"component_name":  occ.Component.Name,
		"is_grounded":     occ.Grounded,
	}, nil
}

func listJoints(ctx context.Context, ec *host.Context, params map[string]any) (any, error) {
	d := ec.Design()

	joints := make([]map[string]any, 0, len(d.Joints))
	regular, asBuilt := 0, 0
	for _, j := range d.Joints {
		kind := "joint"
		if j.AsBuilt {
			kind = "as_built"
			asBuilt++
		} else {
			regular++
		}
		joints = append(joints, map[string]any{
			"index":          len(joints),
			"name":           j.Name,
			"type":           j.Type,
			"occurrence_one": j.OccurrenceOne,
			"occurrence_two": j.OccurrenceTwo,
			"is_suppressed":  j.Suppressed,
			"joint_kind":     kind,
		})
	}

	return map[string]any{
		"joints":               joints,
		"count":                len(joints),
		"joint_count":          regular,
		"as_built_joint_count": asBuilt,
	}, nil
}

var jointTypes = map[string]string{
	"rigid":       "Rigid",
	"revolute":    "Revolute",
	"slider":      "Slider",
	"cylindrical": "Cylindrical",
	"ball":        "Ball",
	"planar":      "Planar",
	"pin_slot":    "PinSlot",
}

func checkJointType(jointType string) (string, error) {
	if jointType == "" {
		jointType = "rigid"
	}
	name, ok := jointTypes[jointType]
	if !ok {
		valid := make([]string, 0, len(jointTypes))
		for k := range jointTypes {
			valid = append(valid, k)
		}
		sort.Strings(valid)
		return "", fmt.Errorf("Invalid joint type '%s'. Use one of: %s", jointType, strings.Join(valid, ", "))
	}
	return name, nil
}

func checkJointDirection(direction string) (string, error) {
	if direction == "" {
		return "z", nil
	}
	switch direction {
	case "x", "y", "z":
		return direction, nil
	}
	return "", fmt.Errorf("Invalid joint direction '%s'. Use 'x', 'y', or 'z'", direction)
}

type jointOccurrenceParams struct {
	OccurrenceOneIndex *int   `json:"occurrence_one_index"`
	OccurrenceTwoIndex *int   `json:"occurrence_two_index"`
	OccurrenceOneName  string `json:"occurrence_one_name"`
	OccurrenceTwoName  string `json:"occurrence_two_name"`
}

func (p *jointOccurrenceParams) resolve(ec *host.Context) (one, two *host.Occurrence, err error) {
	one, err = resolveOccurrence(ec, p.OccurrenceOneIndex, p.OccurrenceOneName)
	if err != nil {
		return nil, nil, fmt.Errorf("Occurrence one: %s", err.Error())
	}
	if one == nil {
		return nil, nil, fmt.Errorf("Provide occurrence_one_index or occurrence_one_name")
	}
	two, err = resolveOccurrence(ec, p.OccurrenceTwoIndex, p.OccurrenceTwoName)
	if err != nil {
		return nil, nil, fmt.Errorf("Occurrence two: %s", err.Error())
	}
	if two == nil {
		return nil, nil, fmt.Errorf("Provide occurrence_two_index or occurrence_two_name")
	}
	return one, two, nil
}

func createJoint(ctx context.Context, ec *host.Context, params map[string]any) (any, error) {
	var p struct {
		jointOccurrenceParams
		JointType string `json:"joint_type"`
		Direction string `json:"direction"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}

	jointType, err := checkJointType(p.JointType)
	if err != nil {
		return nil, err
	}
	direction, err := checkJointDirection(p.Direction)
	if err != nil {
		return nil, err
	}
	one, two, err := p.resolve(ec)
	if err != nil {
		return nil, err
	}

	d := ec.Design()
	joint := &host.Joint{
		Name:          d.NextJointName(),
		Type:          jointType,
		OccurrenceOne: one.Name,
		OccurrenceTwo: two.Name,
		Direction:     direction,
	}
	d.Joints = append(d.Joints, joint)

	return map[string]any{
		"message":        fmt.Sprintf("Created %s joint '%s'", strings.ToLower(jointType), joint.Name),
		"joint_name":     joint.Name,
		"joint_index":    len(d.Joints) - 1,
		"type":           jointType,
		"occurrence_one": one.Name,
		"occurrence_two": two.Name,
	}, nil
}

func createAsBuiltJoint(ctx context.Context, ec *host.Context, params map[string]any) (any, error) {
	var p struct {
		jointOccurrenceParams
		JointType string `json:"joint_type"`
		Direction string `json:"direction"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}

	jointType, err := checkJointType(p.JointType)
	if err != nil {
		return nil, err
	}
	direction, err := checkJointDirection(p.Direction)
	if err != nil {
		return nil, err
	}
	one, two, err := p.resolve(ec)
	if err != nil {
		return nil, err
	}

	d := ec.Design()
	joint := &host.Joint{
		Name:          d.NextJointName(),
		Type:          jointType,
		OccurrenceOne: one.Name,
		OccurrenceTwo: two.Name,
		Direction:     direction,
		AsBuilt:       true,
	}
	d.Joints = append(d.Joints, joint)

	return map[string]any{
		"message":        fmt.Sprintf("Created as-built %s joint '%s'", strings.ToLower(jointType), joint.Name),
		"joint_name":     joint.Name,
		"joint_index":    len(d.Joints) - 1,
		"type":           jointType,
		"occurrence_one": one.Name,
		"occurrence_two": two.Name,
		"direction":      direction,
	}, nil
}
