package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListComponentsIncludesRoot(t *testing.T) {
	ec := newTestContext()

	out, err := call(t, ec, "list_components", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, out["count"])
	components := out["components"].([]map[string]any)
	assert.Equal(t, -1, components[0]["index"])
	assert.Equal(t, true, components[0]["is_root"])
}

func TestCreateAndActivateComponent(t *testing.T) {
	ec := newTestContext()

	out, err := call(t, ec, "create_component", map[string]any{"name": "Arm", "z": 3.0})
	require.NoError(t, err)
	assert.Equal(t, "Created component 'Arm'", out["message"])
	assert.Equal(t, 0, out["occurrence_index"])
	assert.Equal(t, "Arm:1", out["occurrence_name"])

	out, err = call(t, ec, "activate_component", map[string]any{"occurrence_index": 0})
	require.NoError(t, err)
	assert.Equal(t, "Arm", out["activated_component"])

	// New sketches land on the active component.
	_, err = call(t, ec, "create_sketch", nil)
	require.NoError(t, err)
	sketch, comp, err := ec.SketchAt(-1)
	require.NoError(t, err)
	assert.Equal(t, "Arm", comp.Name)
	assert.Equal(t, "Sketch1", sketch.Name)

	out, err = call(t, ec, "activate_component", map[string]any{"activate_root": true})
	require.NoError(t, err)
	assert.Equal(t, true, out["is_root"])

	_, err = call(t, ec, "activate_component", nil)
	require.EqualError(t, err, "Provide occurrence_index, name, or activate_root=true")
}

func TestActivateComponentByName(t *testing.T) {
	ec := newTestContext()
	_, err := call(t, ec, "create_component", map[string]any{"name": "Base"})
	require.NoError(t, err)

	out, err := call(t, ec, "activate_component", map[string]any{"name": "Base"})
	require.NoError(t, err)
	assert.Equal(t, "Base", out["activated_component"])

	_, err = call(t, ec, "activate_component", map[string]any{"name": "Missing"})
	require.EqualError(t, err, "No occurrence found with name 'Missing'")

	_, err = call(t, ec, "activate_component", map[string]any{"occurrence_index": 7})
	require.EqualError(t, err, "Invalid occurrence index 7. Has 1 occurrences (0-0)")
}

func TestGroundComponent(t *testing.T) {
	ec := newTestContext()
	_, err := call(t, ec, "create_component", map[string]any{"name": "Base"})
	require.NoError(t, err)

	out, err := call(t, ec, "ground_component", map[string]any{"name": "Base"})
	require.NoError(t, err)
	assert.Equal(t, "Component 'Base:1' is now grounded", out["message"])
	assert.Equal(t, true, out["is_grounded"])

	out, err = call(t, ec, "ground_component", map[string]any{"name": "Base", "grounded": false})
	require.NoError(t, err)
	assert.Equal(t, false, out["is_grounded"])
}

func TestCreateJoint(t *testing.T) {
	ec := newTestContext()
	_, err := call(t, ec, "create_component", map[string]any{"name": "Base"})
	require.NoError(t, err)
	_, err = call(t, ec, "create_component", map[string]any{"name": "Arm"})
	require.NoError(t, err)

	out, err := call(t, ec, "create_joint", map[string]any{
		"occurrence_one_index": 0,
		"occurrence_two_index": 1,
		"joint_type":           "revolute",
		"direction":            "y",
	})
	require.NoError(t, err)
	assert.Equal(t, "Created revolute joint 'Joint1'", out["message"])
	assert.Equal(t, "Base:1", out["occurrence_one"])
	assert.Equal(t, "Arm:1", out["occurrence_two"])

	joints := ec.Design().Joints
	require.Len(t, joints, 1)
	assert.Equal(t, "Revolute", joints[0].Type)
	assert.Equal(t, "y", joints[0].Direction)
	assert.False(t, joints[0].AsBuilt)
}

func TestCreateJointValidation(t *testing.T) {
	ec := newTestContext()
	_, err := call(t, ec, "create_component", map[string]any{"name": "Base"})
	require.NoError(t, err)
	_, err = call(t, ec, "create_component", map[string]any{"name": "Arm"})
	require.NoError(t, err)

	_, err = call(t, ec, "create_joint", map[string]any{
		"occurrence_one_index": 0,
		"occurrence_two_index": 1,
		"joint_type":           "hinge",
	})
	require.EqualError(t, err, "Invalid joint type 'hinge'. Use one of: ball, cylindrical, pin_slot, planar, revolute, rigid, slider")

	_, err = call(t, ec, "create_joint", map[string]any{
		"occurrence_one_index": 0,
		"occurrence_two_index": 1,
		"direction":            "w",
	})
	require.EqualError(t, err, "Invalid joint direction 'w'. Use 'x', 'y', or 'z'")

	_, err = call(t, ec, "create_joint", map[string]any{"occurrence_two_index": 1})
	require.EqualError(t, err, "Provide occurrence_one_index or occurrence_one_name")
}

func TestCreateAsBuiltJointAndList(t *testing.T) {
	ec := newTestContext()
	_, err := call(t, ec, "create_component", map[string]any{"name": "Base"})
	require.NoError(t, err)
	_, err = call(t, ec, "create_component", map[string]any{"name": "Arm"})
	require.NoError(t, err)

	_, err = call(t, ec, "create_joint", map[string]any{
		"occurrence_one_index": 0,
		"occurrence_two_index": 1,
	})
	require.NoError(t, err)

	out, err := call(t, ec, "create_as_built_joint", map[string]any{
		"occurrence_one_name": "Base",
		"occurrence_two_name": "Arm",
		"joint_type":          "slider",
		"direction":           "x",
	})
	require.NoError(t, err)
	assert.Equal(t, "Created as-built slider joint 'Joint2'", out["message"])

	listed, err := call(t, ec, "list_joints", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, listed["count"])
	assert.Equal(t, 1, listed["joint_count"])
	assert.Equal(t, 1, listed["as_built_joint_count"])
	joints := listed["joints"].([]map[string]any)
	assert.Equal(t, "joint", joints[0]["joint_kind"])
	assert.Equal(t, "as_built", joints[1]["joint_kind"])
}
