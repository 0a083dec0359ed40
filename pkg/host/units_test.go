package host_test

import (
	"testing"

	"github.com/aretw0/lathe/pkg/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToCentimeters(t *testing.T) {
	cases := []struct {
		value float64
		unit  string
		want  float64
	}{
		{25, "mm", 2.5},
		{2.5, "cm", 2.5},
		{1, "m", 100},
		{1, "in", 2.54},
		{3, "", 3},
	}
	for _, tc := range cases {
		got, err := host.ToCentimeters(tc.value, tc.unit)
		require.NoError(t, err)
		assert.InDelta(t, tc.want, got, 1e-9, "%v %s", tc.value, tc.unit)
	}

	_, err := host.ToCentimeters(1, "furlong")
	assert.Error(t, err)
}

func TestEvalExpression_LiteralsAndUnits(t *testing.T) {
	d := host.NewDesign("test")

	v, err := d.EvalExpression("25 mm")
	require.NoError(t, err)
	assert.InDelta(t, 2.5, v, 1e-9)

	v, err = d.EvalExpression("2 + 3 * 4")
	require.NoError(t, err)
	assert.InDelta(t, 14, v, 1e-9)

	v, err = d.EvalExpression("(2 + 3) * 4")
	require.NoError(t, err)
	assert.InDelta(t, 20, v, 1e-9)
}

func TestEvalExpression_ParameterReferences(t *testing.T) {
	d := host.NewDesign("test")
	d.UserParams = append(d.UserParams,
		&host.Parameter{Name: "ball_diameter", Expression: "4 cm", Value: 4, Unit: "cm"},
		&host.Parameter{Name: "clearance", Expression: "2 mm", Value: 0.2, Unit: "mm"},
	)

	v, err := d.EvalExpression("ball_diameter + clearance")
	require.NoError(t, err)
	assert.InDelta(t, 4.2, v, 1e-9)

	v, err = d.EvalExpression("ball_diameter / 2")
	require.NoError(t, err)
	assert.InDelta(t, 2, v, 1e-9)

	_, err = d.EvalExpression("missing_param + 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown parameter: missing_param")
}

func TestEvalExpression_Malformed(t *testing.T) {
	d := host.NewDesign("test")

	for _, expr := range []string{"", "2 +", "1 / 0", "(2 + 3", "2 $ 3"} {
		_, err := d.EvalExpression(expr)
		assert.Error(t, err, "expression %q", expr)
	}
}
