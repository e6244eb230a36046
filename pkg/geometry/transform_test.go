package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTransform_Translate(t *testing.T) {
	tr, err := ParseTransform("translate(10,20)")
	require.NoError(t, err)

	p := tr.Apply(Point2D{X: 0, Y: 0})
	assert.InDelta(t, 10, p.X, 1e-9)
	assert.InDelta(t, 20, p.Y, 1e-9)
}

func TestParseTransform_Composition(t *testing.T) {
	// scale applies first, then translate
	tr, err := ParseTransform("translate(10,0) scale(2)")
	require.NoError(t, err)

	p := tr.Apply(Point2D{X: 5, Y: 0})
	assert.InDelta(t, 20, p.X, 1e-9)
	assert.InDelta(t, 0, p.Y, 1e-9)
}

func TestParseTransform_Rotate(t *testing.T) {
	tr, err := ParseTransform("rotate(90)")
	require.NoError(t, err)

	p := tr.Apply(Point2D{X: 1, Y: 0})
	assert.InDelta(t, 0, p.X, 1e-9)
	assert.InDelta(t, 1, p.Y, 1e-9)
}

func TestParseTransform_Matrix(t *testing.T) {
	tr, err := ParseTransform("matrix(1,0,0,1,5,-3)")
	require.NoError(t, err)

	p := tr.Apply(Point2D{X: 1, Y: 1})
	assert.InDelta(t, 6, p.X, 1e-9)
	assert.InDelta(t, -2, p.Y, 1e-9)
}

func TestParseTransform_Errors(t *testing.T) {
	cases := []string{
		"skew(10)",
		"translate(10",
		"translate(a,b)",
		"scale()",
		"matrix(1,2,3)",
	}
	for _, c := range cases {
		_, err := ParseTransform(c)
		assert.Error(t, err, "input %q", c)
	}
}

func TestParseTransform_Empty(t *testing.T) {
	tr, err := ParseTransform("")
	require.NoError(t, err)
	assert.Equal(t, Identity(), tr)
}

func TestComposeIdentityNeutral(t *testing.T) {
	tr := Translation(3, 4).Compose(Rotation(1.1))
	assert.Equal(t, tr, tr.Compose(Identity()))
	assert.Equal(t, tr, Identity().Compose(tr))
}

func TestInverseRoundTrip(t *testing.T) {
	tr := Translation(3, 4).Compose(Rotation(0.7)).Compose(Scaling(2, 3))
	inv, ok := tr.Inverse()
	require.True(t, ok)

	p := Point2D{X: 1.5, Y: -2.5}
	back := inv.Apply(tr.Apply(p))
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)
}
