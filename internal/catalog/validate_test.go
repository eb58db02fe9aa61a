package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateShippedCitizens(t *testing.T) {
	assert.Empty(t, Validate(Citizens()))
}

func TestValidate(t *testing.T) {
	t.Run("pair sharing two attributes is flagged", func(t *testing.T) {
		cs := []Citizen{
			{Code: Doctor, Name: "Doctor", Attributes: []Attribute{AttrHealth, AttrResidency, AttrAir, AttrOffice}},
			{Code: Mayor, Name: "Mayor", Attributes: []Attribute{AttrHealth, AttrResidency, AttrTourism, AttrMilitary}},
		}
		diags := Validate(cs)
		require.Len(t, diags, 1)
		assert.Equal(t, DiagSharedAttributes, diags[0].Kind)
		assert.Equal(t, []CitizenCode{Doctor, Mayor}, diags[0].Citizens)
		assert.ElementsMatch(t, []Attribute{AttrHealth, AttrResidency}, diags[0].Attributes)
		assert.Contains(t, diags[0].Message, "share 2 attributes")
	})

	t.Run("pair sharing one attribute is fine", func(t *testing.T) {
		cs := []Citizen{
			{Code: Doctor, Name: "Doctor", Attributes: []Attribute{AttrHealth, AttrResidency, AttrAir, AttrOffice}},
			{Code: Mayor, Name: "Mayor", Attributes: []Attribute{AttrGovernment, AttrTourism, AttrResidency, AttrMilitary}},
		}
		assert.Empty(t, Validate(cs))
	})

	t.Run("wrong attribute count is flagged", func(t *testing.T) {
		cs := []Citizen{{Code: Robot, Name: "Robot", Attributes: []Attribute{AttrRobotics, AttrScience, AttrDining}}}
		diags := Validate(cs)
		require.Len(t, diags, 1)
		assert.Equal(t, DiagAttributeCount, diags[0].Kind)
	})

	t.Run("repeated attribute is flagged", func(t *testing.T) {
		cs := []Citizen{{Code: Robot, Name: "Robot", Attributes: []Attribute{AttrRobotics, AttrRobotics, AttrDining, AttrScience}}}
		diags := Validate(cs)
		require.Len(t, diags, 1)
		assert.Equal(t, DiagDuplicateAttr, diags[0].Kind)
		assert.Equal(t, []Attribute{AttrRobotics}, diags[0].Attributes)
	})
}
