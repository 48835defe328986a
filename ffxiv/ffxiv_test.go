package ffxiv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTables(t *testing.T) {
	require.NotNil(t, Default)

	drill, ok := Default.Action(SkillIdDrill)
	require.True(t, ok)
	assert.True(t, drill.OnGCD)
	assert.EqualValues(t, 20000, drill.Cooldown)

	fire4, ok := Default.Action(3577)
	require.True(t, ok)
	assert.EqualValues(t, 2800, fire4.CastTime)

	pom, ok := Default.Status(157)
	require.True(t, ok)
	assert.Equal(t, 0.8, pom.SpeedModifier)

	ir, ok := Default.Status(1177)
	require.True(t, ok)
	assert.Zero(t, ir.SpeedModifier)

	_, ok = Default.Action(999999)
	assert.False(t, ok)

	assert.Contains(t, Default.Job["Machinist"], SkillIdAirAnchor)
}

func TestLoadStripsBOM(t *testing.T) {
	actions := "\xef\xbb\xbfid,name,job,ongcd,casttime,cooldown\n1,Foo,Bar,1,2500,0\n"
	statuses := "id,name,speedmodifier\n2,Haste,0.9\n"

	ss, err := Load(strings.NewReader(actions), strings.NewReader(statuses))
	require.NoError(t, err)

	foo, ok := ss.Action(1)
	require.True(t, ok)
	assert.Equal(t, "Foo", foo.Name)
	assert.EqualValues(t, 2500, foo.CastTime)

	haste, ok := ss.Status(2)
	require.True(t, ok)
	assert.Equal(t, 0.9, haste.SpeedModifier)
}

func TestLoadRejectsBadRows(t *testing.T) {
	_, err := Load(
		strings.NewReader("id,name,job,ongcd,casttime,cooldown\nx,Foo,Bar,1,0,0\n"),
		strings.NewReader("id,name,speedmodifier\n"),
	)
	assert.Error(t, err)

	_, err = Load(
		strings.NewReader("id,name,job,ongcd,casttime,cooldown\n"),
		strings.NewReader("id,name,speedmodifier\n3,Bad,fast\n"),
	)
	assert.Error(t, err)
}

func TestJobs(t *testing.T) {
	assert.Equal(t, "DarkKnight", NormalizeJob("Dark Knight"))
	assert.Equal(t, "Machinist", NormalizeJob("machinist"))
	assert.Equal(t, "", NormalizeJob("Bluemage"))

	assert.Equal(t, 0.8, JobSpeedModifier("Monk"))
	assert.Equal(t, 0.85, JobSpeedModifier("Ninja"))
	assert.Equal(t, 1.0, JobSpeedModifier("Warrior"))
}

func TestDriftSlots(t *testing.T) {
	slots := DriftSlots("Machinist")
	require.Len(t, slots, 2)
	assert.Equal(t, []int{SkillIdBioblaster}, slots[1].Aliases)
	assert.Nil(t, DriftSlots("Warrior"))
}
