package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTempRange_ClosedRange(t *testing.T) {
	r, ok := ParseTempRange("0,15")
	require.True(t, ok)
	assert.True(t, r.Contains(0))
	assert.True(t, r.Contains(15))
	assert.False(t, r.Contains(15.1))
	assert.False(t, r.Contains(-0.1))
}

func TestParseTempRange_PrefixForms(t *testing.T) {
	tests := []struct {
		value   string
		match   []float64
		noMatch []float64
	}{
		{">30", []float64{31.0, 999}, []float64{29.9}},
		{">=30", []float64{30, 31}, []float64{29.9}},
		{"<10", []float64{9.9, -50}, []float64{10.1}},
		{"<=10", []float64{10, -999}, []float64{10.5}},
	}
	for _, tt := range tests {
		r, ok := ParseTempRange(tt.value)
		require.True(t, ok, "value %q should parse", tt.value)
		for _, v := range tt.match {
			assert.True(t, r.Contains(v), "%q should contain %v", tt.value, v)
		}
		for _, v := range tt.noMatch {
			assert.False(t, r.Contains(v), "%q should not contain %v", tt.value, v)
		}
	}
}

func TestParseTempRange_IgnoresWhitespace(t *testing.T) {
	r, ok := ParseTempRange(" 0 , 15 ")
	require.True(t, ok)
	assert.Equal(t, TempRange{Lo: 0, Hi: 15}, r)
}

func TestParseTempRange_Malformed(t *testing.T) {
	for _, value := range []string{"", "abc", ">hot", "1,2,3", "0,", "warm,cold"} {
		_, ok := ParseTempRange(value)
		assert.False(t, ok, "value %q should not parse", value)
	}
}

func TestParseHourRange(t *testing.T) {
	r, ok := ParseHourRange("8,11")
	require.True(t, ok)
	assert.True(t, r.Contains(8))
	assert.True(t, r.Contains(11))
	assert.False(t, r.Contains(12))

	_, ok = ParseHourRange("8")
	assert.False(t, ok)
	_, ok = ParseHourRange("morning,noon")
	assert.False(t, ok)
}

func TestParseWeekdaySet_IndicesAndAliases(t *testing.T) {
	days, ok := ParseWeekdaySet("fri,sat,sun")
	require.True(t, ok)
	assert.Equal(t, map[int]bool{4: true, 5: true, 6: true}, days)

	days, ok = ParseWeekdaySet("4,5,6")
	require.True(t, ok)
	assert.Equal(t, map[int]bool{4: true, 5: true, 6: true}, days)

	days, ok = ParseWeekdaySet("Mon")
	require.True(t, ok)
	assert.Equal(t, map[int]bool{0: true}, days)
}

func TestParseWeekdaySet_DropsUnknownEntries(t *testing.T) {
	days, ok := ParseWeekdaySet("wed,blursday")
	require.True(t, ok)
	assert.Equal(t, map[int]bool{2: true}, days)

	_, ok = ParseWeekdaySet("blursday")
	assert.False(t, ok)
	_, ok = ParseWeekdaySet("")
	assert.False(t, ok)
}

func TestKindOnAbsent(t *testing.T) {
	assert.Equal(t, AbsentFail, KindChinaSubregion.OnAbsent())
	assert.Equal(t, AbsentFail, KindSolarTerm.OnAbsent())
	assert.Equal(t, AbsentSkip, KindTemperature.OnAbsent())
	assert.Equal(t, AbsentSkip, KindTimeOfDay.OnAbsent())
	assert.Equal(t, AbsentSkip, KindWeather.OnAbsent())
}
