package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/realestate-concierge/internal/i18n"
)

func TestExtractPhone(t *testing.T) {
	valid := map[string]string{
		"ascii":            "9876543210",
		"marathi numerals": "९८७६५४३२१०",
		"labelled":         "Phone: 98765 43210",
		"marathi label":    "फोन: ९८७६५४३२१०",
		"country code":     "+91 98765-43210",
		"trunk prefix":     "09876543210",
		"in a sentence":    "my number is 9876543210 call after 5",
		"with a time":      "9876543210 10am",
	}
	for name, input := range valid {
		t.Run(name, func(t *testing.T) {
			phone, err := ExtractPhone(input)
			require.NoError(t, err)
			assert.Equal(t, "9876543210", phone)
		})
	}

	invalid := []string{"", "12345", "98765432101234", "9876543210 or 9123456789", "call me"}
	for _, input := range invalid {
		_, err := ExtractPhone(input)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr, "input %q", input)
	}
}

func TestExtractPhoneLocalizedDigitsMatchASCII(t *testing.T) {
	ascii, err := ExtractPhone("9876543210")
	require.NoError(t, err)
	marathi, err := ExtractPhone("९८७६५४३२१०")
	require.NoError(t, err)
	assert.Equal(t, ascii, marathi)
	assert.True(t, ValidPhone(marathi))
}

func TestParseName(t *testing.T) {
	name, err := ParseName("  asha   patil ")
	require.NoError(t, err)
	assert.Equal(t, "Asha Patil", name)

	name, err = ParseName("आशा पाटील")
	require.NoError(t, err)
	assert.Equal(t, "आशा पाटील", name)

	for _, input := range []string{"", "A", "R2D2", "...", "9876543210"} {
		_, err := ParseName(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestParsePreferredTime(t *testing.T) {
	cases := []struct {
		raw  string
		lang i18n.Language
		want string
	}{
		{"25/12/2025 11am", i18n.English, "25/12/2025 11am (Thursday)"},
		{"25/12/2025 11am", i18n.Marathi, "25/12/2025 11am (गुरुवार)"},
		{"on 1-1-2026 evening", i18n.English, "on 1-1-2026 evening (Thursday)"},
		{"31/02/2025", i18n.English, "31/02/2025"},
		{"tomorrow   evening", i18n.English, "tomorrow evening"},
		{"२५/१२/२०२५", i18n.English, "२५/१२/२०२५ (Thursday)"},
	}
	for _, tc := range cases {
		got, err := ParsePreferredTime(tc.raw, tc.lang)
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got)
	}

	_, err := ParsePreferredTime("  ?! ", i18n.English)
	assert.Error(t, err)
}

func TestParseRequirementChoice(t *testing.T) {
	cases := map[string]string{
		"1":       "None",
		"2":       "Parking",
		"3":       "Wheelchair access",
		"4":       "Vastu-compliant",
		"parking": "Parking",
		"वास्तु":  "Vastu-compliant",
		"नाही":    "None",
	}
	for input, want := range cases {
		value, freeform, err := ParseRequirementChoice(input)
		require.NoError(t, err, input)
		assert.False(t, freeform)
		assert.Equal(t, want, value)
	}

	for _, input := range []string{"5", "other", "इतर"} {
		_, freeform, err := ParseRequirementChoice(input)
		require.NoError(t, err)
		assert.True(t, freeform, input)
	}

	for _, input := range []string{"0", "6", "maybe later"} {
		_, _, err := ParseRequirementChoice(input)
		assert.Error(t, err, input)
	}
}

func TestRequirementLabel(t *testing.T) {
	loc := i18n.NewLocalizer("")
	assert.Equal(t, "पार्किंग", requirementLabel(loc, i18n.Marathi, "Parking"))
	assert.Equal(t, "Parking", requirementLabel(loc, i18n.English, "Parking"))
	assert.Equal(t, "lift needed", requirementLabel(loc, i18n.Marathi, "lift needed"))
	assert.Equal(t, "Not specified", requirementLabel(loc, i18n.English, ""))
}
