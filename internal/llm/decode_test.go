package llm_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labparse/internal/llm"
)

func TestDecodeItems_BareArray(t *testing.T) {
	content := `[{"name":"Glucose","value":95,"value_text":"95","unit":"mg/dL","reference_range":"70-99","flag":null}]`

	got, err := llm.DecodeItems(content)

	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Zero(t, got.Invalid)
	item := got.Items[0]
	assert.Equal(t, "Glucose", item.Name)
	require.NotNil(t, item.Value)
	assert.Equal(t, 95.0, *item.Value)
	assert.Equal(t, "mg/dL", item.Unit)
	assert.Equal(t, "70-99", item.ReferenceRange)
	assert.Empty(t, item.Flag)
}

func TestDecodeItems_EmbeddedInProse(t *testing.T) {
	content := "Here are the results:\n```json\n" +
		`[{"name":"HIV Screen","value":null,"value_text":"Non-Reactive","unit":"","reference_range":"","flag":null},` +
		`{"name":"LDL","value":105,"unit":"mg/dL","flag":"H"}]` +
		"\n```\nLet me know if you need anything else."

	got, err := llm.DecodeItems(content)

	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Nil(t, got.Items[0].Value)
	assert.Equal(t, "Non-Reactive", got.Items[0].ValueText)
	assert.Equal(t, "H", got.Items[1].Flag)
	assert.Equal(t, "105", got.Items[1].ValueText)
}

func TestDecodeItems_WrappedObject(t *testing.T) {
	got, err := llm.DecodeItems(`{"markers":[{"name":"TSH","value":2.1,"unit":"uIU/mL"}]}`)

	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "TSH", got.Items[0].Name)
}

func TestDecodeItems_DropsInvalidItems(t *testing.T) {
	content := `[
		{"name":"Glucose","value":95},
		{"name":"","value":1},
		{"value":3},
		{"name":"Sodium","value":"140"},
		{"name":"Potassium","value":4.1,"flag":"X"},
		"not an object"
	]`

	got, err := llm.DecodeItems(content)

	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Glucose", got.Items[0].Name)
	assert.Equal(t, 5, got.Invalid)
}

func TestDecodeItems_NoArray(t *testing.T) {
	_, err := llm.DecodeItems("I could not find any results in this document.")
	assert.True(t, errors.Is(err, llm.ErrNoItems))

	_, err = llm.DecodeItems("results: [not json]")
	assert.True(t, errors.Is(err, llm.ErrNoItems))
}

func TestTruncateText(t *testing.T) {
	out, cut := llm.TruncateText("µµµµµ", 3)
	assert.True(t, cut)
	assert.Equal(t, "µµµ", out)

	out, cut = llm.TruncateText("short", 10)
	assert.False(t, cut)
	assert.Equal(t, "short", out)
}

func TestBuildPrompt_IncludesContractAndText(t *testing.T) {
	p := llm.BuildPrompt("Glucose 95 mg/dL")
	assert.Contains(t, p, `"reference_range"`)
	assert.Contains(t, p, `"flag": one of "H", "L", "A", "C", or null`)
	assert.Contains(t, p, "Glucose 95 mg/dL")
}
