package gemini_test

import (
	"context"
	"testing"

	"github.com/fwojciec/transpress"
	"github.com/fwojciec/transpress/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslator_Translate_ReturnsEmptyInputUnchanged(t *testing.T) {
	t.Parallel()

	translator := gemini.NewTranslator(nil, "", "Japanese", "Korean") // nil client ok for this test

	got, err := translator.Translate(context.Background(), "  ")

	require.NoError(t, err)
	assert.Equal(t, "  ", got)
}

func TestTranslator_Translate_ReturnsErrorWithoutClient(t *testing.T) {
	t.Parallel()

	translator := gemini.NewTranslator(nil, "", "Japanese", "Korean")

	_, err := translator.Translate(context.Background(), "本文")

	require.Error(t, err)
	assert.Equal(t, transpress.EINTERNAL, transpress.ErrorCode(err))
}

func TestBuildConfig_SetsSystemInstruction(t *testing.T) {
	t.Parallel()

	config := gemini.BuildConfig("Japanese", "Korean")

	require.NotNil(t, config.SystemInstruction)
	require.Len(t, config.SystemInstruction.Parts, 1)
	assert.Contains(t, config.SystemInstruction.Parts[0].Text, "Japanese")
	assert.Contains(t, config.SystemInstruction.Parts[0].Text, "Korean")
}

func TestBuildConfig_SetsTemperature(t *testing.T) {
	t.Parallel()

	config := gemini.BuildConfig("Japanese", "Korean")

	require.NotNil(t, config.Temperature)
	assert.InDelta(t, 0.2, *config.Temperature, 0.001)
}

func TestBuildSystemInstruction_PreservesPlaceholdersAndParagraphs(t *testing.T) {
	t.Parallel()

	instruction := gemini.BuildSystemInstruction("Japanese", "Korean")

	assert.Contains(t, instruction, "ZXH")
	assert.Contains(t, instruction, "blank line")
	assert.Contains(t, instruction, "Output only the translation")
}
