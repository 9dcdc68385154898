package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONArray(t *testing.T) {
	raw := "Claro, aquí van mis observaciones:\n[\"primera\", \"segunda\"]\nSaludos."

	items, err := ExtractJSONArray(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"primera", "segunda"}, items)
}

func TestExtractJSONArray_NoPayload(t *testing.T) {
	_, err := ExtractJSONArray("sin corchetes por ninguna parte")
	assert.ErrorIs(t, err, ErrNoJSONPayload)

	_, err = ExtractJSONArray("][")
	assert.ErrorIs(t, err, ErrNoJSONPayload)
}

func TestExtractJSONArray_Malformed(t *testing.T) {
	_, err := ExtractJSONArray(`["sin cerrar`)
	assert.ErrorIs(t, err, ErrNoJSONPayload)

	_, err = ExtractJSONArray(`[1, 2, 3]`)
	assert.Error(t, err, "non-string elements are rejected")
}

func TestExtractJSONArray_ControlChars(t *testing.T) {
	items, err := ExtractJSONArray("[\"línea\nuno\", \"dos\"]")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestExtractJSONObject(t *testing.T) {
	raw := "```json\n{\"clave\": \"valor\"}\n```"
	obj, err := ExtractJSONObject(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"clave": "valor"}`, string(obj))

	_, err = ExtractJSONObject("nada estructurado")
	assert.ErrorIs(t, err, ErrNoJSONPayload)
}
