package review

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alcaldiayopal/chatbot-backend/models"
)

func TestStoreSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new_questions.json")
	store := NewStore(path, zap.NewNop())

	store.Save("sess-1", "como pago la sobretasa bomberil", []string{"fragmento"}, 0.42)
	store.Save("sess-1", "tramite desconocido", nil, 0.1)
	store.Save("sess-2", "otra pregunta sin respuesta", []string{}, 0.55)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var data map[string][]models.UnansweredEntry
	require.NoError(t, json.Unmarshal(raw, &data))

	require.Len(t, data["sess-1"], 2)
	require.Len(t, data["sess-2"], 1)

	first := data["sess-1"][0]
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "como pago la sobretasa bomberil", first.Message)
	assert.Equal(t, []string{"fragmento"}, first.Context)
	assert.InDelta(t, 0.42, first.TopScore, 1e-9)
	assert.Regexp(t, `^\d{2}/\d{2}/\d{4}, \d{2}:\d{2}:\d{2}$`, first.Timestamp)

	// nil fragments are persisted as an empty list, not null.
	assert.NotNil(t, data["sess-1"][1].Context)
	assert.Empty(t, data["sess-1"][1].Context)
}

func TestStoreSaveCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new_questions.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))
	store := NewStore(path, zap.NewNop())

	store.Save("sess-1", "pregunta", nil, 0.2)

	all := store.All()
	require.Len(t, all["sess-1"], 1)
	assert.Equal(t, "pregunta", all["sess-1"][0].Message)
}

func TestStoreAllEmpty(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.json"), zap.NewNop())
	assert.Empty(t, store.All())
}
