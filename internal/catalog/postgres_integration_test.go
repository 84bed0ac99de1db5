package catalog

import (
    "os"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "printship/internal/db"
)

func TestPGStoreIntegration(t *testing.T) {
    dbURL := os.Getenv("DATABASE_URL")
    if dbURL == "" {
        t.Skip("DATABASE_URL not set; skipping integration test")
        return
    }
    pool, err := db.NewPool(t.Context(), dbURL)
    require.NoError(t, err)
    defer pool.Close()

    _, err = pool.Exec(t.Context(), Schema)
    require.NoError(t, err)

    store := NewPGStore(pool)
    require.NoError(t, store.Upsert(t.Context(), "it-100lb-gloss", "100lb Gloss Text", 0.0002977))
    defer pool.Exec(t.Context(), `DELETE FROM paper_stocks WHERE id = $1`, "it-100lb-gloss")

    d, found, err := store.AreaDensity(t.Context(), "it-100lb-gloss")
    require.NoError(t, err)
    assert.True(t, found)
    assert.Equal(t, 0.0002977, d)

    _, found, err = store.AreaDensity(t.Context(), "it-does-not-exist")
    require.NoError(t, err)
    assert.False(t, found)
}
