package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{
  "3": {"nombre": "Cereales", "alimentos": ["1 tortilla", "½ taza de arroz"]},
  "1": {"nombre": "Frutas", "alimentos": ["1 taza de melón", "½ taza de fresas"]},
  "2": {"nombre": "Verduras", "alimentos": ["al gusto"]}
}`

func TestDecode_SortsByNumericID(t *testing.T) {
	groups, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, groups, 3)

	assert.Equal(t, 1, groups[0].ID)
	assert.Equal(t, "Frutas", groups[0].Name)
	assert.Equal(t, []string{"1 taza de melón", "½ taza de fresas"}, groups[0].Items)
	assert.Equal(t, 2, groups[1].ID)
	assert.Equal(t, 3, groups[2].ID)
}

func TestDecode_NormalisesToNFC(t *testing.T) {
	// "melón" written with a combining acute accent.
	doc := "{\"1\": {\"nombre\": \"Frutas\", \"alimentos\": [\"1 taza de melo\u0301n\"]}}"
	groups, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "1 taza de mel\u00f3n", groups[0].Items[0])
}

func TestDecode_KeepsItemTextVerbatim(t *testing.T) {
	doc := `{"1": {"nombre": " Huevos ", "alimentos": ["2 ", " al gusto"]}}`
	groups, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "Huevos", groups[0].Name)
	assert.Equal(t, []string{"2 ", " al gusto"}, groups[0].Items)
}

func TestDecode_Rejects(t *testing.T) {
	cases := map[string]string{
		"not json":  `{"1": `,
		"empty":     `{}`,
		"bad id":    `{"uno": {"nombre": "Frutas", "alimentos": []}}`,
		"negative":  `{"-1": {"nombre": "Frutas", "alimentos": []}}`,
		"duplicate": `{"1": {"nombre": "A", "alimentos": []}, "01": {"nombre": "B", "alimentos": []}}`,
	}
	for name, doc := range cases {
		_, err := Decode(strings.NewReader(doc))
		assert.ErrorIs(t, err, ErrCatalogUnavailable, name)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grupos.json")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	groups, err := FileSource{Path: path}.Groups()
	require.NoError(t, err)
	assert.Len(t, groups, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}

func TestStatic(t *testing.T) {
	_, err := Static(nil).Groups()
	assert.ErrorIs(t, err, ErrCatalogUnavailable)

	groups, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)
	got, err := Static(groups).Groups()
	require.NoError(t, err)
	assert.Equal(t, groups, got)
}
