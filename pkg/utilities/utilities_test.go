package utilities

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockConfigJson struct {
	Name  string `json:"name"`
	Debug bool   `json:"debug"`
}

type mockConfig struct {
	Name  string
	Debug bool
}

func (mcj mockConfigJson) ConvertToDomain() mockConfig {
	return mockConfig{
		Name:  mcj.Name,
		Debug: mcj.Debug,
	}
}

func TestReadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"ledger","debug":true}`), 0o600))

	config, err := ReadConfig[mockConfigJson, mockConfig](path)

	require.NoError(t, err)
	assert.Equal(t, mockConfig{Name: "ledger", Debug: true}, config)
}

func TestReadConfigMissingFile(t *testing.T) {
	_, err := ReadConfig[mockConfigJson, mockConfig]("does-not-exist.json")
	assert.Error(t, err)
}

func TestReadConfigInvalidJson(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := ReadConfig[mockConfigJson, mockConfig](path)
	assert.Error(t, err)
}

func TestConvertJsonArrayToDomain(t *testing.T) {
	jsonArray := []mockConfigJson{{Name: "a"}, {Name: "b", Debug: true}}

	domain := ConvertJsonArrayToDomain[mockConfigJson, mockConfig](jsonArray)

	assert.Equal(t, []mockConfig{{Name: "a"}, {Name: "b", Debug: true}}, domain)
}

func TestMap(t *testing.T) {
	doubled := Map([]int{1, 2, 3}, func(v int) int { return v * 2 })
	assert.Equal(t, []int{2, 4, 6}, doubled)
}

func TestTernary(t *testing.T) {
	assert.Equal(t, "yes", Ternary(true, "yes", "no"))
	assert.Equal(t, "no", Ternary(false, "yes", "no"))
}
