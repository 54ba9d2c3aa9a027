package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copy2insert/internal/fileio"
)

func loadConfig(t *testing.T, yaml string) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.SetConfigType("yaml")
	require.NoError(t, viper.ReadConfig(strings.NewReader(yaml)))
}

func TestGetConvertConfig(t *testing.T) {
	loadConfig(t, `
convert:
  source_path: backup.sql.gz
  destination_path: restore.sql
  schema: app
  strict: true
  table_order:
    - usuarios
    - solicitacoes
`)

	cfg, err := GetConvertConfig()
	require.NoError(t, err)
	assert.Equal(t, "backup.sql.gz", cfg.SourcePath)
	assert.Equal(t, "restore.sql", cfg.DestinationPath)
	assert.Equal(t, "app", cfg.Schema)
	assert.True(t, cfg.Strict)
	assert.Equal(t, []string{"usuarios", "solicitacoes"}, cfg.TableOrder)
}

func TestGetConvertConfig_Validation(t *testing.T) {
	loadConfig(t, "convert:\n  destination_path: restore.sql\n")
	_, err := GetConvertConfig()
	assert.ErrorContains(t, err, "source_path is required")

	loadConfig(t, "convert:\n  source_path: dump.sql\n  destination_path: dump.sql\n")
	_, err = GetConvertConfig()
	assert.ErrorContains(t, err, "same file")

	loadConfig(t, "convert:\n  source_path: ./dump.sql\n  destination_path: dump.sql\n")
	_, err = GetConvertConfig()
	assert.ErrorContains(t, err, "same file")

	loadConfig(t, "convert:\n  source_path: data/../dump.sql\n  destination_path: dump.sql.gz\n")
	_, err = GetConvertConfig()
	assert.NoError(t, err)
}

func TestGetActiveDBConfig(t *testing.T) {
	loadConfig(t, `
databases:
  - name: legacy
    driver: mysql
    dsn: "app:secret@tcp(localhost:3306)/app"
  - name: main
    driver: postgres
    dsn: "postgres://app@localhost/app?sslmode=disable"
    active: true
`)

	cfg, err := GetActiveDBConfig()
	require.NoError(t, err)
	assert.Equal(t, "main", cfg.Name)
	assert.Equal(t, "postgres", cfg.Driver)
}

func TestGetActiveDBConfig_NeedsExactlyOne(t *testing.T) {
	loadConfig(t, "databases:\n  - name: a\n    dsn: x\n")
	_, err := GetActiveDBConfig()
	assert.ErrorContains(t, err, "no active database")

	loadConfig(t, "databases:\n  - name: a\n    active: true\n  - name: b\n    active: true\n")
	_, err = GetActiveDBConfig()
	assert.ErrorContains(t, err, "multiple active databases")
}

func TestRunConvert_WritesCompressedArtifact(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "backup.sql")
	dest := filepath.Join(dir, "restore.sql.zst")
	dumpText := "COPY public.usuarios (id, nome) FROM stdin;\n1\tAna\n\\.\n"
	require.NoError(t, os.WriteFile(src, []byte(dumpText), 0o644))

	report, err := runConvert(&ConvertConfig{
		SourcePath:      src,
		DestinationPath: dest,
		Schema:          "public",
		TableOrder:      []string{"usuarios"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.StatementsEmitted())

	out, err := fileio.ReadSource(dest)
	require.NoError(t, err)
	assert.Contains(t, string(out), "INSERT INTO public.usuarios (id, nome) VALUES ('1', 'Ana');")
}

func TestRunConvert_StrictLeavesDestinationUntouched(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "backup.sql")
	dest := filepath.Join(dir, "restore.sql")
	require.NoError(t, os.WriteFile(src, []byte("COPY public.t (a, b) FROM stdin;\n1\n\\.\n"), 0o644))
	require.NoError(t, os.WriteFile(dest, []byte("previous\n"), 0o644))

	_, err := runConvert(&ConvertConfig{
		SourcePath:      src,
		DestinationPath: dest,
		TableOrder:      []string{"t"},
		Strict:          true,
	})
	require.Error(t, err)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "previous\n", string(got))
}
