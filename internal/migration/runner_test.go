package migration

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/frostyapps/cortex-demos/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type modelMigrator struct{ db *gorm.DB }

func (m modelMigrator) Migrate() error {
	return m.db.AutoMigrate(&models.AnswerLog{}, &models.SystemHealth{})
}

func TestSplitStatements(t *testing.T) {
	sql := `-- header
CREATE INDEX a ON t (x);

-- second
CREATE INDEX b
  ON t (y);
`
	assert.Equal(t, []string{"CREATE INDEX a ON t (x)", "CREATE INDEX b ON t (y)"}, SplitStatements(sql))
	assert.Empty(t, SplitStatements("-- only a comment\n"))
}

func TestRunMigrations(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "002_second.sql"),
		[]byte("CREATE INDEX IF NOT EXISTS idx_b ON logging (answer);"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_first.sql"),
		[]byte("-- index\nCREATE INDEX IF NOT EXISTS idx_a ON logging (question);"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o644))

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	runner := NewRunner(db, modelMigrator{db}, logger)
	require.NoError(t, runner.RunMigrations(dir))

	assert.True(t, db.Migrator().HasIndex(&models.AnswerLog{}, "idx_a"))
	assert.True(t, db.Migrator().HasIndex(&models.AnswerLog{}, "idx_b"))

	// re-running is safe
	require.NoError(t, runner.RunMigrations(dir))
}

func TestRunMigrations_MissingDirectory(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	runner := NewRunner(db, nil, logger)
	assert.NoError(t, runner.RunMigrations(filepath.Join(t.TempDir(), "absent")))
}
