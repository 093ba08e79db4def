package storage

import (
	"os"
	"path/filepath"

	"github.com/akikan18/shibari-karaoke/internal/game"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenDB opens the sqlite database at the given path and keeps the schema
// updated via AutoMigrate. The parent directory is created when missing so
// a fresh checkout can start with the default ./data path.
func OpenDB(dataSourceName string) (*gorm.DB, error) {
	if dir := filepath.Dir(dataSourceName); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&game.Battle{}, &game.Member{}, &game.LogEntry{}); err != nil {
		return nil, err
	}
	return db, nil
}
