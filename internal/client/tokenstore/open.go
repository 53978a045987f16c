package tokenstore

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/ridegate/internal/filex"
	"github.com/dmitrijs2005/ridegate/internal/logging"
)

// Open builds the store named by driver ("sqlite", "badger" or "memory").
// For sqlite path is the database file, for badger a directory; missing
// parent directories are created.
func Open(ctx context.Context, driver, path string, log logging.Logger) (ClosableStore, error) {
	log = log.With("store_driver", driver)

	switch driver {
	case "sqlite":
		abs, err := filex.EnsureParentDir(path)
		if err != nil {
			return nil, err
		}
		log.Debug(ctx, "opening token store", "path", abs)
		s, err := OpenSQLite(ctx, abs, log)
		if err != nil {
			return nil, err
		}
		return s, nil

	case "badger":
		abs, err := filex.EnsureDir(path)
		if err != nil {
			return nil, err
		}
		log.Debug(ctx, "opening token store", "path", abs)
		s, err := OpenBadger(abs, log)
		if err != nil {
			return nil, err
		}
		return s, nil

	case "memory":
		log.Warn(ctx, "token store is not durable; the session ends with the process")
		return NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown token store driver %q", driver)
	}
}
