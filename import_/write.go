package import_

import (
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/osmwrangle/osmwrangle/cache"
	"github.com/osmwrangle/osmwrangle/database"
	"github.com/osmwrangle/osmwrangle/log"
	"github.com/osmwrangle/osmwrangle/shape"
	"github.com/osmwrangle/osmwrangle/stats"
)

// Write (re)creates all tables and loads the cached rows. Tables are
// loaded in parallel, limited by workers and the database.
func Write(db database.DB, c *cache.RowCache, workers int) (map[shape.RowKind]int64, error) {
	if !c.Complete() {
		return nil, errors.Errorf("cache %s is incomplete, run -read first", c.Dir())
	}

	if err := db.Init(); err != nil {
		return nil, err
	}

	var mu sync.Mutex
	counts := make(map[shape.RowKind]int64, len(shape.RowKinds))

	g := errgroup.Group{}
	g.SetLimit(database.Workers(db, database.Config{Workers: workers}))
	for _, kind := range shape.RowKinds {
		kind := kind
		g.Go(func() error {
			n, err := loadKind(db, c, kind)
			if err != nil {
				return err
			}
			mu.Lock()
			counts[kind] = n
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return counts, err
	}

	if f, ok := db.(database.Finisher); ok {
		if err := f.Finish(); err != nil {
			return counts, err
		}
	}
	return counts, nil
}

func loadKind(db database.DB, c *cache.RowCache, kind shape.RowKind) (int64, error) {
	defer log.Step("Loading " + kind.Name())()
	rows, err := c.Open(kind)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	n, err := db.Load(kind, rows)
	if err != nil {
		return n, errors.Wrapf(err, "loading %s", kind.Name())
	}
	stats.RowsLoaded.WithLabelValues(kind.Name()).Add(float64(n))
	log.Printf("[info] loaded %d rows into %s", n, kind.Name())
	return n, nil
}
