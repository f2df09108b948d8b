package config

import (
	"time"

	"github.com/go-co-op/gocron"
)

// Config serves operator-tunable runtime settings out of sql, refreshed in
// the background. Right now that is the rate limit whitelist.
type Config struct {
	wdb         *Wdb
	ipWhiteList map[string]struct{}
	scheduler   *gocron.Scheduler
}

func New(mySqlDsn, sqliteDir string, useSqlite bool) *Config {
	wdb := NewWdb(mySqlDsn, sqliteDir, useSqlite)
	if err := wdb.Migrate(); err != nil {
		panic(err)
	}
	c := &Config{
		wdb:         wdb,
		ipWhiteList: make(map[string]struct{}),
		scheduler:   gocron.NewScheduler(time.UTC),
	}
	c.updateIPWhiteList()
	return c
}

// GetIPWhiteList hands out a stable pointer; the refresh job swaps the map
// behind it so middleware sees updates without rewiring.
func (c *Config) GetIPWhiteList() *map[string]struct{} {
	return &c.ipWhiteList
}

func (c *Config) Run() {
	go c.runJobs()
}

func (c *Config) Close() {
	c.scheduler.Stop()
	c.wdb.Close()
}
