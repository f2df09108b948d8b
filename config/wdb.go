package config

import (
	"os"
	"path"

	"github.com/everFinance/arnames/config/schema"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqliteName = "config.sqlite"

type Wdb struct {
	Db *gorm.DB
}

func NewWdb(mysqlDsn, sqliteDir string, useSqlite bool) *Wdb {
	var db *gorm.DB
	var err error
	if useSqlite {
		if err = os.MkdirAll(sqliteDir, os.ModePerm); err != nil {
			panic(err)
		}
		db, err = gorm.Open(sqlite.Open(path.Join(sqliteDir, sqliteName)), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Error),
		})
	} else {
		db, err = gorm.Open(mysql.Open(mysqlDsn), &gorm.Config{
			Logger:          logger.Default.LogMode(logger.Error),
			CreateBatchSize: 10,
		})
	}
	if err != nil {
		panic(err)
	}
	return &Wdb{Db: db}
}

func (w *Wdb) Migrate() error {
	return w.Db.AutoMigrate(&schema.IpRateWhitelist{})
}

func (w *Wdb) GetAllAvailableIpRateWhitelist() (ips []schema.IpRateWhitelist, err error) {
	err = w.Db.Where("available = ?", true).Find(&ips).Error
	return
}

func (w *Wdb) Close() {
	sql, err := w.Db.DB()
	if err == nil {
		sql.Close()
	}
}
