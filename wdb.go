package arnames

import (
	"os"
	"path"

	"github.com/everFinance/arnames/schema"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const sqliteName = "arnames.sqlite"

type Wdb struct {
	Db *gorm.DB
}

func NewMysqlDb(dsn string) *Wdb {
	logLevel := logger.Error
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:          logger.Default.LogMode(logLevel),
		CreateBatchSize: 200,
	})
	if err != nil {
		panic(err)
	}
	log.Info("connect mysql db success")
	return &Wdb{Db: db}
}

func NewSqliteDb(dbDir string) *Wdb {
	if err := os.MkdirAll(dbDir, os.ModePerm); err != nil {
		panic(err)
	}
	db, err := gorm.Open(sqlite.Open(path.Join(dbDir, sqliteName)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		panic(err)
	}
	log.Info("connect sqlite db success")
	return &Wdb{Db: db}
}

func (w *Wdb) Migrate() error {
	return w.Db.AutoMigrate(&schema.RecordRow{}, &schema.EventLog{}, &schema.DepositReceipt{})
}

func (w *Wdb) Close() {
	sql, err := w.Db.DB()
	if err == nil {
		sql.Close()
	}
}

// event log

func (w *Wdb) InsertEventLog(ev schema.EventLog) error {
	// seq is unique, a retried flush must not double-insert
	return w.Db.Clauses(clause.OnConflict{DoNothing: true}).Create(&ev).Error
}

func (w *Wdb) GetEventLogs(fromSeq uint64, action string, limit int) ([]schema.EventLog, error) {
	res := make([]schema.EventLog, 0, limit)
	tx := w.Db.Model(&schema.EventLog{}).Where("seq >= ?", fromSeq)
	if action != "" {
		tx = tx.Where("action = ?", action)
	}
	err := tx.Order("seq asc").Limit(limit).Find(&res).Error
	return res, err
}

func (w *Wdb) GetLastEventSeq() (uint64, error) {
	ev := schema.EventLog{}
	err := w.Db.Model(&schema.EventLog{}).Order("seq desc").Limit(1).Scan(&ev).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	return ev.Seq, err
}

// record index

func (w *Wdb) InsertRecordRow(row schema.RecordRow) error {
	return w.Db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		UpdateAll: true,
	}).Create(&row).Error
}

func (w *Wdb) UpdateRecordData(name, data string, modifiedAt int64) error {
	return w.Db.Model(&schema.RecordRow{}).Where("name = ?", name).
		Updates(map[string]interface{}{"data": data, "modified_at": modifiedAt}).Error
}

func (w *Wdb) UpdateRecordOwner(name, owner string, modifiedAt int64) error {
	return w.Db.Model(&schema.RecordRow{}).Where("name = ?", name).
		Updates(map[string]interface{}{"owner": owner, "modified_at": modifiedAt}).Error
}

func (w *Wdb) GetRecordRow(name string) (res schema.RecordRow, err error) {
	err = w.Db.Where("name = ?", name).First(&res).Error
	return
}

// GetRecordsByOwner answers "what does owner hold now", the view the core's
// append-only history cannot give.
func (w *Wdb) GetRecordsByOwner(owner string) ([]schema.RecordRow, error) {
	res := make([]schema.RecordRow, 0)
	err := w.Db.Where("owner = ?", owner).Order("registered_at asc").Find(&res).Error
	return res, err
}

func (w *Wdb) RecordCount() (int64, error) {
	var count int64
	err := w.Db.Model(&schema.RecordRow{}).Count(&count).Error
	return count, err
}

// deposit receipts

func (w *Wdb) InsertReceipt(receipt schema.DepositReceipt) error {
	return w.Db.Clauses(clause.OnConflict{DoNothing: true}).Create(&receipt).Error
}

func (w *Wdb) GetReceiptsByFrom(from string) ([]schema.DepositReceipt, error) {
	res := make([]schema.DepositReceipt, 0)
	err := w.Db.Where("`from` = ?", from).Find(&res).Error
	return res, err
}
