package arnames

import (
	"context"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/everFinance/arnames/cache"
	arnamesCommon "github.com/everFinance/arnames/common"
	"github.com/everFinance/arnames/config"
	"github.com/everFinance/arnames/rawdb"
	"github.com/everFinance/arnames/schema"
	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron"
	"github.com/shopspring/decimal"
)

type Arnames struct {
	store  *Store
	wdb    *Wdb
	engine *gin.Engine

	registry   *Registry
	book       *AccountBook
	dispatcher *Dispatcher
	kw         *KWriter

	scheduler  *gocron.Scheduler
	localCache *cache.Cache
	config     *config.Config
}

func New(cfg *schema.Config) *Arnames {
	kvStore, err := newStore(cfg)
	if err != nil {
		panic(err)
	}

	wdb := &Wdb{}
	if cfg.UseSqlite {
		wdb = NewSqliteDb(cfg.SqliteDir)
	} else {
		wdb = NewMysqlDb(cfg.Mysql)
	}
	if err = wdb.Migrate(); err != nil {
		panic(err)
	}

	var kw *KWriter
	if cfg.KafkaUri != "" {
		kw, err = NewKWriter(EventTopic, cfg.KafkaUri)
		if err != nil {
			panic(err)
		}
	}

	dispatcher, err := NewDispatcher(kvStore, wdb, kw)
	if err != nil {
		panic(err)
	}

	book, err := NewAccountBookFromStore(kvStore)
	if err != nil {
		panic(err)
	}

	admin := common.HexToAddress(cfg.AdminAddr)
	initialFee, err := decimal.NewFromString(cfg.InitialFee)
	if err != nil {
		panic(err)
	}
	registry, err := NewRegistry(admin, initialFee, book, kvStore, dispatcher)
	if err != nil {
		panic(err)
	}

	localCache, err := cache.NewLocalCache(10 * time.Minute)
	if err != nil {
		panic(err)
	}

	return &Arnames{
		store:      kvStore,
		wdb:        wdb,
		engine:     gin.Default(),
		registry:   registry,
		book:       book,
		dispatcher: dispatcher,
		kw:         kw,
		scheduler:  gocron.NewScheduler(time.UTC),
		localCache: localCache,
		config:     config.New(cfg.Mysql, cfg.SqliteDir, cfg.UseSqlite),
	}
}

func newStore(cfg *schema.Config) (*Store, error) {
	switch strings.ToLower(cfg.StoreBackend) {
	case rawdb.S3Type:
		endpoint := cfg.S3Endpoint
		if cfg.Use4EVER {
			endpoint = rawdb.ForeverLandEndpoint // inject 4everland endpoint
		}
		return NewS3Store(cfg.S3AccKey, cfg.S3SecretKey, cfg.S3Region, cfg.S3Prefix, endpoint)
	case rawdb.AliyunType:
		return NewAliyunStore(cfg.AliyunEndpoint, cfg.AliyunAccKey, cfg.AliyunSecretKey, cfg.AliyunPrefix)
	case strings.ToLower(rawdb.MongoDBType):
		return NewMongoStore(context.Background(), cfg.MongoUri)
	default:
		return NewBoltStore(cfg.BoltDirPath)
	}
}

func (s *Arnames) Run(port string) {
	s.config.Run()
	s.runJobs()
	go s.runAPI(port)
	go arnamesCommon.NewMetricServer()
}

func (s *Arnames) Close() {
	s.config.Close()
	s.scheduler.Stop()
	s.dispatcher.Close()
	if s.kw != nil {
		s.kw.Close()
	}
	s.wdb.Close()
	if err := s.store.Close(); err != nil {
		log.Error("close store failed", "err", err)
	}
	log.Info("arnames closed")
}
