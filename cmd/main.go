package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/everFinance/arnames"
	"github.com/everFinance/arnames/schema"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name: "arnames",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "store_backend", Value: "boltdb", Usage: "kv store backend: boltdb | s3 | aliyun | mongodb", EnvVars: []string{"STORE_BACKEND"}},
			&cli.StringFlag{Name: "db_dir", Value: "./data/bolt", Usage: "bolt db dir path", EnvVars: []string{"DB_DIR"}},
			&cli.StringFlag{Name: "mysql", Value: "root@tcp(127.0.0.1:3306)/arnames?charset=utf8mb4&parseTime=True&loc=Local", Usage: "mysql dsn", EnvVars: []string{"MYSQL"}},
			&cli.StringFlag{Name: "sqlite_dir", Value: "./data/sqlite", Usage: "sqlite db dir path", EnvVars: []string{"SQLITE_DIR"}},
			&cli.BoolFlag{Name: "use_sqlite", Value: false, Usage: "use sqlite instead of mysql", EnvVars: []string{"USE_SQLITE"}},
			&cli.StringFlag{Name: "kafka_uri", Value: "", Usage: "kafka broker uri, empty disables the event producer", EnvVars: []string{"KAFKA_URI"}},
			&cli.StringFlag{Name: "admin", Usage: "registry admin address", Required: true, EnvVars: []string{"ADMIN"}},
			&cli.StringFlag{Name: "initial_fee", Value: "1", Usage: "registration fee used when bootstrapping a fresh store", EnvVars: []string{"INITIAL_FEE"}},

			&cli.StringFlag{Name: "s3_acc_key", Value: "", Usage: "s3 access key", EnvVars: []string{"S3_ACC_KEY"}},
			&cli.StringFlag{Name: "s3_secret_key", Value: "", Usage: "s3 secret key", EnvVars: []string{"S3_SECRET_KEY"}},
			&cli.StringFlag{Name: "s3_prefix", Value: "arnames", Usage: "s3 bucket name prefix", EnvVars: []string{"S3_PREFIX"}},
			&cli.StringFlag{Name: "s3_region", Value: "ap-northeast-1", Usage: "s3 bucket region", EnvVars: []string{"S3_REGION"}},
			&cli.StringFlag{Name: "s3_endpoint", Value: "", Usage: "s3 endpoint", EnvVars: []string{"S3_ENDPOINT"}},
			&cli.BoolFlag{Name: "use_4ever", Value: false, Usage: "use 4everland s3 endpoint", EnvVars: []string{"USE_4EVER"}},

			&cli.StringFlag{Name: "aliyun_endpoint", Value: "", EnvVars: []string{"ALIYUN_ENDPOINT"}},
			&cli.StringFlag{Name: "aliyun_acc_key", Value: "", EnvVars: []string{"ALIYUN_ACC_KEY"}},
			&cli.StringFlag{Name: "aliyun_secret_key", Value: "", EnvVars: []string{"ALIYUN_SECRET_KEY"}},
			&cli.StringFlag{Name: "aliyun_prefix", Value: "arnames", EnvVars: []string{"ALIYUN_PREFIX"}},

			&cli.StringFlag{Name: "mongo_uri", Value: "", EnvVars: []string{"MONGO_URI"}},

			&cli.StringFlag{Name: "port", Value: ":8080", EnvVars: []string{"PORT"}},
		},
		Action: run,
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	s := arnames.New(&schema.Config{
		StoreBackend: c.String("store_backend"),
		BoltDirPath:  c.String("db_dir"),
		Mysql:        c.String("mysql"),
		SqliteDir:    c.String("sqlite_dir"),
		UseSqlite:    c.Bool("use_sqlite"),
		KafkaUri:     c.String("kafka_uri"),
		Port:         c.String("port"),
		AdminAddr:    c.String("admin"),
		InitialFee:   c.String("initial_fee"),

		S3AccKey:    c.String("s3_acc_key"),
		S3SecretKey: c.String("s3_secret_key"),
		S3Prefix:    c.String("s3_prefix"),
		S3Region:    c.String("s3_region"),
		S3Endpoint:  c.String("s3_endpoint"),
		Use4EVER:    c.Bool("use_4ever"),

		AliyunEndpoint:  c.String("aliyun_endpoint"),
		AliyunAccKey:    c.String("aliyun_acc_key"),
		AliyunSecretKey: c.String("aliyun_secret_key"),
		AliyunPrefix:    c.String("aliyun_prefix"),

		MongoUri: c.String("mongo_uri"),
	})
	s.Run(c.String("port"))

	<-signals
	s.Close()

	return nil
}
