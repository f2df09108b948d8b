package schema

type Config struct {
	StoreBackend string `yaml:"storeBackend"` // boltdb | s3 | aliyun | mongodb
	BoltDirPath  string `yaml:"boltDirPath"`

	Mysql     string `yaml:"mysql"`
	SqliteDir string `yaml:"sqliteDir"`
	UseSqlite bool   `yaml:"useSqlite"`

	KafkaUri string `yaml:"kafkaUri"`
	Port     string `yaml:"port"`

	AdminAddr  string `yaml:"adminAddr"`
	InitialFee string `yaml:"initialFee"` // decimal string

	S3AccKey    string `yaml:"s3AccKey"`
	S3SecretKey string `yaml:"s3SecretKey"`
	S3Prefix    string `yaml:"s3Prefix"`
	S3Region    string `yaml:"s3Region"`
	S3Endpoint  string `yaml:"s3Endpoint"`
	Use4EVER    bool   `yaml:"use4EVER"`

	AliyunEndpoint  string `yaml:"aliyunEndpoint"`
	AliyunAccKey    string `yaml:"aliyunAccKey"`
	AliyunSecretKey string `yaml:"aliyunSecretKey"`
	AliyunPrefix    string `yaml:"aliyunPrefix"`

	MongoUri string `yaml:"mongoUri"`
}
