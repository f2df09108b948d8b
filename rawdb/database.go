package rawdb

import (
	"github.com/everFinance/go-everpay/common"
)

var log = common.NewLog("arnames")

// KeyValueDB is the raw persistence layer under the registry Store.
// Every backend keeps the same bucket layout; values are small json blobs.
type KeyValueDB interface {
	Put(bucket, key string, value interface{}) (err error)

	Get(bucket, key string) (data []byte, err error)

	GetAllKey(bucket string) (keys []string, err error)

	Delete(bucket, key string) (err error)

	Close() (err error)

	Type() string

	Exist(bucket, key string) bool
}
