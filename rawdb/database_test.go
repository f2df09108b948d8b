package rawdb

import (
	"fmt"
	"sort"
	"testing"

	"github.com/everFinance/arnames/schema"
	"github.com/stretchr/testify/assert"
)

func TestBoltDB(t *testing.T) {
	dataPath := t.TempDir()
	bktName := schema.ConstantsBucket // can be replaced by any bucket in schema
	keyNum := 100
	// prepare key&val to test
	keys := make([]string, keyNum)
	values := make([][]byte, keyNum)
	for i := 0; i < keyNum; i++ {
		key := fmt.Sprintf("key%d", i)
		keys[i] = key
		val := fmt.Sprintf("v%d", i)
		values[i] = []byte(val)
	}
	assert.Equal(t, keyNum, len(keys))
	// create a bolt db
	boltDb, err := NewBoltDB(dataPath)
	assert.NoError(t, err)
	defer boltDb.Close()

	// test Put & Get
	for i := 0; i < keyNum; i++ {
		err = boltDb.Put(bktName, keys[i], values[i])
		assert.NoError(t, err)
	}

	for i := 0; i < keyNum; i++ {
		val, err := boltDb.Get(bktName, keys[i])
		assert.NoError(t, err)
		assert.Equal(t, values[i], val)
	}

	// test GetAllKey
	allKeys, err := boltDb.GetAllKey(bktName)
	assert.NoError(t, err)
	sort.Strings(keys)
	sort.Strings(allKeys)
	assert.Equal(t, keys, allKeys)

	// test Exist & Delete
	assert.True(t, boltDb.Exist(bktName, "key1"))
	err = boltDb.Delete(bktName, "key1")
	assert.NoError(t, err)
	assert.False(t, boltDb.Exist(bktName, "key1"))

	_, err = boltDb.Get(bktName, "key1")
	assert.Equal(t, schema.ErrNotExist, err)

	// only []byte value accepted
	err = boltDb.Put(bktName, "key1", "string value")
	assert.Error(t, err)
}
