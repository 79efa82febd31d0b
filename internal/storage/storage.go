// internal/storage/storage.go
package storage

import (
	"context"
	"time"
)

// KVStore は耐久性のあるキーバリューストレージのインターフェースです。
// Progress Store だけがこのインターフェースを呼び出すことを許可されています。
type KVStore interface {
	// Get はキーに対応する値を返します。キーが存在しない場合は ok=false を返し、
	// エラーにはしません。
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// KVEntry は kv_entries テーブルの1行を表します
type KVEntry struct {
	Key       string `gorm:"primaryKey;column:key"`
	Value     string `gorm:"not null;type:text"`
	UpdatedAt time.Time
}

func (KVEntry) TableName() string {
	return "kv_entries"
}
