package kvstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry 键值表，对应 kv_entries
type Entry struct {
	Key       string    `gorm:"type:varchar(128);primaryKey"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName 指定表名
func (Entry) TableName() string { return "kv_entries" }

// Gorm 以关系库单表保存集合（postgres / sqlite）
type Gorm struct {
	db *gorm.DB
}

// NewGorm 创建基于 GORM 的存储；表结构由迁移或 AutoMigrate 负责
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (g *Gorm) Get(ctx context.Context, key string) ([]byte, error) {
	var e Entry
	err := g.db.WithContext(ctx).Where("key = ?", key).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return []byte(e.Value), nil
}

func (g *Gorm) Set(ctx context.Context, key string, value []byte) error {
	e := Entry{Key: key, Value: string(value), UpdatedAt: time.Now()}
	return g.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&e).Error
}
