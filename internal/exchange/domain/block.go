package domain

import (
	"context"
	"time"
)

// Block 已摄取的账本区块，height 的最大值即水位
type Block struct {
	// 区块高度
	Height int64 `gorm:"column:height;primaryKey" json:"height"`
	// 区块时间
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName 指定表名
func (Block) TableName() string {
	return "blocks"
}

// BlockRepository 区块水位仓储接口
type BlockRepository interface {
	// Watermark 返回已完整摄取的最高区块高度，空库返回 -1
	Watermark(ctx context.Context) (int64, error)
	// SaveBlock 在一个事务内写入区块行及其解码出的订单，
	// 保证水位不会越过未完整摄取的数据
	SaveBlock(ctx context.Context, block *Block, orders []*Order) error
}
