package core

import (
	"context"
	"time"
)

// 引擎对外部协作方（目录服务 / 订单服务 / 用户服务）的只读依赖。
// 接口定义在领域层，由宿主服务注入实现（DB、RPC、内存 mock 均可）。

// CatalogSource 提供商品目录读取。
type CatalogSource interface {
	// ListActiveProducts 返回当前在售商品全集
	ListActiveProducts(ctx context.Context) ([]*Product, error)
}

// InteractionSource 提供交互日志读取。
type InteractionSource interface {
	// ListInteractions 返回 since 之后的交互记录；since 为零值时返回全量
	ListInteractions(ctx context.Context, since time.Time) ([]*Interaction, error)
}

// UserSource 提供买家元数据读取。
type UserSource interface {
	// GetUser 返回买家元数据；不存在时返回 NOT_FOUND 领域错误
	GetUser(ctx context.Context, userID string) (*UserMeta, error)
}

// UserMeta 是协作方提供的买家元数据。
type UserMeta struct {
	ID           string
	BusinessType string
}
