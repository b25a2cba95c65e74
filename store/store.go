package store

// 注意：此包只包含实现，接口定义在 core 包。
// 使用 core.Store 和 core.KeyValueStore 接口。
//
// 本引擎用 KeyValueStore 存放热门榜快照（ZSet：member 为商品 ID，
// score 为热度分）。Retrain 后由引擎发布，Trending 召回优先读取。
//
// 示例：
//   var kv core.KeyValueStore = NewMemoryStore()
