// internal/service/inventory/domain/stock.go
package domain

import "time"

// DefaultReorderLevel 是建议补货阈值的默认值，仅作存储，不触发任何强制行为。
const DefaultReorderLevel = 10

// StockRecord 是库存台账的聚合根，每个商品一条。
// 不变式：任何操作提交后 0 <= Reserved <= Quantity 且 Quantity >= 0。
// 唯一的例外是 Confirm（见方法注释）。
type StockRecord struct {
	ID                uint64
	ProductID         uint64
	Quantity          int // 在库总量
	Reserved          int // 在途订单占用量
	WarehouseLocation string
	ReorderLevel      int
	LastRestocked     time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewStockRecord 创建一条新的库存记录。
func NewStockRecord(productID uint64, quantity int, warehouseLocation string, reorderLevel int) *StockRecord {
	if reorderLevel <= 0 {
		reorderLevel = DefaultReorderLevel
	}
	now := time.Now()
	return &StockRecord{
		ProductID:         productID,
		Quantity:          quantity,
		WarehouseLocation: warehouseLocation,
		ReorderLevel:      reorderLevel,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Available 是可供新预占的数量。
func (r *StockRecord) Available() int {
	return r.Quantity - r.Reserved
}

// HasAvailable 判断可用量是否满足请求量。
func (r *StockRecord) HasAvailable(qty int) bool {
	return r.Available() >= qty
}

// Reserve 软占用库存：可用量不足时不做任何修改并返回 false。
func (r *StockRecord) Reserve(qty int) bool {
	if !r.HasAvailable(qty) {
		return false
	}
	r.Reserved += qty
	r.touch()
	return true
}

// Release 释放软占用，下限截断到 0。
// 超量释放静默成功是有意为之：调用方不能依赖 Release 来发现重复释放。
func (r *StockRecord) Release(qty int) {
	r.Reserved = max(0, r.Reserved-qty)
	r.touch()
}

// Confirm 把预占转为实际扣减：Quantity -= qty，Reserved 下限截断到 0。
// 注意：这里不校验 qty 是否真的被预占过，qty 超过在库量时 Quantity 会被
// 扣成负数。确认路径完全信任调用方已经走过 reserve，不做静默修正。
func (r *StockRecord) Confirm(qty int) {
	r.Quantity -= qty
	r.Reserved = max(0, r.Reserved-qty)
	r.touch()
}

// Restock 入库补货并刷新补货时间。
func (r *StockRecord) Restock(qty int) {
	r.Quantity += qty
	r.LastRestocked = time.Now()
	r.touch()
}

func (r *StockRecord) touch() {
	r.UpdatedAt = time.Now()
}
