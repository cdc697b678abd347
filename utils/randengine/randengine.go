// 随机数引擎，包装了golang.org/x/exp/rand
package randengine

import (
	"flag"

	"golang.org/x/exp/rand"
)

var (
	seedOffset = flag.Uint64("rand.seed_offset", 0, "seed offset") // 种子偏移量，用于调整随机数生成
)

// Engine 随机数引擎
// 功能：仿真中所有随机决策（生成、随机减速、后继路段）的唯一来源
// 说明：相同种子产生相同序列；非线程安全，由仿真引擎的写锁保护
type Engine struct {
	*rand.Rand
}

// New 创建随机数引擎
// 参数：seed-随机数种子
// 说明：种子偏移量允许在不修改配置的情况下调整随机数序列
func New(seed uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed + *seedOffset))}
}

// PTrue 以概率p返回true，p<=0时必然为false，p>=1时必然为true
func (e *Engine) PTrue(p float64) bool {
	return e.Float64() < p
}

// Choice 在[0, n)中均匀选择一个下标
// 返回：下标，n<=0时返回-1且不消耗随机数
func (e *Engine) Choice(n int) int {
	if n <= 0 {
		return -1
	}
	return e.Intn(n)
}
