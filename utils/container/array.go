package container

import (
	"sort"
	"sync"
)

// IIncrementalItem 可放入增量数组的元素，记录自身在数组中的下标
type IIncrementalItem interface {
	Index() int
	SetIndex(index int)
}

// IncrementalItemBase 下标记录的默认实现，嵌入即可满足IIncrementalItem
type IncrementalItemBase struct {
	index int
}

func (b *IncrementalItemBase) Index() int {
	return b.index
}

func (b *IncrementalItemBase) SetIndex(index int) {
	b.index = index
}

// IncrementalArray 增量数组
// 功能：Add与Remove先登记，Prepare时统一生效，两次Prepare之间Data()保持不变
// 说明：Remove的元素必须已经生效（不能删除同一批次中刚Add的元素），Data()的顺序不保证
type IncrementalArray[T IIncrementalItem] struct {
	data    []T
	pending struct {
		sync.Mutex
		add    []T
		remove []T
	}
}

func NewIncrementalArray[T IIncrementalItem]() *IncrementalArray[T] {
	return &IncrementalArray[T]{data: make([]T, 0)}
}

func (a *IncrementalArray[T]) Len() int {
	return len(a.data)
}

// Data 已生效的元素（内部切片，调用方不可修改）
func (a *IncrementalArray[T]) Data() []T {
	return a.data
}

// Add 登记新增元素
func (a *IncrementalArray[T]) Add(value T) {
	a.pending.Lock()
	defer a.pending.Unlock()
	a.pending.add = append(a.pending.add, value)
}

// Remove 登记删除元素
func (a *IncrementalArray[T]) Remove(value T) {
	a.pending.Lock()
	defer a.pending.Unlock()
	a.pending.remove = append(a.pending.remove, value)
}

// Prepare 使登记的新增、删除生效
// 算法说明：
// 1. 被删除的位置优先由新增元素填补
// 2. 新增元素有剩余时追加到末尾
// 3. 删除位置有剩余时，按下标从大到小依次用末尾元素填补并截断
func (a *IncrementalArray[T]) Prepare() {
	a.pending.Lock()
	add, remove := a.pending.add, a.pending.remove
	a.pending.add, a.pending.remove = nil, nil
	a.pending.Unlock()

	n := min(len(add), len(remove))
	for i := 0; i < n; i++ {
		a.set(remove[i].Index(), add[i])
	}
	for _, x := range add[n:] {
		x.SetIndex(len(a.data))
		a.data = append(a.data, x)
	}
	holes := make([]int, 0, len(remove)-n)
	for _, x := range remove[n:] {
		holes = append(holes, x.Index())
	}
	// 从大到小处理，避免用即将被删除的末尾元素填补
	sort.Sort(sort.Reverse(sort.IntSlice(holes)))
	for _, h := range holes {
		last := len(a.data) - 1
		if h != last {
			a.set(h, a.data[last])
		}
		a.data = a.data[:last]
	}
}

func (a *IncrementalArray[T]) set(index int, x T) {
	a.data[index] = x
	x.SetIndex(index)
}
