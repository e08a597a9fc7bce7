package service

import (
	"strconv"
	"sync"

	cmap "github.com/orcaman/concurrent-map/v2"
)

type lockEntry struct {
	mu   sync.Mutex
	refs int // 只在 cmap 分片锁内读写
}

// RecordLocker 按流水 id 加互斥锁，同一进程内同步与退款对同一条记录串行。
// 跨进程由 dao 层的行锁保证
type RecordLocker struct {
	locks cmap.ConcurrentMap[string, *lockEntry]
}

func NewRecordLocker() *RecordLocker {
	return &RecordLocker{locks: cmap.New[*lockEntry]()}
}

// Lock 返回解锁函数，没有等待者时释放对应的 entry
func (l *RecordLocker) Lock(id uint64) func() {
	key := strconv.FormatUint(id, 10)
	e := l.locks.Upsert(key, nil, func(exist bool, inMap *lockEntry, _ *lockEntry) *lockEntry {
		if !exist {
			inMap = &lockEntry{}
		}
		inMap.refs++
		return inMap
	})
	e.mu.Lock()

	return func() {
		e.mu.Unlock()
		l.locks.RemoveCb(key, func(_ string, v *lockEntry, exists bool) bool {
			if !exists {
				return false
			}
			v.refs--
			return v.refs == 0
		})
	}
}

// Len 当前持有或等待中的记录数
func (l *RecordLocker) Len() int {
	return l.locks.Count()
}
