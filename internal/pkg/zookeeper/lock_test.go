// internal/pkg/zookeeper/lock_test.go
package zookeeper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortBySequenceIgnoresProtectedPrefix(t *testing.T) {
	// 受保护节点的 guid 前缀会打乱字典序，排序必须只看末尾序列号
	children := []string{
		"_c_ffffffffffffffffffffffffffffffff-lock-0000000002",
		"_c_00000000000000000000000000000000-lock-0000000003",
		"_c_aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa-lock-0000000001",
	}

	sortBySequence(children)

	assert.Equal(t, []string{
		"_c_aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa-lock-0000000001",
		"_c_ffffffffffffffffffffffffffffffff-lock-0000000002",
		"_c_00000000000000000000000000000000-lock-0000000003",
	}, children)
}

func TestSequenceNumber(t *testing.T) {
	assert.Equal(t, 42, sequenceNumber("_c_deadbeef-lock-0000000042"))
	assert.Equal(t, 7, sequenceNumber("lock-0000000007"))
	// 解析不出序列号的节点排到队尾，不参与抢锁
	assert.Greater(t, sequenceNumber("garbage"), 1<<40)
	assert.Greater(t, sequenceNumber("lock-notanumber"), 1<<40)
}
