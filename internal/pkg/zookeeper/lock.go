// internal/pkg/zookeeper/lock.go
package zookeeper

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-zookeeper/zk"
)

const lockRoot = "/vertex_locks"

// Conn 是对 zk.Conn 的薄封装。
type Conn struct {
	*zk.Conn
}

// Connect 建立 ZooKeeper 会话。addrs 格式为 "host1:2181,host2:2181"。
func Connect(addrs string, sessionTimeout time.Duration) (*Conn, error) {
	conn, _, err := zk.Connect(strings.Split(addrs, ","), sessionTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to zookeeper: %w", err)
	}
	return &Conn{Conn: conn}, nil
}

// DistributedLock 是基于临时顺序节点的互斥锁，
// 用于多实例部署时对同一资源的跨进程串行化。
type DistributedLock struct {
	conn     *Conn
	path     string
	lockNode string
}

// NewDistributedLock 创建一个针对 resourceID 的锁实例。
func NewDistributedLock(conn *Conn, resourceID string) (*DistributedLock, error) {
	if err := ensureNode(conn, lockRoot); err != nil {
		return nil, err
	}
	lockPath := lockRoot + "/" + resourceID
	if err := ensureNode(conn, lockPath); err != nil {
		return nil, err
	}
	return &DistributedLock{conn: conn, path: lockPath}, nil
}

func ensureNode(conn *Conn, path string) error {
	exists, _, err := conn.Exists(path)
	if err != nil {
		return fmt.Errorf("failed to check node %s: %w", path, err)
	}
	if exists {
		return nil
	}
	if _, err := conn.Create(path, []byte(""), 0, zk.WorldACL(zk.PermAll)); err != nil && err != zk.ErrNodeExists {
		return fmt.Errorf("failed to create node %s: %w", path, err)
	}
	return nil
}

// sortBySequence 按节点名末尾的序列号排序。
// CreateProtectedEphemeralSequential 生成的节点名是 "_c_<guid>-lock-NNNNNNNNNN"，
// 直接字典序排的是 guid 而不是序列号，排队就乱了。
func sortBySequence(children []string) {
	sort.Slice(children, func(i, j int) bool {
		return sequenceNumber(children[i]) < sequenceNumber(children[j])
	})
}

func sequenceNumber(name string) int {
	idx := strings.LastIndex(name, "-")
	if idx < 0 {
		return math.MaxInt
	}
	n, err := strconv.Atoi(name[idx+1:])
	if err != nil {
		return math.MaxInt
	}
	return n
}

// Lock 尝试获取锁，获取不到则阻塞等待，最长 30s。
func (l *DistributedLock) Lock() error {
	// 创建临时顺序节点: /vertex_locks/<resource>/lock-NNN
	nodePath, err := l.conn.CreateProtectedEphemeralSequential(l.path+"/lock-", []byte(""), zk.WorldACL(zk.PermAll))
	if err != nil {
		return fmt.Errorf("failed to create sequential node: %w", err)
	}
	l.lockNode = nodePath

	for {
		children, _, err := l.conn.Children(l.path)
		if err != nil {
			return fmt.Errorf("failed to get children nodes: %w", err)
		}
		sortBySequence(children)

		myNodeName := strings.TrimPrefix(l.lockNode, l.path+"/")
		if myNodeName == children[0] {
			return nil
		}

		// 不是最小节点，监听排在自己前面的那个
		prevNodeIndex := -1
		for i, child := range children {
			if child == myNodeName {
				prevNodeIndex = i - 1
				break
			}
		}
		if prevNodeIndex < 0 {
			return errors.New("cannot find previous node, something is wrong")
		}
		prevNodePath := l.path + "/" + children[prevNodeIndex]

		exists, _, eventChan, err := l.conn.ExistsW(prevNodePath)
		if err != nil {
			if err == zk.ErrNoNode {
				continue
			}
			return fmt.Errorf("failed to watch previous node: %w", err)
		}
		if !exists {
			continue
		}

		select {
		case event := <-eventChan:
			if event.Type == zk.EventNodeDeleted {
				continue
			}
		case <-time.After(30 * time.Second):
			return errors.New("timeout waiting for lock")
		}
	}
}

// Unlock 释放锁。
func (l *DistributedLock) Unlock() error {
	if l.lockNode == "" {
		return errors.New("no lock to unlock")
	}
	err := l.conn.Delete(l.lockNode, -1)
	if err != nil && err != zk.ErrNoNode {
		return fmt.Errorf("failed to delete lock node: %w", err)
	}
	l.lockNode = ""
	return nil
}
