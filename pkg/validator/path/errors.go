package path

import "errors"

// 路径前置条件错误
// 这些都是调用方的编程错误，以 panic 的形式快速失败，不属于用户数据的验证失败
var (
	// ErrEmptyNodeName 节点名称为空
	ErrEmptyNodeName = errors.New("path: node name must not be empty")

	// ErrNoLeaf 根路径没有叶子节点
	ErrNoLeaf = errors.New("path: root path has no leaf node")

	// ErrNegativeIndex 索引为负数
	ErrNegativeIndex = errors.New("path: index must not be negative")

	// ErrNotInCollection 叶子节点未标记为集合元素
	ErrNotInCollection = errors.New("path: leaf node is not marked as a collection element")

	// ErrQualifierAlreadySet 叶子节点已有索引或键
	ErrQualifierAlreadySet = errors.New("path: leaf node already carries an index or key")
)
