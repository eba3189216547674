package validator

import "katydid-common-validation/pkg/validator/path"

// ============================================================================
// 违规构建器 - 每种状态一个类型，只暴露该状态下合法的操作
// ============================================================================
//
// 状态流转：
//
//	ViolationBuilder ──AddNode──▶ NodeBuilder ──InIterable──▶ IterableNodeBuilder
//	                                  ▲   │                          │
//	                                  │   AddNode            AtKey/AtIndex
//	                                  │   ▼                          ▼
//	                                  └── NodeBuilder ◀──AddNode── QualifiedNodeBuilder
//
// ViolationBuilder、NodeBuilder、QualifiedNodeBuilder 可以调用 AddConstraintViolation 提交；
// IterableNodeBuilder 必须先选定索引或键，路径才算完整。
// QualifiedNodeBuilder 的叶子已有限定符，只能追加新节点或提交，不能再次限定。
//
// 构建器是值类型：复制、分叉、提交后继续使用都不会影响已提交的记录。

// ViolationBuilder 起始状态：路径等于上下文的起始路径
type ViolationBuilder struct {
	context         *Context
	messageTemplate string
	propertyPath    path.Path
}

// AddNode 追加一个命名节点
func (b ViolationBuilder) AddNode(name string) NodeBuilder {
	var p path.Path
	if b.propertyPath.IsRoot() {
		p = path.NewPath(name)
	} else {
		p = b.propertyPath.Copy().Append(name)
	}
	return NodeBuilder{
		context:         b.context,
		messageTemplate: b.messageTemplate,
		propertyPath:    p,
	}
}

// AddConstraintViolation 提交违规记录，返回所属上下文
func (b ViolationBuilder) AddConstraintViolation() *Context {
	return commit(b.context, b.messageTemplate, b.propertyPath)
}

// NodeBuilder 已追加至少一个节点，叶子节点尚未标记为集合元素
type NodeBuilder struct {
	context         *Context
	messageTemplate string
	propertyPath    path.Path
}

// AddNode 在当前路径的分支上追加一个命名节点
func (b NodeBuilder) AddNode(name string) NodeBuilder {
	b.propertyPath = b.propertyPath.Copy().Append(name)
	return b
}

// InIterable 将叶子节点标记为集合/Map 元素，随后必须选定索引或键
func (b NodeBuilder) InIterable() IterableNodeBuilder {
	return IterableNodeBuilder{
		context:         b.context,
		messageTemplate: b.messageTemplate,
		propertyPath:    b.propertyPath.WithLeafInCollection(),
	}
}

// AddConstraintViolation 提交违规记录，返回所属上下文
func (b NodeBuilder) AddConstraintViolation() *Context {
	return commit(b.context, b.messageTemplate, b.propertyPath)
}

// Path 当前构建中的路径
func (b NodeBuilder) Path() path.Path {
	return b.propertyPath
}

// IterableNodeBuilder 叶子节点刚被标记为集合元素，等待索引或键
type IterableNodeBuilder struct {
	context         *Context
	messageTemplate string
	propertyPath    path.Path
}

// AtKey 以键限定叶子节点
func (b IterableNodeBuilder) AtKey(key any) QualifiedNodeBuilder {
	return QualifiedNodeBuilder{
		context:         b.context,
		messageTemplate: b.messageTemplate,
		propertyPath:    b.propertyPath.WithLeafKey(key),
	}
}

// AtIndex 以位置限定叶子节点，index 不能为负数
func (b IterableNodeBuilder) AtIndex(index int) QualifiedNodeBuilder {
	return QualifiedNodeBuilder{
		context:         b.context,
		messageTemplate: b.messageTemplate,
		propertyPath:    b.propertyPath.WithLeafIndex(index),
	}
}

// QualifiedNodeBuilder 叶子节点已通过索引或键限定
type QualifiedNodeBuilder struct {
	context         *Context
	messageTemplate string
	propertyPath    path.Path
}

// AddNode 在限定后的元素下追加一个命名节点
func (b QualifiedNodeBuilder) AddNode(name string) NodeBuilder {
	return NodeBuilder{
		context:         b.context,
		messageTemplate: b.messageTemplate,
		propertyPath:    b.propertyPath.Copy().Append(name),
	}
}

// AddConstraintViolation 提交违规记录，返回所属上下文
func (b QualifiedNodeBuilder) AddConstraintViolation() *Context {
	return commit(b.context, b.messageTemplate, b.propertyPath)
}

// Path 当前构建中的路径
func (b QualifiedNodeBuilder) Path() path.Path {
	return b.propertyPath
}

// commit 各状态共用的提交逻辑
func commit(ctx *Context, messageTemplate string, propertyPath path.Path) *Context {
	if ctx == nil {
		panic(ErrDetachedBuilder)
	}
	ctx.addErrorMessage(messageTemplate, propertyPath)
	return ctx
}
