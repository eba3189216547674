package validator

import (
	"sync"

	"katydid-common-validation/pkg/validator/path"
)

// ============================================================================
// 对象池优化 - 减少内存分配和 GC 压力
// ============================================================================

// maxPooledMessagesCapacity 超过该容量的记录切片不再复用
const maxPooledMessagesCapacity = 1000

// contextPool Context 对象池
// 用途：引擎对每个约束检查都会创建上下文，复用可以减少频繁的内存分配
var contextPool = sync.Pool{
	New: func() any {
		return &Context{
			errorMessages: make([]ErrorMessage, 0, defaultMessagesCapacity),
		}
	},
}

// AcquireContext 从对象池获取 Context
// 使用后必须调用 ReleaseContext 归还，归还后不能再使用该上下文及其构建器
func AcquireContext(propertyPath path.Path, descriptor ConstraintDescriptor) *Context {
	if descriptor == nil {
		panic(ErrNilDescriptor)
	}
	ctx := contextPool.Get().(*Context)
	ctx.propertyPath = propertyPath
	ctx.descriptor = descriptor
	ctx.defaultDisabled = false
	ctx.errorMessages = ctx.errorMessages[:0]
	return ctx
}

// ReleaseContext 将 Context 归还到对象池
// ErrorMessages 返回的是独立副本，归还后依然有效
func ReleaseContext(ctx *Context) {
	if ctx == nil {
		return
	}

	// 防止内存泄漏：容量过大时重新分配小容量切片
	if cap(ctx.errorMessages) > maxPooledMessagesCapacity {
		ctx.errorMessages = make([]ErrorMessage, 0, defaultMessagesCapacity)
	} else {
		clear(ctx.errorMessages)
		ctx.errorMessages = ctx.errorMessages[:0]
	}

	ctx.propertyPath = path.Path{}
	ctx.descriptor = nil
	ctx.defaultDisabled = false

	contextPool.Put(ctx)
}
