package path

// Node 属性路径中的一个节点
// 设计原则：值对象模式，不可变
//   - 限定符（索引/键）只能在节点被标记为集合元素后设置
//   - 索引与键互斥，最多设置其一
//   - 所有"修改"操作都返回新节点，原节点保持不变
type Node struct {
	name         string // 节点名称
	inCollection bool   // 是否为集合/Map 中的元素
	index        int    // 位置限定符
	hasIndex     bool   // 是否设置了索引
	key          any    // 键限定符（任意值，允许 nil）
	hasKey       bool   // 是否设置了键
}

// NewNode 创建命名节点
func NewNode(name string) Node {
	if name == "" {
		panic(ErrEmptyNodeName)
	}
	return Node{name: name}
}

// Name 节点名称
func (n Node) Name() string {
	return n.name
}

// IsInCollection 是否通过集合/Map 访问
func (n Node) IsInCollection() bool {
	return n.inCollection
}

// Index 返回位置限定符，未设置时 ok 为 false
func (n Node) Index() (index int, ok bool) {
	return n.index, n.hasIndex
}

// Key 返回键限定符，未设置时 ok 为 false
func (n Node) Key() (key any, ok bool) {
	return n.key, n.hasKey
}

// HasQualifier 是否已设置索引或键
func (n Node) HasQualifier() bool {
	return n.hasIndex || n.hasKey
}

// withInCollection 返回标记为集合元素的副本
func (n Node) withInCollection() Node {
	n.inCollection = true
	return n
}

// withIndex 返回带索引的副本
func (n Node) withIndex(index int) Node {
	if index < 0 {
		panic(ErrNegativeIndex)
	}
	n.checkQualifiable()
	n.index = index
	n.hasIndex = true
	return n
}

// withKey 返回带键的副本
func (n Node) withKey(key any) Node {
	n.checkQualifiable()
	n.key = key
	n.hasKey = true
	return n
}

// checkQualifiable 限定符前置条件检查
func (n Node) checkQualifiable() {
	if !n.inCollection {
		panic(ErrNotInCollection)
	}
	if n.HasQualifier() {
		panic(ErrQualifierAlreadySet)
	}
}
