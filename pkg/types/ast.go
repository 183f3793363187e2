package types

// NodeType identifies the type of an AST node.
type NodeType uint8

const (
	NodeConstant NodeType = iota // Numeric literal
	NodeVariable                 // Variable reference (possibly dotted: data.rain.mm)
	NodeUnary                    // Prefix operator
	NodeBinary                   // Infix operator
	NodeCall                     // Function call
)

// String returns a string representation of the node type.
func (nt NodeType) String() string {
	switch nt {
	case NodeConstant:
		return "constant"
	case NodeVariable:
		return "variable"
	case NodeUnary:
		return "unary"
	case NodeBinary:
		return "binary"
	case NodeCall:
		return "call"
	default:
		return "(unknown)"
	}
}

// ASTNode represents a node in the Abstract Syntax Tree.
//
// A single struct with a NodeType discriminator is used for all node kinds;
// only the fields relevant to a node's Type are populated. Nodes are
// immutable after parsing and safe for concurrent reads.
type ASTNode struct {
	Type     NodeType
	Position int // Byte offset in the source expression

	NumValue float64 // NodeConstant: the literal value
	Name     string  // NodeVariable: full dotted path; NodeCall: function name

	UnaryOp  UnaryOp  // NodeUnary
	BinaryOp BinaryOp // NodeBinary

	Operand   *ASTNode   // NodeUnary
	LHS       *ASTNode   // NodeBinary
	RHS       *ASTNode   // NodeBinary
	Arguments []*ASTNode // NodeCall
}

// NewASTNode creates a new AST node of the specified type.
// Prefer NodeArena.Alloc when parsing to reduce per-node heap allocations.
func NewASTNode(nodeType NodeType, position int) *ASTNode {
	return &ASTNode{
		Type:     nodeType,
		Position: position,
	}
}

// arenaChunkSize is the number of ASTNode values pre-allocated per arena chunk.
// Typical model expressions have well under 64 nodes and fit in a single chunk.
const arenaChunkSize = 64

// NodeArena is a bump-pointer allocator for ASTNode values.
//
// Instead of allocating each node individually on the heap (one GC-tracked
// object per node), the arena pre-allocates fixed-size chunks of ASTNode
// structs and returns pointers into them. A typical expression requires only
// a single chunk allocation, reducing parse-time allocations by roughly N-1
// where N is the node count.
//
// # Lifetime
//
// The arena MUST stay alive as long as any pointer returned by Alloc is
// reachable. Attaching the arena to the [Expression] achieves this: the GC
// collects the arena (and all its chunks) automatically when the Expression
// is released, including when it is evicted from the LRU cache.
//
// # Thread safety
//
// NodeArena is NOT thread-safe. Each parser owns its own arena and the
// arena is never shared across goroutines.
type NodeArena struct {
	chunks [][]ASTNode
	pos    int // next free index in the last chunk
}

// NewNodeArena allocates an arena pre-warmed with one initial chunk.
func NewNodeArena() *NodeArena {
	return &NodeArena{
		chunks: [][]ASTNode{make([]ASTNode, arenaChunkSize)},
		pos:    0,
	}
}

// Alloc returns a pointer to a zero-valued ASTNode inside the arena,
// with Type and Position set. All other fields remain at their zero values
// and must be filled by the caller.
func (a *NodeArena) Alloc(nodeType NodeType, position int) *ASTNode {
	if a.pos >= arenaChunkSize {
		// Current chunk exhausted, allocate a new one.
		a.chunks = append(a.chunks, make([]ASTNode, arenaChunkSize))
		a.pos = 0
	}
	n := &a.chunks[len(a.chunks)-1][a.pos]
	a.pos++
	n.Type = nodeType
	n.Position = position
	return n
}

// String returns a string representation of the node type.
func (n *ASTNode) String() string {
	return n.Type.String()
}
