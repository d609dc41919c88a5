package ast

// Visitor interface for traversing AST nodes using the visitor pattern
type Visitor interface {
	VisitLiteral(node *Literal) any
	VisitVariable(node *Variable) any
	VisitAssignment(node *Assignment) any
	VisitBinaryOp(node *BinaryOp) any
}

// Inspect traverses the tree depth-first in source order, calling fn for
// each node. Children are skipped when fn returns false.
func Inspect(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	switch n := node.(type) {
	case *Assignment:
		Inspect(n.Value, fn)
	case *BinaryOp:
		Inspect(n.Left, fn)
		Inspect(n.Right, fn)
	}
}

// Collector gathers the names a program reads and assigns
type Collector struct {
	Reads    []string
	Assigned []string
	Literals int
}

// Collect walks every statement of the program
func Collect(p *Program) *Collector {
	c := &Collector{}
	for _, stmt := range p.Statements {
		stmt.Accept(c)
	}
	return c
}

func (c *Collector) VisitLiteral(node *Literal) any {
	c.Literals++
	return nil
}

func (c *Collector) VisitVariable(node *Variable) any {
	c.Reads = append(c.Reads, node.Name)
	return nil
}

func (c *Collector) VisitAssignment(node *Assignment) any {
	// Right-hand side first: it is evaluated before the name is bound.
	node.Value.Accept(c)
	c.Assigned = append(c.Assigned, node.Name)
	return nil
}

func (c *Collector) VisitBinaryOp(node *BinaryOp) any {
	node.Left.Accept(c)
	node.Right.Accept(c)
	return nil
}
