package particle

// Renderer is a rendering strategy driven once per frame by Field.Render.
type Renderer interface {
	BeginFrame(width, height float64)
	DrawParticle(p Particle, c Color)
	EndFrame()
}

// Node is the declarative description of one rendered particle.
type Node struct {
	ID       uint64  `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Diameter float64 `json:"diameter"`
	Color    string  `json:"color"`
}

// Frame is a complete declarative frame.
type Frame struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Nodes  []Node  `json:"nodes"`
}

// NodeRenderer collects a declarative node list instead of drawing pixels.
// Front-ends reconcile the nodes by ID and animate them themselves.
type NodeRenderer struct {
	frame Frame
}

// BeginFrame implements Renderer.
func (n *NodeRenderer) BeginFrame(width, height float64) {
	n.frame = Frame{Width: width, Height: height, Nodes: make([]Node, 0)}
}

// DrawParticle implements Renderer.
func (n *NodeRenderer) DrawParticle(p Particle, c Color) {
	n.frame.Nodes = append(n.frame.Nodes, Node{
		ID:       p.ID,
		X:        p.X,
		Y:        p.Y,
		Diameter: p.Radius * 2,
		Color:    c.CSS(),
	})
}

// EndFrame implements Renderer.
func (n *NodeRenderer) EndFrame() {}

// Frame returns the last collected frame.
func (n *NodeRenderer) Frame() Frame { return n.frame }
