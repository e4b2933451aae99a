package graph

// Visualization types.
const (
	VizTypeTree     = "tree"
	VizTypeNodelink = "nodelink"
)

// Node is the unified node type for both formats. Position fields are only
// set in layouts.
type Node struct {
	ID          string   `json:"id" bson:"id"`
	Label       string   `json:"label,omitempty" bson:"label,omitempty"`
	Slug        string   `json:"slug,omitempty" bson:"slug,omitempty"`
	Description string   `json:"description,omitempty" bson:"description,omitempty"`
	Color       string   `json:"color,omitempty" bson:"color,omitempty"`
	Thumbnail   string   `json:"thumbnail,omitempty" bson:"thumbnail,omitempty"`
	Price       float64  `json:"price,omitempty" bson:"price,omitempty"`
	IsFree      bool     `json:"is_free,omitempty" bson:"is_free,omitempty"`
	Row         int      `json:"row,omitempty" bson:"row,omitempty"`
	Index       int      `json:"index,omitempty" bson:"index,omitempty"`
	X           float64  `json:"x,omitempty" bson:"x,omitempty"`
	Y           float64  `json:"y,omitempty" bson:"y,omitempty"`
	Width       float64  `json:"width,omitempty" bson:"width,omitempty"`
	Height      float64  `json:"height,omitempty" bson:"height,omitempty"`
	State       string   `json:"state,omitempty" bson:"state,omitempty"`
	HasAccess   bool     `json:"has_access,omitempty" bson:"has_access,omitempty"`
	Exercises   int      `json:"exercises,omitempty" bson:"exercises,omitempty"`
	Unreachable bool     `json:"unreachable,omitempty" bson:"unreachable,omitempty"`
	Children    []string `json:"children,omitempty" bson:"children,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Point is a world coordinate.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Edge is a prerequisite edge from parent to child. Path is only set in
// layouts and holds the cubic bezier start, both control points and end.
type Edge struct {
	From string  `json:"from" bson:"from"`
	To   string  `json:"to" bson:"to"`
	Path []Point `json:"path,omitempty" bson:"path,omitempty"`
}
