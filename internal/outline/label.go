package outline

import (
	"strconv"
	"strings"
)

// AnchorPrefix is prepended to a label to form a heading id.
const AnchorPrefix = "section"

// Label is a dotted section number. Depth is the number of significant
// segments (1 for h2, 2 for h3, 3 for h4).
type Label struct {
	Parts [3]int
	Depth int
}

// String joins the significant segments with dots: "2", "2.3", "2.3.1".
func (l Label) String() string {
	var sb strings.Builder
	for i := 0; i < l.Depth && i < len(l.Parts); i++ {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(strconv.Itoa(l.Parts[i]))
	}
	return sb.String()
}

// Anchor is the id assigned to the heading.
func (l Label) Anchor() string {
	return AnchorPrefix + l.String()
}

// Href is the link target of the outline entry.
func (l Label) Href() string {
	return "#" + l.Anchor()
}

// Prefix is the text inserted before the heading content.
func (l Label) Prefix() string {
	return l.String() + ". "
}
