package outline

import (
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/doctoc/internal/dom"
)

// Control labels written by Toggle.
const (
	ShowLabel = "Show Table of Contents"
	HideLabel = "Hide Table of Contents"
)

// Visible reports whether the container is shown. An unset display counts
// as shown.
func Visible(container *html.Node) bool {
	switch dom.Display(container) {
	case "block", "":
		return true
	}
	return false
}

// Toggle flips the container between hidden and shown and relabels control
// to offer the opposite action. It returns the new visibility. control may
// be nil.
func Toggle(container, control *html.Node) bool {
	if Visible(container) {
		dom.SetDisplay(container, "none")
		setControlLabel(control, ShowLabel)
		return false
	}
	dom.SetDisplay(container, "block")
	setControlLabel(control, HideLabel)
	return true
}

// ToggleByID looks up the container and control by id and runs Toggle.
func ToggleByID(doc *html.Node, outlineID, controlID string) (bool, error) {
	container := dom.FindByID(doc, outlineID)
	if container == nil {
		return false, fmt.Errorf("outline container %q: %w", outlineID, ErrNotFound)
	}
	control := dom.FindByID(doc, controlID)
	if control == nil {
		return false, fmt.Errorf("control %q: %w", controlID, ErrNotFound)
	}
	return Toggle(container, control), nil
}

// setControlLabel writes the value of an <input> button, or the text of any
// other element.
func setControlLabel(control *html.Node, label string) {
	if control == nil {
		return
	}
	if control.DataAtom == atom.Input {
		dom.SetAttr(control, "value", label)
		return
	}
	dom.SetText(control, label)
}
