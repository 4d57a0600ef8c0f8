// Package formtree traverses form component trees.
package formtree

import "github.com/roach88/formexport/internal/model"

// Visitor is called once per component. It may mutate the component,
// including its children; the walk descends into the children as they are
// after the visit.
type Visitor func(c *model.Component)

// Walk visits every component in components depth-first, pre-order,
// descending into nested components, column components and table cell
// components at any depth. Nil entries are skipped.
func Walk(components []*model.Component, visit Visitor) {
	for _, c := range components {
		walkComponent(c, visit)
	}
}

func walkComponent(c *model.Component, visit Visitor) {
	if c == nil {
		return
	}
	visit(c)

	Walk(c.Components, visit)
	if c.Columns != nil {
		for _, col := range c.Columns.Items {
			if col != nil {
				Walk(col.Components, visit)
			}
		}
	}
	if c.Rows != nil {
		for _, row := range c.Rows.Cells {
			for _, cell := range row {
				if cell != nil {
					Walk(cell.Components, visit)
				}
			}
		}
	}
}

// Count returns the number of components Walk would visit.
func Count(components []*model.Component) int {
	n := 0
	Walk(components, func(*model.Component) { n++ })
	return n
}
