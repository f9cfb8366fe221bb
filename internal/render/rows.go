package render

import "curriculo/internal/resume"

type slot int

const (
	slotLeft slot = iota
	slotRight
)

type packedRow struct {
	cells [2]*resume.Section
}

func (r *packedRow) empty(s slot) bool { return r.cells[s] == nil }

// PackRows assigns sections to the two-slot rows of the creative grid.
//
// Auto sections fill the slot the cursor points at, starting on the left and
// alternating; when that slot of the current row is taken a new row opens.
// Explicit left/right sections take their slot in the current row when free,
// otherwise open a new row. After an explicit placement the cursor moves to
// the other slot of that row if it is still free, else back to the left.
// The editor's drag-and-drop column assignment uses the same rule.
func PackRows(sections []resume.Section) []Row {
	var rows []*packedRow
	cursor := slotLeft

	current := func() *packedRow {
		if len(rows) == 0 {
			return nil
		}
		return rows[len(rows)-1]
	}
	open := func() *packedRow {
		r := &packedRow{}
		rows = append(rows, r)
		return r
	}

	for i := range sections {
		s := &sections[i]
		target := cursor
		explicit := true
		switch s.LayoutColumn.Normalize() {
		case resume.ColumnLeft:
			target = slotLeft
		case resume.ColumnRight:
			target = slotRight
		default:
			explicit = false
		}

		row := current()
		if row == nil || !row.empty(target) {
			row = open()
		}
		row.cells[target] = s

		other := slotRight
		if target == slotRight {
			other = slotLeft
		}
		switch {
		case !explicit && target == slotLeft && row.empty(slotRight):
			cursor = slotRight
		case !explicit:
			cursor = slotLeft
		case row.empty(other):
			cursor = other
		default:
			cursor = slotLeft
		}
	}

	if len(rows) == 0 {
		return []Row{{}}
	}

	out := make([]Row, len(rows))
	for i, r := range rows {
		if left := r.cells[slotLeft]; left != nil {
			formatted := formatSection(*left, false)
			out[i].Left = &formatted
		}
		if right := r.cells[slotRight]; right != nil {
			formatted := formatSection(*right, false)
			out[i].Right = &formatted
		}
	}
	return out
}
