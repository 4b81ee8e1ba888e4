// Package menu provides an ordered, validated grid of labeled buttons.
// Button labels double as routing keys unless a key is set explicitly,
// so a menu definition is also the route table for its handlers.
package menu

import "fmt"

// Button is a single labeled button. Key is the routing key sent back by
// the transport when the button is pressed; when empty it defaults to the
// label at append time.
type Button struct {
	Label string
	Key   string
}

// Btn creates a button whose routing key equals its label.
func Btn(label string) Button {
	return Button{Label: label, Key: label}
}

// BtnData creates a button with an explicit routing key.
func BtnData(label, key string) Button {
	return Button{Label: label, Key: key}
}

// Menu is an ordered grid of buttons with a title. Build it once at
// startup; after validation it is treated as read-only except for
// explicit AddRow calls, which must be re-validated by the caller.
type Menu struct {
	Title string
	rows  [][]Button
}

// New creates an empty menu with the given title.
func New(title string) *Menu {
	return &Menu{Title: title}
}

// AddRow appends a row of buttons. Buttons with an empty Key get their
// Label as the routing key. An empty row is a structure error.
func (m *Menu) AddRow(buttons ...Button) error {
	if len(buttons) == 0 {
		return &StructureError{Menu: m.Title, Err: ErrEmptyRow}
	}
	row := make([]Button, len(buttons))
	for i, b := range buttons {
		if b.Key == "" {
			b.Key = b.Label
		}
		row[i] = b
	}
	m.rows = append(m.rows, row)
	return nil
}

// AddButton appends a single-button row; the label is used as routing key.
func (m *Menu) AddButton(label string) error {
	return m.AddRow(Btn(label))
}

// AddButtonData appends a single-button row with an explicit routing key.
func (m *Menu) AddButtonData(label, key string) error {
	return m.AddRow(BtnData(label, key))
}

// Validate checks the structural invariants: no empty rows, no two
// buttons sharing a label or a routing key. It is pure and idempotent;
// call it before the menu is rendered.
func (m *Menu) Validate() error {
	labels := make(map[string]struct{})
	keys := make(map[string]struct{})
	for _, row := range m.rows {
		if len(row) == 0 {
			return &StructureError{Menu: m.Title, Err: ErrEmptyRow}
		}
		for _, b := range row {
			if _, dup := labels[b.Label]; dup {
				return &StructureError{Menu: m.Title, Detail: b.Label, Err: ErrDuplicateLabel}
			}
			if _, dup := keys[b.Key]; dup {
				return &StructureError{Menu: m.Title, Detail: b.Key, Err: ErrDuplicateKey}
			}
			labels[b.Label] = struct{}{}
			keys[b.Key] = struct{}{}
		}
	}
	return nil
}

// Rows returns a copy of the button grid for rendering. The copy is safe
// to iterate any number of times and cannot mutate the menu.
func (m *Menu) Rows() [][]Button {
	rows := make([][]Button, len(m.rows))
	for i, row := range m.rows {
		rows[i] = make([]Button, len(row))
		copy(rows[i], row)
	}
	return rows
}

// KeyForLabel finds the routing key of the button with the given label.
func (m *Menu) KeyForLabel(label string) (string, bool) {
	for _, row := range m.rows {
		for _, b := range row {
			if b.Label == label {
				return b.Key, true
			}
		}
	}
	return "", false
}

// Len returns the number of rows.
func (m *Menu) Len() int {
	return len(m.rows)
}

func (m *Menu) String() string {
	return fmt.Sprintf("Menu(%q, %d rows)", m.Title, len(m.rows))
}
