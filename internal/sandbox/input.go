package sandbox

// QuantityInput is the digits-only text box for manual emission.
type QuantityInput struct {
	active bool
	text   string
}

func (q *QuantityInput) Active() bool { return q.active }
func (q *QuantityInput) Text() string { return q.text }

func (q *QuantityInput) SetActive(on bool) { q.active = on }

// Type appends the digits among rs while the box is active.
func (q *QuantityInput) Type(rs ...rune) {
	if !q.active {
		return
	}
	for _, r := range rs {
		if r >= '0' && r <= '9' && len(q.text) < 6 {
			q.text += string(r)
		}
	}
}

func (q *QuantityInput) Backspace() {
	if q.active && len(q.text) > 0 {
		q.text = q.text[:len(q.text)-1]
	}
}

// Take returns the typed text and clears the box. The box stays active.
func (q *QuantityInput) Take() string {
	t := q.text
	q.text = ""
	return t
}

func (q *QuantityInput) Cancel() {
	q.active = false
	q.text = ""
}
