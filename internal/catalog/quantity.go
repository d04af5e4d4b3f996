package catalog

import (
	"strconv"
	"strings"
)

// QuantitySelector holds the quantity chosen on a product page. The value
// never drops below 1.
type QuantitySelector struct {
	value int
}

func NewQuantitySelector() *QuantitySelector {
	return &QuantitySelector{value: 1}
}

func (q *QuantitySelector) Value() int {
	if q.value < 1 {
		return 1
	}
	return q.value
}

func (q *QuantitySelector) Set(n int) {
	if n < 1 {
		n = 1
	}
	q.value = n
}

// SetText applies typed input. Empty text resets to 1; non-numeric text is
// rejected and the value is left unchanged.
func (q *QuantitySelector) SetText(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		q.Set(1)
		return true
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return false
	}
	q.Set(n)
	return true
}

func (q *QuantitySelector) Increment() {
	q.Set(q.Value() + 1)
}

func (q *QuantitySelector) Decrement() {
	q.Set(q.Value() - 1)
}
