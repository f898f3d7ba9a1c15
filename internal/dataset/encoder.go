package dataset

import (
	"fmt"
	"math"
	"strings"
)

var ErrUnknownCode = fmt.Errorf("unknown class code")

// Encoder maps categorical labels to float codes in first-seen order.
type Encoder struct {
	codes   map[string]float64
	classes []string
}

func NewEncoder() *Encoder {
	return &Encoder{codes: map[string]float64{}}
}

// Encode returns the code of class, assigning the next one if unseen.
func (e *Encoder) Encode(class string) float64 {
	class = strings.TrimSpace(class)
	if code, ok := e.codes[class]; ok {
		return code
	}
	code := float64(len(e.classes))
	e.codes[class] = code
	e.classes = append(e.classes, class)
	return code
}

func (e *Encoder) Decode(code float64) (string, error) {
	i := int(code)
	if code != math.Trunc(code) || i < 0 || i >= len(e.classes) {
		return "", fmt.Errorf("%v: %w", code, ErrUnknownCode)
	}
	return e.classes[i], nil
}

func (e *Encoder) Classes() []string {
	return append([]string(nil), e.classes...)
}

func (e *Encoder) Len() int {
	return len(e.classes)
}
