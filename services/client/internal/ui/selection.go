package ui

// Option is one entry of a selection control.
type Option struct {
	Value string
	Label string
}

// Selection models a drop-down list.
type Selection struct {
	options  []Option
	selected string
}

// Append adds one option whose value and label are both v.
func (s *Selection) Append(v string) {
	s.options = append(s.options, Option{Value: v, Label: v})
}

// Clear drops every option and the current choice.
func (s *Selection) Clear() {
	s.options = nil
	s.selected = ""
}

// Replace drops every option, inserts a placeholder with an empty value, then one
// option per value.
func (s *Selection) Replace(placeholder string, values []string) {
	s.options = make([]Option, 0, len(values)+1)
	s.options = append(s.options, Option{Value: "", Label: placeholder})
	for _, v := range values {
		s.Append(v)
	}
	s.selected = ""
}

// Options returns a copy of the current options.
func (s *Selection) Options() []Option {
	return append([]Option(nil), s.options...)
}

// Values returns the non-placeholder option values.
func (s *Selection) Values() []string {
	out := make([]string, 0, len(s.options))
	for _, o := range s.options {
		if o.Value != "" {
			out = append(out, o.Value)
		}
	}
	return out
}

// Select marks v as the current choice.
func (s *Selection) Select(v string) { s.selected = v }

// Selected returns the current choice.
func (s *Selection) Selected() string { return s.selected }
