package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/h0rv/posdash/internal/domain"
)

// field is one labelled text input of a form.
type field struct {
	key   string
	label string
	input textinput.Model
}

// fieldSet is an ordered group of inputs with one focused at a time and
// per-field error messages.
type fieldSet struct {
	fields []field
	focus  int
	errs   domain.FieldErrors
}

func newField(key, label, placeholder string) field {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = 200
	return field{key: key, label: label, input: ti}
}

func newFieldSet(fields ...field) fieldSet {
	fs := fieldSet{fields: fields}
	if len(fs.fields) > 0 {
		fs.fields[0].input.Focus()
	}
	return fs
}

func (fs *fieldSet) get(key string) string {
	for _, f := range fs.fields {
		if f.key == key {
			return strings.TrimSpace(f.input.Value())
		}
	}
	return ""
}

func (fs *fieldSet) set(key, value string) {
	for i := range fs.fields {
		if fs.fields[i].key == key {
			fs.fields[i].input.SetValue(value)
		}
	}
}

func (fs *fieldSet) mask(key string) {
	for i := range fs.fields {
		if fs.fields[i].key == key {
			fs.fields[i].input.EchoMode = textinput.EchoPassword
			fs.fields[i].input.EchoCharacter = '•'
		}
	}
}

func (fs *fieldSet) focused() string {
	if fs.focus < 0 || fs.focus >= len(fs.fields) {
		return ""
	}
	return fs.fields[fs.focus].key
}

// move shifts focus by delta, wrapping around.
func (fs *fieldSet) move(delta int) tea.Cmd {
	if len(fs.fields) == 0 {
		return nil
	}
	fs.fields[fs.focus].input.Blur()
	fs.focus = (fs.focus + delta + len(fs.fields)) % len(fs.fields)
	return fs.fields[fs.focus].input.Focus()
}

func (fs *fieldSet) blur() {
	for i := range fs.fields {
		fs.fields[i].input.Blur()
	}
}

// update forwards msg to the focused input.
func (fs *fieldSet) update(msg tea.Msg) tea.Cmd {
	if fs.focus < 0 || fs.focus >= len(fs.fields) {
		return nil
	}
	var cmd tea.Cmd
	fs.fields[fs.focus].input, cmd = fs.fields[fs.focus].input.Update(msg)
	return cmd
}

// setErrors shows the messages of fe next to their fields.
func (fs *fieldSet) setErrors(fe domain.FieldErrors) { fs.errs = fe }

func (fs *fieldSet) clearErrors() { fs.errs = nil }

func (fs fieldSet) view(width int) string {
	inputWidth := width - 20
	if inputWidth < 20 {
		inputWidth = 20
	}
	var b strings.Builder
	for i, f := range fs.fields {
		f.input.Width = inputWidth
		label := labelStyle.Render(fit(f.label, 16, false))
		if i == fs.focus {
			label = SelectedItemStyle.Render(fit(f.label, 16, false))
		}
		b.WriteString(label + " " + f.input.View() + "\n")
		if msg, ok := fs.errs[f.key]; ok {
			b.WriteString(strings.Repeat(" ", 17) + ErrorStyle.Render(msg) + "\n")
		}
	}
	return b.String()
}
