// internal/tui/form.go
//
// The farm submission form. It follows The Elm Architecture like every
// bubbletea program:
//
// 1. Model: the form fields and submission state
// 2. Update: key presses move focus, edit fields or submit
// 3. View: the form, a live frame-list preview and the outcome
//
// The caller owns the Form and reads the outcome after the program exits.

package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kingrea/framecast/internal/deadline"
	"github.com/kingrea/framecast/internal/submission"
)

// SubmitFunc sends a completed form to the farm.
type SubmitFunc func(req submission.Request) (submission.Result, error)

// PreviewFunc renders the Frames value a request would produce.
type PreviewFunc func(req submission.Request) (string, error)

// field indexes the focusable rows of the form.
type field int

const (
	fieldName field = iota
	fieldPriority
	fieldRange
	fieldTaskSize
	fieldMode
	fieldSmart
	fieldCount
)

var inputLabels = []string{"Submission Name", "Priority", "Frame Range", "Frames per Task"}

const previewLimit = 120

type submitFinishedMsg struct {
	result submission.Result
	err    error
}

// Form is the submission dialog model.
type Form struct {
	inputs  []textinput.Model
	focus   field
	mode    int
	smart   bool
	submit  SubmitFunc
	preview PreviewFunc

	submitting bool
	done       bool
	cancelled  bool
	result     submission.Result
	err        error
	formErr    string
	width      int
}

// NewForm builds a form pre-filled from defaults.
func NewForm(defaults submission.Request, submit SubmitFunc, preview PreviewFunc) *Form {
	values := []string{
		defaults.Name,
		strconv.Itoa(defaults.Priority),
		defaults.FrameRange,
		strconv.Itoa(defaults.TaskSize),
	}
	inputs := make([]textinput.Model, len(values))
	for i, value := range values {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 256
		in.Width = 48
		in.SetValue(value)
		inputs[i] = in
	}
	inputs[fieldName].Focus()

	mode := len(deadline.Modes) - 1
	for i, m := range deadline.Modes {
		if m == defaults.Mode {
			mode = i
		}
	}
	return &Form{
		inputs:  inputs,
		focus:   fieldName,
		mode:    mode,
		smart:   defaults.Smart,
		submit:  submit,
		preview: preview,
	}
}

// Cancelled reports whether the artist closed the form without submitting.
func (f *Form) Cancelled() bool {
	return f.cancelled
}

// Outcome returns the submission result. done is false until a submission
// has finished.
func (f *Form) Outcome() (result submission.Result, done bool, err error) {
	return f.result, f.done, f.err
}

// Request reads the current field values.
func (f *Form) Request() (submission.Request, error) {
	priority, err := strconv.Atoi(strings.TrimSpace(f.inputs[fieldPriority].Value()))
	if err != nil {
		return submission.Request{}, fmt.Errorf("priority must be a number")
	}
	taskSize, err := strconv.Atoi(strings.TrimSpace(f.inputs[fieldTaskSize].Value()))
	if err != nil {
		return submission.Request{}, fmt.Errorf("frames per task must be a number")
	}
	return submission.Request{
		Name:       strings.TrimSpace(f.inputs[fieldName].Value()),
		Priority:   priority,
		FrameRange: strings.TrimSpace(f.inputs[fieldRange].Value()),
		TaskSize:   taskSize,
		Mode:       deadline.Modes[f.mode],
		Smart:      f.smart,
	}, nil
}

// Init is called once when the program starts.
func (f *Form) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key presses and submission results.
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		f.width = msg.Width
		return f, nil

	case submitFinishedMsg:
		f.submitting = false
		f.done = true
		f.result = msg.result
		f.err = msg.err
		return f, tea.Quit

	case tea.KeyMsg:
		if f.submitting {
			return f, nil
		}
		switch msg.String() {
		case "ctrl+c", "esc":
			f.cancelled = true
			return f, tea.Quit
		case "tab", "down":
			return f, f.setFocus((f.focus + 1) % fieldCount)
		case "shift+tab", "up":
			return f, f.setFocus((f.focus + fieldCount - 1) % fieldCount)
		case "enter":
			return f, f.startSubmit()
		case "left", "right", " ", "space":
			if f.focus == fieldMode {
				f.cycleMode(msg.String() == "left")
				return f, nil
			}
			if f.focus == fieldSmart {
				f.smart = !f.smart
				return f, nil
			}
		}
	}

	if f.focus < field(len(f.inputs)) {
		var cmd tea.Cmd
		f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
		f.formErr = ""
		return f, cmd
	}
	return f, nil
}

func (f *Form) setFocus(next field) tea.Cmd {
	f.focus = next
	var cmd tea.Cmd
	for i := range f.inputs {
		if field(i) == next {
			cmd = f.inputs[i].Focus()
			continue
		}
		f.inputs[i].Blur()
	}
	return cmd
}

func (f *Form) cycleMode(back bool) {
	n := len(deadline.Modes)
	if back {
		f.mode = (f.mode + n - 1) % n
		return
	}
	f.mode = (f.mode + 1) % n
}

func (f *Form) startSubmit() tea.Cmd {
	req, err := f.Request()
	if err != nil {
		f.formErr = err.Error()
		return nil
	}
	if f.preview != nil {
		if _, err := f.preview(req); err != nil {
			f.formErr = err.Error()
			return nil
		}
	}
	if f.submit == nil {
		f.formErr = "submission is not available"
		return nil
	}
	f.submitting = true
	submit := f.submit
	return func() tea.Msg {
		result, err := submit(req)
		return submitFinishedMsg{result: result, err: err}
	}
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B")).MarginBottom(1)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	focusStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7BD88F"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")).MarginTop(1)
)

// View renders the form.
func (f *Form) View() string {
	var rows []string
	for i, label := range inputLabels {
		rows = append(rows, f.label(field(i), label), f.inputs[i].View())
	}

	var modes []string
	for i, m := range deadline.Modes {
		name := string(m)
		if i == f.mode {
			name = "[" + name + "]"
		}
		modes = append(modes, name)
	}
	rows = append(rows, f.label(fieldMode, "Mode"), strings.Join(modes, "  "))

	smart := "off"
	if f.smart {
		smart = "on"
	}
	rows = append(rows, f.label(fieldSmart, "Smart Frame Order"), smart)

	rows = append(rows, "", labelStyle.Render("Frames"), f.previewLine())

	switch {
	case f.submitting:
		rows = append(rows, "", labelStyle.Render("Submitting to Deadline..."))
	case f.done && f.err != nil:
		rows = append(rows, "", errStyle.Render("Submission failed: "+f.err.Error()))
	case f.done:
		rows = append(rows, "", okStyle.Render("Job successfully submitted to Deadline "+f.result.JobID))
	case f.formErr != "":
		rows = append(rows, "", errStyle.Render(f.formErr))
	}

	box := boxStyle
	if f.width > 8 {
		box = box.Width(f.width - 4)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("⬡ SUBMIT TO FARM"),
		box.Render(strings.Join(rows, "\n")),
		hintStyle.Render("tab/shift+tab move · ←/→ change · enter submit · esc cancel"),
	)
}

func (f *Form) label(fl field, text string) string {
	if f.focus == fl {
		return focusStyle.Render("› " + text)
	}
	return labelStyle.Render("  " + text)
}

func (f *Form) previewLine() string {
	if f.preview == nil {
		return ""
	}
	req, err := f.Request()
	if err != nil {
		return errStyle.Render(err.Error())
	}
	list, err := f.preview(req)
	if err != nil {
		return errStyle.Render(err.Error())
	}
	if len(list) > previewLimit {
		list = list[:previewLimit] + "…"
	}
	return list
}
