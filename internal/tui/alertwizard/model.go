// Package alertwizard is the terminal front end of the alert wizard: one screen
// per registered step, a step indicator and a button bar, all driven by a
// wizard.Controller.
package alertwizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/mark3labs/alertr/internal/logger"
	"github.com/mark3labs/alertr/internal/preview"
	"github.com/mark3labs/alertr/internal/recipients"
	"github.com/mark3labs/alertr/internal/tui/theme"
	"github.com/mark3labs/alertr/internal/wizard"
)

// ErrCancelled is returned by Run when the user leaves without sending.
var ErrCancelled = errors.New("wizard cancelled by user")

// StepView is a screen of the wizard. A custom wizard.Step may set its Component
// to a StepView to get its own screen.
type StepView interface {
	Update(msg tea.Msg) tea.Cmd
	View() string
	SetSize(width, height int)
	Focus() tea.Cmd
	FocusLast() tea.Cmd
	Blur()
	FocusNext() (bool, tea.Cmd)
	FocusPrev() (bool, tea.Cmd)
	CapturesEnter() bool
	Hints() []string
}

// Options wires the wizard to its collaborators.
type Options struct {
	Controller *wizard.Controller
	Resolver   *recipients.Resolver
	// Cascade loads dependent categories. Optional.
	Cascade *recipients.Cascade
	Sender  wizard.Sender
	Preview preview.Config
	// GlamourStyle is the preview style name. Defaults to "dark".
	GlamourStyle string
	// RawPreview starts the preview on the markdown source.
	RawPreview bool
	// OnRawPreviewChange is called when the user toggles the preview mode.
	OnRawPreviewChange func(raw bool)
	SubmitTimeout      time.Duration
}

// Model is the BubbleTea model of the alert wizard.
type Model struct {
	opts  Options
	ctrl  *wizard.Controller
	views []StepView

	buttons *ButtonBar
	gate    wizard.Gate

	loading map[string]uint64
	pending []recipients.Ticket
	detach  func()
	unwatch func()

	err       string
	sending   bool
	cancelled bool
	result    *wizard.Payload

	width  int
	height int
	log    *logger.Component
}

// New creates the model. Call Close when done if Run is not used.
func New(opts Options) *Model {
	if opts.GlamourStyle == "" {
		opts.GlamourStyle = "dark"
	}
	m := &Model{
		opts:    opts,
		ctrl:    opts.Controller,
		loading: make(map[string]uint64),
		buttons: NewButtonBar(nil),
		width:   80,
		height:  24,
		log:     logger.Named("tui"),
	}

	form := m.ctrl.Form()
	for _, step := range m.ctrl.Registry().Steps() {
		var v StepView
		switch step.ID {
		case wizard.StepIDMessage:
			v = NewMessageStep(m.ctrl)
		case wizard.StepIDRecipients:
			v = NewRecipientsStep(opts.Resolver, form.CategoryOrder(), m.isLoading)
		case wizard.StepIDScheduling:
			v = NewSchedulingStep(m.ctrl)
		case wizard.StepIDPreview:
			ps := NewPreviewStep(m.ctrl, opts.Preview, opts.GlamourStyle)
			ps.SetRaw(opts.RawPreview)
			ps.onToggle = opts.OnRawPreviewChange
			v = ps
		default:
			if sv, ok := step.Component.(StepView); ok {
				v = sv
			} else {
				v = &placeholderStep{label: step.Label}
			}
		}
		m.views = append(m.views, v)
	}

	m.unwatch = m.ctrl.OnChange(func(g wizard.Gate) {
		m.gate = g
		m.refreshButtons()
	})
	if opts.Cascade != nil {
		m.detach = opts.Cascade.Attach(func(t recipients.Ticket) {
			m.loading[t.Key] = t.Generation
			m.pending = append(m.pending, t)
		})
	}

	m.gate = wizard.Gate{
		Index:      m.ctrl.Current(),
		CanAdvance: m.ctrl.CanAdvance(m.ctrl.Current()),
		CanFinish:  m.ctrl.CanFinish(),
	}
	m.refreshButtons()
	m.currentView().Focus()
	return m
}

// Close detaches the model from the controller and cascade.
func (m *Model) Close() {
	if m.unwatch != nil {
		m.unwatch()
		m.unwatch = nil
	}
	if m.detach != nil {
		m.detach()
		m.detach = nil
	}
}

// Run shows the wizard and returns the sent payload. It returns ErrCancelled if
// the user quits without sending.
func Run(opts Options) (wizard.Payload, error) {
	m := New(opts)
	defer m.Close()

	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return wizard.Payload{}, fmt.Errorf("wizard failed: %w", err)
	}
	wm, ok := final.(*Model)
	if !ok {
		return wizard.Payload{}, fmt.Errorf("unexpected model type")
	}
	if wm.result == nil {
		return wizard.Payload{}, ErrCancelled
	}
	return *wm.result, nil
}

// Result returns the sent payload, if any.
func (m *Model) Result() (wizard.Payload, bool) {
	if m.result == nil {
		return wizard.Payload{}, false
	}
	return *m.result, true
}

// Cancelled reports whether the user quit.
func (m *Model) Cancelled() bool {
	return m.cancelled
}

// Err returns the message currently shown to the user.
func (m *Model) Err() string {
	return m.err
}

// Sending reports whether a submission is in flight.
func (m *Model) Sending() bool {
	return m.sending
}

func (m *Model) currentView() StepView {
	return m.views[m.ctrl.Current()]
}

func (m *Model) isLoading(key string) bool {
	_, ok := m.loading[key]
	return ok
}

// Init initializes the wizard model.
func (m *Model) Init() tea.Cmd {
	return m.currentView().Focus()
}

// Update handles messages for the wizard.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	if fetch := m.drainPending(); fetch != nil {
		cmd = tea.Batch(cmd, fetch)
	}
	return m, cmd
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return nil

	case ItemsLoadedMsg:
		return m.handleItemsLoaded(msg)

	case AlertSentMsg:
		return m.completeSend(msg)

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			m.cancelled = true
			return tea.Quit
		}
		if m.sending {
			return nil
		}
		return m.handleKey(msg)
	}

	return m.currentView().Update(msg)
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		return m.back()
	case "ctrl+n":
		return m.advance()
	case "ctrl+s":
		return m.finish()
	case "tab":
		return m.focusNext()
	case "shift+tab":
		return m.focusPrev()
	case "enter":
		if btn, ok := m.buttons.FocusedButton(); ok {
			return m.press(btn.ID)
		}
		if !m.currentView().CapturesEnter() {
			if m.ctrl.IsLast() {
				return m.finish()
			}
			return m.advance()
		}
	}

	if m.buttons.Focused() {
		switch msg.String() {
		case "left":
			m.buttons.FocusPrev()
			if !m.buttons.Focused() {
				m.buttons.FocusFirst()
			}
		case "right":
			m.buttons.FocusNext()
			if !m.buttons.Focused() {
				m.buttons.FocusLast()
			}
		}
		return nil
	}
	return m.currentView().Update(msg)
}

func (m *Model) press(id ButtonID) tea.Cmd {
	switch id {
	case ButtonCancel:
		m.cancelled = true
		return tea.Quit
	case ButtonBack:
		return m.back()
	case ButtonNext:
		return m.advance()
	case ButtonSend:
		return m.finish()
	}
	return nil
}

func (m *Model) back() tea.Cmd {
	if m.ctrl.Current() == 0 {
		m.cancelled = true
		return tea.Quit
	}
	m.currentView().Blur()
	m.ctrl.Retreat()
	return m.enterStep()
}

func (m *Model) advance() tea.Cmd {
	if err := m.ctrl.Advance(); err != nil {
		m.err = wizard.UserMessage(err)
		return nil
	}
	m.views[m.ctrl.Current()-1].Blur()
	return m.enterStep()
}

// enterStep focuses the new current step and clears transient state.
func (m *Model) enterStep() tea.Cmd {
	m.err = ""
	m.buttons.Blur()
	m.refreshButtons()
	m.resize()
	return m.currentView().Focus()
}

func (m *Model) finish() tea.Cmd {
	if !m.ctrl.CanFinish() {
		// A nil sender is never reached when a step blocks.
		_, err := m.ctrl.Finish(context.Background(), nil)
		m.err = wizard.UserMessage(err)
		return nil
	}
	m.sending = true
	m.err = ""
	m.refreshButtons()

	p := wizard.Assemble(m.ctrl.Form())
	sender, timeout := m.opts.Sender, m.opts.SubmitTimeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return AlertSentMsg{Payload: p, Err: sender.SendAlert(ctx, p)}
	}
}

// completeSend records the outcome of a send on the controller. Input is locked
// while sending, so the form still matches the payload that went out.
func (m *Model) completeSend(msg AlertSentMsg) tea.Cmd {
	m.sending = false
	replay := wizard.SenderFunc(func(context.Context, wizard.Payload) error { return msg.Err })
	p, err := m.ctrl.Finish(context.Background(), replay)
	if err != nil {
		m.err = wizard.UserMessage(err)
		m.refreshButtons()
		return nil
	}
	m.result = &p
	return tea.Quit
}

func (m *Model) focusNext() tea.Cmd {
	if m.buttons.Focused() {
		if m.buttons.FocusNext() {
			return nil
		}
		return m.currentView().Focus()
	}
	moved, cmd := m.currentView().FocusNext()
	if moved {
		return cmd
	}
	if !m.buttons.FocusFirst() {
		return m.currentView().Focus()
	}
	return cmd
}

func (m *Model) focusPrev() tea.Cmd {
	if m.buttons.Focused() {
		if m.buttons.FocusPrev() {
			return nil
		}
		return m.currentView().FocusLast()
	}
	moved, cmd := m.currentView().FocusPrev()
	if moved {
		return cmd
	}
	if !m.buttons.FocusLast() {
		return m.currentView().FocusLast()
	}
	return cmd
}

func (m *Model) handleItemsLoaded(msg ItemsLoadedMsg) tea.Cmd {
	current := false
	if gen, ok := m.loading[msg.Ticket.Key]; ok && gen == msg.Ticket.Generation {
		delete(m.loading, msg.Ticket.Key)
		current = true
	}
	if msg.Err != nil {
		if !current {
			m.log.Debug("ignoring failed stale load: key=%s gen=%d: %v", msg.Ticket.Key, msg.Ticket.Generation, msg.Err)
			return nil
		}
		m.err = fmt.Sprintf("Falha ao carregar destinatários: %v", msg.Err)
		return nil
	}
	if err := m.opts.Cascade.Apply(msg.Ticket, msg.Items); err != nil {
		if !errors.Is(err, recipients.ErrStaleLoad) {
			m.log.Warn("apply failed: %v", err)
		}
		return nil
	}
	m.refreshButtons()
	return nil
}

// drainPending turns the tickets queued by the cascade into fetch commands.
func (m *Model) drainPending() tea.Cmd {
	if len(m.pending) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(m.pending))
	for _, t := range m.pending {
		cmds = append(cmds, m.fetch(t))
	}
	m.pending = m.pending[:0]
	return tea.Batch(cmds...)
}

func (m *Model) fetch(t recipients.Ticket) tea.Cmd {
	cascade := m.opts.Cascade
	return func() tea.Msg {
		items, err := cascade.Fetch(context.Background(), t)
		return ItemsLoadedMsg{Ticket: t, Items: items, Err: err}
	}
}

func (m *Model) refreshButtons() {
	first := m.ctrl.Current() == 0
	last := m.ctrl.IsLast()
	forward := m.gate.CanAdvance
	if last {
		forward = m.gate.CanFinish && !m.sending
	}
	m.buttons.SetButtons(navigationButtons(first, last, forward))
}

func (m *Model) contentSize() (int, int) {
	return max(40, min(100, m.width-10)-6), max(10, m.height-14)
}

func (m *Model) resize() {
	w, h := m.contentSize()
	m.buttons.SetWidth(w)
	m.currentView().SetSize(w, h)
}

// View renders the wizard UI.
func (m *Model) View() tea.View {
	var view tea.View
	view.AltScreen = true

	content := m.renderModal()

	canvas := uv.NewScreenBuffer(m.width, m.height)
	uv.NewStyledString(content).Draw(canvas, uv.Rectangle{
		Min: uv.Position{X: 0, Y: 0},
		Max: uv.Position{X: m.width, Y: m.height},
	})

	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}

// renderModal wraps the current step in the modal with indicator, errors and buttons.
func (m *Model) renderModal() string {
	st := theme.Current().S()
	step := m.ctrl.CurrentStep()

	var sections []string
	title := fmt.Sprintf("Novo alerta - Etapa %d de %d: %s", m.ctrl.Current()+1, m.ctrl.Registry().Len(), step.Label)
	sections = append(sections, st.Title.Render(title))
	sections = append(sections, m.renderIndicator())
	sections = append(sections, "")
	sections = append(sections, m.currentView().View())
	sections = append(sections, "")

	switch {
	case m.sending:
		sections = append(sections, st.Muted.Render("Enviando..."))
	case m.err != "":
		sections = append(sections, st.Error.Render(m.err))
	}

	sections = append(sections, m.buttons.Render())
	sections = append(sections, renderHintBar(m.currentView().Hints()...))

	w, _ := m.contentSize()
	modal := st.PanelFocused.Width(w + 6).Render(strings.Join(sections, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}

// renderIndicator draws one marker per step. Completed markers fade from the
// secondary to the primary color as the wizard progresses.
func (m *Model) renderIndicator() string {
	st := theme.Current().S()
	t := theme.Current()
	states := m.ctrl.StepStates()
	steps := m.ctrl.Registry().Steps()

	parts := make([]string, len(steps))
	for i, s := range steps {
		label := fmt.Sprintf("%d %s", i+1, s.Label)
		switch states[i] {
		case wizard.StateCompleted:
			pos := 0.0
			if len(steps) > 1 {
				pos = float64(i) / float64(len(steps)-1)
			}
			c := theme.InterpolateColor(t.Secondary, t.Primary, pos)
			parts[i] = st.StepCompleted.Foreground(lipgloss.Color(c)).Render("✓ " + label)
		case wizard.StateCurrent:
			parts[i] = st.StepCurrent.Render("● " + label)
		default:
			parts[i] = st.StepPending.Render("○ " + label)
		}
	}
	return strings.Join(parts, st.Muted.Render("  ›  "))
}

// placeholderStep is the screen of a custom step without its own view.
type placeholderStep struct {
	label string
}

func (p *placeholderStep) Update(tea.Msg) tea.Cmd { return nil }
func (p *placeholderStep) SetSize(int, int) {}
func (p *placeholderStep) Focus() tea.Cmd { return nil }
func (p *placeholderStep) FocusLast() tea.Cmd { return nil }
func (p *placeholderStep) Blur() {}
func (p *placeholderStep) FocusNext() (bool, tea.Cmd) { return false, nil }
func (p *placeholderStep) FocusPrev() (bool, tea.Cmd) { return false, nil }
func (p *placeholderStep) CapturesEnter() bool { return false }
func (p *placeholderStep) Hints() []string { return []string{"ctrl+n", "avançar", "esc", "voltar"} }
func (p *placeholderStep) View() string {
	return theme.Current().S().Muted.Render(p.label)
}
