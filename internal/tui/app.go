package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	grpcstatus "google.golang.org/grpc/status"

	agentv1 "github.com/ebosoh/sales-agent/internal/api/agentv1"
	"github.com/ebosoh/sales-agent/internal/tui/client"
	"github.com/ebosoh/sales-agent/internal/tui/keys"
	"github.com/ebosoh/sales-agent/internal/tui/model"
	"github.com/ebosoh/sales-agent/internal/tui/ui"
	"github.com/ebosoh/sales-agent/internal/tui/views"
)

const (
	pageReplies = "replies"
	pagePopular = "popular"
	pageMatches = "matches"
	pageLogin   = "login"
)

// App is the dashboard: status log on top, one query view below.
type App struct {
	app       *tview.Application
	pages     *tview.Pages
	theme     *ui.Theme
	vm        *model.ViewModel
	grpc      *client.Client
	registry  *keys.Registry
	statusBar *views.StatusBar
	menu      *ui.Menu
	prompt    *tview.InputField
	eventLog  *views.EventLog
	replies   *views.ResultTable
	popular   *views.ResultTable
	matches   *views.ResultTable
	login     *views.LoginView
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewApp creates the TUI application.
func NewApp(c *client.Client, profileName string) *App {
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()

	a := &App{
		app:       tview.NewApplication(),
		pages:     tview.NewPages(),
		theme:     theme,
		vm:        model.NewViewModel(c.Agent),
		grpc:      c,
		registry:  keys.NewRegistry(),
		statusBar: views.NewStatusBar(theme),
		menu:      ui.NewMenu(theme),
		prompt:    tview.NewInputField().SetLabel(":"),
		eventLog:  views.NewEventLog(theme),
		replies:   views.NewResultTable(theme, "Replies to you", "No replies yet.", views.ReplyColumns...),
		popular:   views.NewResultTable(theme, "Recent products", "No messages scraped yet.", views.PopularColumns...),
		matches:   views.NewResultTable(theme, "Catalog matches", "Press m to match buying requests against the catalog.", views.MatchColumns...),
		login:     views.NewLoginView(theme),
		ctx:       ctx,
		cancel:    cancel,
	}

	a.statusBar.SetProfile(profileName)
	a.setupBindings()
	a.setupLayout()

	return a
}

func (a *App) setupBindings() {
	a.registry.AddGlobal(&keys.Action{
		Rune: '1', Key: tcell.KeyRune, Label: "1", Description: "Replies", Visible: true,
		Handler: func() { a.show(pageReplies) },
	})
	a.registry.AddGlobal(&keys.Action{
		Rune: '2', Key: tcell.KeyRune, Label: "2", Description: "Popular", Visible: true,
		Handler: func() { a.show(pagePopular) },
	})
	a.registry.AddGlobal(&keys.Action{
		Rune: '3', Key: tcell.KeyRune, Label: "3", Description: "Matches", Visible: true,
		Handler: func() { a.show(pageMatches) },
	})
	a.registry.AddGlobal(&keys.Action{
		Rune: 'r', Key: tcell.KeyRune, Label: "r", Description: "Refresh", Visible: true,
		Handler: func() { go a.refresh() },
	})
	a.registry.AddGlobal(&keys.Action{
		Rune: ':', Key: tcell.KeyRune, Label: ":", Description: "Command", Visible: true,
		Handler: func() { a.app.SetFocus(a.prompt) },
	})
	a.registry.AddGlobal(&keys.Action{
		Rune: 'q', Key: tcell.KeyRune, Label: "q", Description: "Quit", Visible: true,
		Handler: func() { a.Stop() },
	})
	a.registry.AddView(pageMatches, &keys.Action{
		Rune: 'm', Key: tcell.KeyRune, Label: "m", Description: "Run matching", Visible: true,
		Handler: func() { go a.runMatches() },
	})
}

func (a *App) setupLayout() {
	a.pages.AddPage(pageReplies, a.replies, true, true)
	a.pages.AddPage(pagePopular, a.popular, true, false)
	a.pages.AddPage(pageMatches, a.matches, true, false)
	a.pages.AddPage(pageLogin, a.login, true, false)

	a.prompt.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			line := a.prompt.GetText()
			go a.runCommand(ParseCommand(line))
		}
		a.prompt.SetText("")
		a.focusPage()
	})

	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.eventLog, 8, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.menu, 1, 0, false).
		AddItem(a.prompt, 1, 0, false).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(root, true)
	a.menu.Update(a.registry.Hints(pageReplies))

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if _, ok := a.app.GetFocus().(*tview.InputField); ok {
			return event
		}
		current, _ := a.pages.GetFrontPage()
		if event.Key() == tcell.KeyEscape && current == pageLogin {
			a.show(pageReplies)
			return nil
		}
		if a.registry.HandleEvent(current, event) {
			return nil
		}
		return event
	})
}

func (a *App) show(page string) {
	a.pages.SwitchToPage(page)
	a.menu.Update(a.registry.Hints(page))
	a.focusPage()
}

func (a *App) focusPage() {
	_, prim := a.pages.GetFrontPage()
	if prim != nil {
		a.app.SetFocus(prim)
	}
}

// Run starts the TUI application.
func (a *App) Run() error {
	go func() {
		a.refresh()
		go a.watch()
		a.refreshLoop()
	}()
	return a.app.Run()
}

// refresh reloads status, replies and popular. Matches only run on demand.
func (a *App) refresh() {
	if err := a.vm.LoadStatus(a.ctx); err != nil {
		a.vm.Flash.SetError(describe(err), 5*time.Second)
	}
	if err := a.vm.LoadReplies(a.ctx); err != nil {
		a.vm.Flash.SetError(describe(err), 5*time.Second)
	}
	if err := a.vm.LoadPopular(a.ctx); err != nil {
		a.vm.Flash.SetError(describe(err), 5*time.Second)
	}
	a.app.QueueUpdateDraw(func() {
		a.statusBar.SetStatus(a.vm.Status())
		a.replies.Update(views.ReplyRows(a.theme, a.vm.Replies()))
		a.popular.Update(views.PopularRows(a.vm.Popular()))
		a.statusBar.SetFlash(a.vm.Flash.Get())
	})
}

func (a *App) refreshLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.refresh()
		case <-a.ctx.Done():
			return
		}
	}
}

func (a *App) runMatches() {
	a.vm.Flash.Set("Matching buying requests...", time.Minute)
	a.app.QueueUpdateDraw(func() { a.statusBar.SetFlash(a.vm.Flash.Get()) })

	if err := a.vm.LoadMatches(a.ctx); err != nil {
		a.vm.Flash.SetError(describe(err), 10*time.Second)
	} else {
		a.vm.Flash.Set(fmt.Sprintf("%d matches", len(a.vm.Matches())), 5*time.Second)
	}
	a.app.QueueUpdateDraw(func() {
		a.matches.Update(views.MatchRows(a.vm.Matches()))
		a.statusBar.SetFlash(a.vm.Flash.Get())
	})
}

// watch follows the daemon's status stream until the app stops.
func (a *App) watch() {
	stream, err := a.grpc.Agent.WatchStatus(a.ctx, &agentv1.WatchStatusRequest{})
	if err != nil {
		a.vm.Flash.SetError(fmt.Errorf("status stream: %w", err), 10*time.Second)
		return
	}
	for {
		evt, err := stream.Recv()
		if errors.Is(err, io.EOF) || a.ctx.Err() != nil {
			return
		}
		if err != nil {
			a.vm.Flash.SetError(fmt.Errorf("status stream: %w", err), 10*time.Second)
			return
		}
		a.vm.AddEvent(evt)
		a.app.QueueUpdateDraw(func() {
			a.eventLog.Update(a.vm.Events())
			a.onEvent(evt)
		})
	}
}

// onEvent runs on the UI goroutine.
func (a *App) onEvent(evt *agentv1.StatusEvent) {
	current, _ := a.pages.GetFrontPage()
	switch evt.Kind {
	case "monitor.login":
		a.login.ShowQR(evt.Text)
		a.show(pageLogin)
	case "monitor.state":
		if current == pageLogin && evt.State != "STARTING" {
			a.show(pageReplies)
		}
		go a.refresh()
	case "message.stored", "fraud.detected":
		go a.refresh()
	}
}

func (a *App) runCommand(cmd Command) {
	var (
		msg string
		err error
	)
	agent := a.grpc.Agent
	switch cmd.Name {
	case "":
		return
	case "start":
		_, err = agent.StartMonitor(a.ctx, &agentv1.Empty{})
		msg = "monitor started"
	case "stop":
		_, err = agent.StopMonitor(a.ctx, &agentv1.Empty{})
		msg = "monitor stopping"
	case "check":
		var resp *agentv1.CheckNumberResponse
		resp, err = agent.CheckNumber(a.ctx, &agentv1.CheckNumberRequest{PhoneNumber: cmd.Args})
		if err == nil {
			msg = checkSummary(resp)
		}
	case "report":
		number, reason := cmd.Split()
		var resp *agentv1.ReportFraudResponse
		resp, err = agent.ReportFraud(a.ctx, &agentv1.ReportFraudRequest{PhoneNumber: number, Reason: reason})
		if err == nil {
			msg = "reported " + number
			if !resp.Recorded {
				msg = number + " was already reported"
			}
		}
	case "share":
		_, err = agent.ShareFraud(a.ctx, &agentv1.ShareFraudRequest{PhoneNumber: cmd.Args})
		msg = "shared " + cmd.Args + " with the community"
	case "group":
		_, err = agent.AddGroup(a.ctx, &agentv1.AddGroupRequest{Name: cmd.Args})
		msg = "monitoring " + cmd.Args
	default:
		msg = commandHelp
	}

	if err != nil {
		a.vm.Flash.SetError(describe(err), 10*time.Second)
	} else {
		a.vm.Flash.Set(msg, 5*time.Second)
	}
	a.refresh()
}

func checkSummary(resp *agentv1.CheckNumberResponse) string {
	switch {
	case resp.Flagged && resp.Local != nil:
		return fmt.Sprintf("%s FLAGGED: %s", resp.Number, resp.Local.Reason)
	case resp.Flagged:
		return fmt.Sprintf("%s FLAGGED by the community: %s", resp.Number, resp.Community.Reason)
	case !resp.CommunityChecked:
		return resp.Number + " not in your list (community list unavailable)"
	}
	return resp.Number + " has no reports"
}

// describe strips the gRPC envelope from daemon errors.
func describe(err error) error {
	if st, ok := grpcstatus.FromError(err); ok {
		return errors.New(st.Message())
	}
	return err
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}
