package view

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"

	"github.com/mamadbah2/frdg/internal/domain/models"
	"github.com/mamadbah2/frdg/internal/query"
)

const helpText = `Commands:
  form                     open or close the new-food form
  name <text>              set the draft name
  date <YYYY-MM-DD|clear>  set or clear the draft best-before date
  submit                   add the drafted food
  add <YYYY-MM-DD> <name>  add a food in one step
  delete <id>              delete a food
  refresh                  reload the list
  help                     show this help
  quit                     leave
`

// Page is the interactive screen: a title, the optional new-food form, the
// food list and a banner for failed actions.
type Page struct {
	inv  Inventory
	out  *syncWriter
	opts Options
	list *ListView

	form   *FoodForm
	banner string
}

// NewPage builds a page writing to out.
func NewPage(inv Inventory, out io.Writer, opts Options) *Page {
	sw := newSyncWriter(out)
	opts = opts.withDefaults()
	return &Page{
		inv:  inv,
		out:  sw,
		opts: opts,
		list: NewListView(inv, sw, opts),
	}
}

// List exposes the page's list view.
func (p *Page) List() *ListView {
	return p.list
}

// FormOpen reports whether the new-food form is shown.
func (p *Page) FormOpen() bool {
	return p.form != nil
}

// Form returns the open form, or nil.
func (p *Page) Form() *FoodForm {
	return p.form
}

// Banner returns the last failure message shown to the user.
func (p *Page) Banner() string {
	return p.banner
}

// Mount renders the title and mounts the list.
func (p *Page) Mount(ctx context.Context) error {
	p.out.printf("%s\n\n", p.opts.Styler.Bold(Title))
	return p.list.Mount(ctx)
}

// Unmount releases the list subscription.
func (p *Page) Unmount() {
	p.list.Unmount()
}

// ToggleForm opens a fresh form or closes the open one, dropping its draft.
func (p *Page) ToggleForm() {
	if p.form != nil {
		p.form = nil
		p.out.printf("Form closed.\n")
		return
	}

	p.form = NewFoodForm(p.inv, models.DateOf(p.opts.Now()))
	p.form.OnSuccess = func() { p.form = nil }
	p.out.printf("%s\n", p.form.Summary())
}

// Submit submits the open form. Failures are shown as a banner and returned.
func (p *Page) Submit(ctx context.Context) error {
	if p.form == nil {
		return p.fail("Open the form first with `form`.", ErrIncompleteForm)
	}

	if err := p.form.Submit(ctx); err != nil {
		if errors.Is(err, ErrIncompleteForm) {
			return p.fail("A food needs a name and a best-before date.", err)
		}
		return p.fail("Could not save food: "+err.Error(), err)
	}

	p.banner = ""
	p.inv.Cache().Wait()
	return nil
}

// Delete removes a food; there is no confirmation step.
func (p *Page) Delete(ctx context.Context, id int64) error {
	if err := p.inv.Delete(ctx, id); err != nil {
		return p.fail("Could not delete food: "+err.Error(), err)
	}

	p.banner = ""
	p.inv.Cache().Wait()
	return nil
}

// Refresh invalidates the cached list so the mounted list reloads.
func (p *Page) Refresh() {
	p.inv.Cache().Invalidate(query.KeyFoodsList)
	p.inv.Cache().Wait()
}

// Handle runs one shell command and reports whether the user asked to quit.
func (p *Page) Handle(ctx context.Context, cmd models.Command) bool {
	switch cmd.Type {
	case models.CommandForm:
		p.ToggleForm()
	case models.CommandName:
		if p.form == nil {
			_ = p.fail("Open the form first with `form`.", nil)
			return false
		}
		p.form.SetName(cmd.Rest())
		p.out.printf("%s\n", p.form.Summary())
	case models.CommandDate:
		p.handleDate(cmd)
	case models.CommandSubmit:
		_ = p.Submit(ctx)
	case models.CommandAdd:
		p.handleAdd(ctx, cmd)
	case models.CommandDelete:
		if len(cmd.Args) != 1 {
			_ = p.fail("Usage: delete <id>", nil)
			return false
		}
		id, err := strconv.ParseInt(cmd.Args[0], 10, 64)
		if err != nil {
			_ = p.fail("Food ids are whole numbers.", err)
			return false
		}
		_ = p.Delete(ctx, id)
	case models.CommandRefresh:
		p.Refresh()
	case models.CommandHelp:
		p.out.printf("%s", helpText)
	case models.CommandQuit:
		return true
	default:
		if cmd.Raw != "" {
			_ = p.fail(fmt.Sprintf("Unknown command %q, try `help`.", cmd.Raw), nil)
		}
	}
	return false
}

// Run mounts the page and reads commands from in until quit or EOF.
func (p *Page) Run(ctx context.Context, in io.Reader) error {
	_ = p.Mount(ctx)
	defer p.Unmount()

	scanner := bufio.NewScanner(in)
	for {
		p.out.printf("> ")
		if !scanner.Scan() {
			p.out.printf("\n")
			return scanner.Err()
		}
		if p.Handle(ctx, models.ParseCommand(scanner.Text())) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func (p *Page) handleDate(cmd models.Command) {
	if p.form == nil {
		_ = p.fail("Open the form first with `form`.", nil)
		return
	}
	if len(cmd.Args) != 1 {
		_ = p.fail("Usage: date <YYYY-MM-DD|clear>", nil)
		return
	}
	if cmd.Args[0] == "clear" {
		p.form.SetDate(nil)
	} else {
		d, err := models.ParseDate(cmd.Args[0])
		if err != nil {
			_ = p.fail("Dates look like 2024-01-31.", err)
			return
		}
		p.form.SetDate(&d)
	}
	p.out.printf("%s\n", p.form.Summary())
}

func (p *Page) handleAdd(ctx context.Context, cmd models.Command) {
	if len(cmd.Args) < 2 {
		_ = p.fail("Usage: add <YYYY-MM-DD> <name>", nil)
		return
	}
	d, err := models.ParseDate(cmd.Args[0])
	if err != nil {
		_ = p.fail("Dates look like 2024-01-31.", err)
		return
	}

	if p.form == nil {
		p.ToggleForm()
	}
	p.form.SetDate(&d)
	p.form.SetName(models.Command{Args: cmd.Args[1:]}.Rest())
	_ = p.Submit(ctx)
}

func (p *Page) fail(message string, err error) error {
	p.banner = message
	p.out.printf("! %s\n", message)
	if err != nil {
		p.opts.Logger.Debug("page action failed", zap.String("banner", message), zap.Error(err))
	}
	return err
}
