package view

import (
	"context"
	"errors"
	"strings"

	"github.com/mamadbah2/frdg/internal/domain/models"
)

// ErrIncompleteForm is returned by Submit when the name or the date is missing.
var ErrIncompleteForm = errors.New("a food needs a name and a best-before date")

// Creator creates foods.
type Creator interface {
	Create(ctx context.Context, food models.NewFood) error
}

// FoodForm holds the draft of a new food. It lives only as long as the form
// is open.
type FoodForm struct {
	creator Creator
	today   models.Date

	name string
	date *models.Date

	// OnSuccess runs after a successful submit, once the draft is reset.
	OnSuccess func()
}

// NewFoodForm opens an empty draft whose date defaults to today.
func NewFoodForm(creator Creator, today models.Date) *FoodForm {
	f := &FoodForm{creator: creator, today: today}
	f.reset()
	return f
}

// Name returns the draft name.
func (f *FoodForm) Name() string {
	return f.name
}

// Date returns the draft date, or nil when cleared.
func (f *FoodForm) Date() *models.Date {
	if f.date == nil {
		return nil
	}
	d := *f.date
	return &d
}

// SetName replaces the draft name.
func (f *FoodForm) SetName(name string) {
	f.name = name
}

// SetDate replaces the draft date; nil clears it.
func (f *FoodForm) SetDate(d *models.Date) {
	if d == nil || d.IsZero() {
		f.date = nil
		return
	}
	v := *d
	f.date = &v
}

// Ready reports whether Submit would call the API.
func (f *FoodForm) Ready() bool {
	return strings.TrimSpace(f.name) != "" && f.date != nil
}

// Submit creates the food when the draft is complete. An incomplete draft
// returns ErrIncompleteForm without any API call; a failed create keeps the
// draft so it can be retried.
func (f *FoodForm) Submit(ctx context.Context) error {
	if !f.Ready() {
		return ErrIncompleteForm
	}

	if err := f.creator.Create(ctx, models.NewFood{Name: f.name, BestBeforeDate: *f.date}); err != nil {
		return err
	}

	f.reset()
	if f.OnSuccess != nil {
		f.OnSuccess()
	}
	return nil
}

// Summary describes the draft for display.
func (f *FoodForm) Summary() string {
	name := f.name
	if strings.TrimSpace(name) == "" {
		name = "(empty)"
	}
	date := "(none)"
	if f.date != nil {
		date = f.date.String()
	}
	return "New food: name=" + name + " date=" + date
}

func (f *FoodForm) reset() {
	f.name = ""
	f.date = nil
	if !f.today.IsZero() {
		today := f.today
		f.date = &today
	}
}
