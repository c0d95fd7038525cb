package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goliatone/go-formflow"
	"github.com/goliatone/go-formflow/pkg/csvingest"
	"github.com/goliatone/go-formflow/pkg/form"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/navigation"
	"github.com/goliatone/go-formflow/pkg/prompt"
)

var errQuit = errors.New("quit")

const (
	actionSubmit = "Submit"
	actionClear  = "Clear"
	actionQuit   = "Quit"
	actionBack   = "Go back to the form"
	actionShow   = "Show password"
	actionHide   = "Hide password"
)

// session walks one user through the form and results screens.
type session struct {
	app     *formflow.App
	driver  prompt.Driver
	output  string
	outPath string
	stdout  io.Writer
}

func (s *session) run(ctx context.Context) error {
	if err := s.app.Start(ctx); err != nil {
		return err
	}
	for {
		route, err := s.app.Route(ctx)
		if err != nil {
			return err
		}
		switch route {
		case navigation.RouteResults:
			err = s.resultsStep(ctx)
		default:
			err = s.formStep(ctx)
		}
		if errors.Is(err, errQuit) || errors.Is(err, prompt.ErrAborted) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (s *session) formStep(ctx context.Context) error {
	view, err := s.app.FormView(ctx)
	if err != nil {
		return err
	}

	if pristine(view) {
		for _, field := range view.Fields {
			if err := s.edit(ctx, field, view); err != nil {
				return err
			}
		}
		return nil
	}

	options := make([]string, 0, len(view.Fields)+3)
	for _, field := range view.Fields {
		options = append(options, "Edit "+field.Label)
	}
	options = append(options, actionSubmit, actionClear, actionQuit)

	choice, err := s.driver.Select(ctx, prompt.SelectConfig{
		Message: "What next?",
		Options: options,
	})
	if err != nil {
		return err
	}
	if choice < len(view.Fields) {
		return s.edit(ctx, view.Fields[choice], view)
	}

	switch options[choice] {
	case actionSubmit:
		return s.submit(ctx)
	case actionClear:
		ok, err := s.app.Clear(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return s.driver.Info(ctx, "Kept your answers.")
		}
		return nil
	default:
		ok, err := s.app.CanLeave(ctx)
		if err != nil {
			return err
		}
		if ok {
			return errQuit
		}
		return nil
	}
}

func (s *session) edit(ctx context.Context, field form.FieldView, view form.View) error {
	switch field.Name {
	case model.FieldSubscription:
		tiers := model.SubscriptionTiers()
		options := make([]string, len(tiers))
		current := 0
		for i, tier := range tiers {
			options[i] = string(tier)
			if tier == view.Values.Subscription {
				current = i
			}
		}
		choice, err := s.driver.Select(ctx, prompt.SelectConfig{
			Message:      field.Label,
			Options:      options,
			DefaultIndex: current,
		})
		if err != nil {
			return err
		}
		return s.app.SetField(ctx, field.Name, tiers[choice])
	case model.FieldPassword:
		value, err := s.driver.Password(ctx, prompt.InputConfig{Message: field.Label})
		if err != nil {
			return err
		}
		return s.app.SetField(ctx, field.Name, value)
	case model.FieldCsvFile:
		return s.selectFile(ctx, field)
	default:
		value, err := s.driver.Input(ctx, prompt.InputConfig{
			Message: field.Label,
			Default: textValue(view.Values, field.Name),
		})
		if err != nil {
			return err
		}
		return s.app.SetField(ctx, field.Name, value)
	}
}

func (s *session) selectFile(ctx context.Context, field form.FieldView) error {
	path, err := s.driver.Input(ctx, prompt.InputConfig{
		Message: field.Label + " (path)",
		Help:    "Leave empty to skip.",
	})
	if err != nil {
		return err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	if err := s.app.SelectFile(ctx, csvingest.FileFromPath(path)); err != nil {
		return err
	}
	if err := s.app.WaitIngestion(ctx); err != nil {
		return err
	}
	view, err := s.app.FormView(ctx)
	if err != nil {
		return err
	}
	if view.FileError != "" {
		return s.driver.Info(ctx, view.FileError)
	}
	return s.driver.Info(ctx, fmt.Sprintf("Loaded %d rows from %s.", view.Rows, view.FileName))
}

func (s *session) submit(ctx context.Context) error {
	result, err := s.app.Submit(ctx)
	if err != nil {
		return err
	}
	switch result.Outcome {
	case form.SubmitPending:
		return s.driver.Info(ctx, "Still reading the CSV file, try again in a moment.")
	case form.SubmitInvalid:
		var b strings.Builder
		b.WriteString("Please fix the following errors:")
		for _, msg := range result.Errors {
			b.WriteString("\n  - ")
			b.WriteString(msg)
		}
		return s.driver.Info(ctx, b.String())
	}
	return nil
}

func (s *session) resultsStep(ctx context.Context) error {
	out, _, err := s.app.Render(ctx, s.output)
	if err != nil {
		return err
	}
	if s.outPath != "" {
		if err := os.WriteFile(s.outPath, out, 0o644); err != nil {
			return fmt.Errorf("write results: %w", err)
		}
		if err := s.driver.Info(ctx, "Results written to "+s.outPath); err != nil {
			return err
		}
	} else if _, err := s.stdout.Write(out); err != nil {
		return err
	}

	visible, err := s.app.PasswordVisible(ctx)
	if err != nil {
		return err
	}
	toggle := actionShow
	if visible {
		toggle = actionHide
	}
	options := []string{toggle, actionBack, actionQuit}
	choice, err := s.driver.Select(ctx, prompt.SelectConfig{
		Message: "What next?",
		Options: options,
	})
	if err != nil {
		return err
	}

	switch options[choice] {
	case actionShow, actionHide:
		_, err = s.app.TogglePassword(ctx)
		return err
	case actionBack:
		_, err = s.app.GoBack(ctx)
		return err
	default:
		return errQuit
	}
}

func pristine(view form.View) bool {
	for _, field := range view.Fields {
		if field.Dirty {
			return false
		}
	}
	return true
}

func textValue(values model.FormValues, field model.FieldName) string {
	switch field {
	case model.FieldFirstName:
		return values.FirstName
	case model.FieldLastName:
		return values.LastName
	case model.FieldEmail:
		return values.Email
	}
	return ""
}
