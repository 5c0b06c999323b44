package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/ports"
	"github.com/aretw0/stitch/pkg/sanitize"
)

// FillFunc collects the values of one step from the user.
type FillFunc func(ctx context.Context, view *domain.StepView) (domain.Values, Action, error)

// Session walks a user through a wizard in the terminal.
type Session struct {
	Engine ports.WizardEngine
	Out    io.Writer
	Render func(string) (string, error)
	Fill   FillFunc

	// KeepState skips Finalize once the last step is accepted.
	KeepState bool
}

// NewSession creates a terminal session with glamour output and huh forms.
// Forms fall back to accessible (line based) prompts when not attached to a terminal.
func NewSession(engine ports.WizardEngine, in io.Reader, out io.Writer) *Session {
	accessible := !IsInteractive()
	return &Session{
		Engine: engine,
		Out:    out,
		Render: NewRenderer(),
		Fill: func(ctx context.Context, view *domain.StepView) (domain.Values, Action, error) {
			form, answers := BuildForm(view)
			form = form.WithInput(in).WithOutput(out).WithAccessible(accessible)
			if err := form.RunWithContext(ctx); err != nil {
				return nil, "", err
			}
			return answers.Values(), answers.Action(), nil
		},
	}
}

// Run drives wizardID until its last step is accepted and returns the collected values.
func (s *Session) Run(ctx context.Context, sessionID, wizardID string) (domain.Values, error) {
	view, err := s.Engine.Render(ctx, sessionID, wizardID, "")
	if err != nil {
		return nil, err
	}

	for {
		if err := s.show(view); err != nil {
			return nil, err
		}

		input, action, err := s.Fill(ctx, view)
		if err != nil {
			return nil, err
		}

		if action == ActionBack {
			view, err = s.Engine.Back(ctx, sessionID, wizardID, view.StepKey)
			if err != nil {
				return nil, err
			}
			continue
		}

		input, err = sanitize.Values(input)
		if err != nil {
			fmt.Fprintf(s.Out, "\n%v\n", err)
			continue
		}

		res, err := s.Engine.Submit(ctx, sessionID, wizardID, view.StepKey, input)
		var verr *domain.ValidationError
		if errors.As(err, &verr) && res != nil {
			view = res.View
			continue
		}
		if err != nil {
			return nil, err
		}

		if res.Status == domain.SubmitCompleted {
			return s.complete(ctx, sessionID, wizardID, view.StepKey)
		}
		view = res.View
	}
}

func (s *Session) complete(ctx context.Context, sessionID, wizardID, lastStep string) (domain.Values, error) {
	final, err := s.Engine.Render(ctx, sessionID, wizardID, lastStep)
	if err != nil {
		return nil, err
	}
	if !s.KeepState {
		if err := s.Engine.Finalize(ctx, sessionID, wizardID); err != nil {
			return nil, err
		}
	}
	fmt.Fprintf(s.Out, "\n✓ %s completed.\n", titleOf(final))
	return final.Values, nil
}

func (s *Session) show(view *domain.StepView) error {
	out, err := s.Render(StepMarkdown(view))
	if err != nil {
		return fmt.Errorf("failed to render step: %w", err)
	}
	_, err = io.WriteString(s.Out, out)
	return err
}

func titleOf(view *domain.StepView) string {
	if view.WizardTitle != "" {
		return view.WizardTitle
	}
	return view.WizardID
}
