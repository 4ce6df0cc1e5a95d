package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/pterm/pterm"
)

type progressSpinner interface {
	Stop() error
	Success(...any)
	Fail(...any)
	UpdateText(string)
}

type progressSpinnerFactory func(w io.Writer, text string) (progressSpinner, error)

var defaultSpinnerFactory progressSpinnerFactory = func(w io.Writer, text string) (progressSpinner, error) {
	spinner, err := pterm.DefaultSpinner.
		WithWriter(w).
		WithRemoveWhenDone(false).
		WithText(text).
		Start()
	if err != nil {
		return nil, err
	}
	return spinner, nil
}

// StepStatus represents the state of a progress step.
type StepStatus int

const (
	// StepPending indicates a step has not yet started.
	StepPending StepStatus = iota
	// StepRunning indicates a step is currently in progress.
	StepRunning
	// StepCompleted indicates a step finished successfully.
	StepCompleted
	// StepFailed indicates a step encountered an error.
	StepFailed
)

// Step represents a single progress step.
type Step struct {
	ID           string
	Message      string
	Status       StepStatus
	CompletedMsg string // Optional: Custom message when completed
	FailedMsg    string // Optional: Custom message when failed
	IndentLevel  int    // 0 = root, 1 = child (→), 2 = nested child, etc.
	startTime    time.Time
}

// ProgressManager shows a sequence of steps, each with a spinner while it runs.
type ProgressManager struct {
	steps          []*Step
	stepMap        map[string]*Step
	currentSpinner progressSpinner
	spinnerFactory progressSpinnerFactory
	out            io.Writer
	clock          clock.Clock
	mu             sync.Mutex
	disabled       bool
}

// ProgressManagerOption allows customizing ProgressManager behavior at creation time.
type ProgressManagerOption func(*ProgressManager)

// WithProgressOutput enables or disables terminal output for a ProgressManager.
func WithProgressOutput(enabled bool) ProgressManagerOption {
	return func(pm *ProgressManager) {
		pm.disabled = !enabled
	}
}

// WithProgressClock measures step durations on clk.
func WithProgressClock(clk clock.Clock) ProgressManagerOption {
	return func(pm *ProgressManager) {
		pm.clock = clk
	}
}

func withProgressSpinnerFactory(factory progressSpinnerFactory) ProgressManagerOption {
	return func(pm *ProgressManager) {
		pm.spinnerFactory = factory
	}
}

// NewProgressManager creates a new ProgressManager writing to out, with all steps
// registered upfront.
func NewProgressManager(out io.Writer, steps []*Step, opts ...ProgressManagerOption) *ProgressManager {
	stepMap := make(map[string]*Step)
	for _, step := range steps {
		stepMap[step.ID] = step
	}

	pm := &ProgressManager{
		steps:          steps,
		stepMap:        stepMap,
		spinnerFactory: defaultSpinnerFactory,
		out:            out,
		clock:          clock.New(),
	}

	for _, opt := range opts {
		opt(pm)
	}

	return pm
}

// getPrefix returns the formatted prefix for a step based on its indent level.
func getPrefix(step *Step) string {
	if step.IndentLevel == 0 {
		return ""
	}
	return strings.Repeat("  ", step.IndentLevel) + "→ "
}

func (pm *ProgressManager) step(stepID string) (*Step, error) {
	step, exists := pm.stepMap[stepID]
	if !exists {
		return nil, errors.Errorf("step %q not found", stepID)
	}
	return step, nil
}

// Start begins animating the spinner for the given step ID.
func (pm *ProgressManager) Start(stepID string) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	step, err := pm.step(stepID)
	if err != nil {
		return err
	}

	step.Status = StepRunning
	step.startTime = pm.clock.Now()

	if pm.disabled {
		return nil
	}

	if pm.currentSpinner != nil {
		_ = pm.currentSpinner.Stop() //nolint:errcheck
	}

	spinner, err := pm.spinnerFactory(pm.out, getPrefix(step)+step.Message)
	if err != nil {
		return errors.Wrap(err, "failed to start spinner")
	}
	pm.currentSpinner = spinner
	return nil
}

// Complete marks a step as completed with its success message.
func (pm *ProgressManager) Complete(stepID string) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	step, err := pm.step(stepID)
	if err != nil {
		return err
	}
	msg := step.CompletedMsg
	if msg == "" {
		msg = step.Message
	}
	pm.completeLocked(step, msg)
	return nil
}

// CompleteWithMessage marks a step as completed with a custom message.
func (pm *ProgressManager) CompleteWithMessage(stepID, message string) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	step, err := pm.step(stepID)
	if err != nil {
		return err
	}
	pm.completeLocked(step, message)
	return nil
}

func (pm *ProgressManager) completeLocked(step *Step, message string) {
	step.Status = StepCompleted

	elapsed := ""
	if !step.startTime.IsZero() {
		elapsed = fmt.Sprintf(" (%s)", pm.clock.Since(step.startTime).Round(time.Millisecond))
	}

	if pm.disabled {
		return
	}

	line := getPrefix(step) + message + elapsed
	if pm.currentSpinner != nil {
		pm.currentSpinner.Success(line)
		pm.currentSpinner = nil
		return
	}
	pterm.Success.WithWriter(pm.out).Println(line)
}

// Fail marks a step as failed with an error message.
func (pm *ProgressManager) Fail(stepID string, err error) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	step, stepErr := pm.step(stepID)
	if stepErr != nil {
		return stepErr
	}

	msg := step.FailedMsg
	if msg == "" {
		msg = fmt.Sprintf("%s: %v", step.Message, err)
	}
	step.Status = StepFailed

	if pm.disabled {
		return nil
	}

	line := getPrefix(step) + msg
	if pm.currentSpinner != nil {
		pm.currentSpinner.Fail(line)
		pm.currentSpinner = nil
		return nil
	}
	pterm.Error.WithWriter(pm.out).Println(line)
	return nil
}

// UpdateText updates the text of the currently active spinner (for progress updates).
func (pm *ProgressManager) UpdateText(text string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.disabled {
		return
	}

	if pm.currentSpinner != nil {
		pm.currentSpinner.UpdateText(text)
	}
}

// Stop stops any active spinner.
func (pm *ProgressManager) Stop() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.currentSpinner != nil {
		_ = pm.currentSpinner.Stop() //nolint:errcheck
		pm.currentSpinner = nil
	}
}
