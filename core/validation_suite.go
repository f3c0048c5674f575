package core

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

// StepStatus represents the status of a validation step.
type StepStatus int

const (
	StepPassed StepStatus = iota
	StepFailed
	StepWarning
	StepSkipped
)

// String returns the string representation of a step status.
func (s StepStatus) String() string {
	switch s {
	case StepPassed:
		return "passed"
	case StepFailed:
		return "failed"
	case StepWarning:
		return "warning"
	case StepSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// ValidationStep records the outcome of a single startup check.
type ValidationStep struct {
	Name    string
	Status  StepStatus
	Message string
	Error   error
	Latency time.Duration
}

// SuiteResult is the aggregate outcome of the startup validation suite.
type SuiteResult struct {
	Steps       []ValidationStep
	PassedSteps int
	FailedSteps int
	Warnings    int
	Duration    time.Duration
	Success     bool
}

// CheckFunc performs one validation check. It returns ok, a short
// human-readable message, and an error for failed checks.
type CheckFunc func() (ok bool, message string, err error)

type suiteCheck struct {
	name     string
	fn       CheckFunc
	warnOnly bool
}

// ValidationSuite runs startup checks in sequence with colored progress
// output before the server begins listening. Built-in checks cover the
// .env file and configuration; callers add further checks with AddCheck.
type ValidationSuite struct {
	output       io.Writer
	checks       []suiteCheck
	showProgress bool
	envPath      string
}

// NewValidationSuite creates a suite with the built-in environment and
// configuration checks registered.
func NewValidationSuite() *ValidationSuite {
	s := &ValidationSuite{
		output:       os.Stdout,
		showProgress: true,
		envPath:      ".env",
	}

	// .env is optional (env vars may come from the process environment),
	// so a missing file is only a warning.
	s.addCheck("Environment File", true, func() (bool, string, error) {
		if _, err := os.Stat(s.envPath); err != nil {
			return false, fmt.Sprintf("%s not found, using process environment", s.envPath), nil
		}
		return true, s.envPath + " found", nil
	})

	s.addCheck("Configuration", false, func() (bool, string, error) {
		cfg, err := LoadConfig()
		if err != nil {
			return false, "configuration invalid", err
		}
		return true, "listening on " + cfg.Addr(), nil
	})

	return s
}

// WithOutput sets the output writer for progress messages.
func (s *ValidationSuite) WithOutput(w io.Writer) *ValidationSuite {
	s.output = w
	return s
}

// WithShowProgress enables or disables progress output.
func (s *ValidationSuite) WithShowProgress(show bool) *ValidationSuite {
	s.showProgress = show
	return s
}

// WithEnvPath sets a custom path for the .env file check.
func (s *ValidationSuite) WithEnvPath(path string) *ValidationSuite {
	s.envPath = path
	return s
}

// AddCheck registers an additional hard check (failure fails the suite).
func (s *ValidationSuite) AddCheck(name string, fn CheckFunc) *ValidationSuite {
	s.addCheck(name, false, fn)
	return s
}

func (s *ValidationSuite) addCheck(name string, warnOnly bool, fn CheckFunc) {
	s.checks = append(s.checks, suiteCheck{name: name, fn: fn, warnOnly: warnOnly})
}

// Validate runs all checks in registration order and returns the aggregate
// result. It does not stop on failure so the operator sees every problem
// in one pass.
func (s *ValidationSuite) Validate() SuiteResult {
	startTime := time.Now()
	result := SuiteResult{Steps: make([]ValidationStep, 0, len(s.checks))}

	if s.showProgress {
		s.printHeader("VRAM Estimator Startup Validation")
	}

	for _, check := range s.checks {
		step := s.runStep(check)
		result.Steps = append(result.Steps, step)

		switch step.Status {
		case StepPassed:
			result.PassedSteps++
		case StepWarning:
			result.Warnings++
		case StepFailed:
			result.FailedSteps++
		}
	}

	result.Duration = time.Since(startTime)
	result.Success = result.FailedSteps == 0

	if s.showProgress {
		s.printSummary(result)
	}

	return result
}

// runStep executes one check and prints its colored status line.
func (s *ValidationSuite) runStep(check suiteCheck) ValidationStep {
	start := time.Now()
	ok, message, err := check.fn()
	latency := time.Since(start)

	step := ValidationStep{
		Name:    check.name,
		Message: message,
		Error:   err,
		Latency: latency,
	}

	switch {
	case ok:
		step.Status = StepPassed
	case check.warnOnly:
		step.Status = StepWarning
	default:
		step.Status = StepFailed
	}

	if s.showProgress {
		s.printStep(step)
	}

	return step
}

func (s *ValidationSuite) printHeader(title string) {
	bold := color.New(color.Bold)
	fmt.Fprintln(s.output)
	bold.Fprintln(s.output, title)
	fmt.Fprintln(s.output, strings.Repeat("-", len(title)))
}

func (s *ValidationSuite) printStep(step ValidationStep) {
	var marker string
	switch step.Status {
	case StepPassed:
		marker = color.GreenString("[PASS]")
	case StepWarning:
		marker = color.YellowString("[WARN]")
	case StepFailed:
		marker = color.RedString("[FAIL]")
	default:
		marker = "[SKIP]"
	}

	line := fmt.Sprintf("%s %-20s %s", marker, step.Name, step.Message)
	if step.Error != nil {
		line += color.RedString(" (%v)", step.Error)
	}
	fmt.Fprintln(s.output, line)
}

func (s *ValidationSuite) printSummary(result SuiteResult) {
	fmt.Fprintln(s.output)
	if result.Success {
		color.New(color.FgGreen, color.Bold).Fprintf(s.output,
			"Validation passed: %d checks in %s\n\n",
			result.PassedSteps, result.Duration.Round(time.Millisecond))
	} else {
		color.New(color.FgRed, color.Bold).Fprintf(s.output,
			"Validation failed: %d of %d checks failed\n\n",
			result.FailedSteps, len(result.Steps))
	}
}
