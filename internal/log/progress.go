package log

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Mode selects how pipeline progress is written
type Mode string

const (
	ModeAuto  Mode = "auto"  // Spinner on a TTY, plain otherwise
	ModePlain Mode = "plain" // One line per step
	ModeJSON  Mode = "json"  // One JSON event per step
)

// StepLogger reports progress through the fixed pipeline steps
type StepLogger struct {
	mu        sync.Mutex
	name      string
	steps     []string
	current   int
	mode      Mode
	isTTY     bool
	startTime time.Time
	stepStart time.Time
}

// NewStepLogger creates a step logger for a named pipeline run
func NewStepLogger(name string, steps []string, mode Mode, isTTY bool) *StepLogger {
	return &StepLogger{
		name:      name,
		steps:     steps,
		current:   -1,
		mode:      mode,
		isTTY:     isTTY,
		startTime: time.Now(),
	}
}

// StartStep begins the named step
func (sl *StepLogger) StartStep(stepName string) {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	idx := -1
	for i, s := range sl.steps {
		if s == stepName {
			idx = i
			break
		}
	}
	if idx == -1 {
		log.Warn().Str("step", stepName).Msg("Unknown pipeline step")
		return
	}

	sl.current = idx
	sl.stepStart = time.Now()
	sl.emit("start", stepName, 0)

	log.Info().
		Str("step", stepName).
		Int("step_number", idx+1).
		Int("total_steps", len(sl.steps)).
		Msg("Starting pipeline step")
}

// CompleteStep marks the current step as done
func (sl *StepLogger) CompleteStep() {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	if sl.current < 0 {
		return
	}

	d := time.Since(sl.stepStart)
	sl.emit("done", sl.steps[sl.current], d)

	log.Info().
		Str("step", sl.steps[sl.current]).
		Dur("duration", d).
		Msg("Pipeline step completed")
}

// Finish reports the whole pipeline as completed
func (sl *StepLogger) Finish() {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	total := time.Since(sl.startTime)
	sl.emit("finish", sl.name, total)

	log.Info().
		Dur("total_duration", total).
		Int("steps", len(sl.steps)).
		Msg("Pipeline completed")
}

// Fail reports the pipeline as failed at the current step
func (sl *StepLogger) Fail(reason string) {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	step := "unknown"
	if sl.current >= 0 && sl.current < len(sl.steps) {
		step = sl.steps[sl.current]
	}

	sl.emit("fail", step, time.Since(sl.startTime))

	log.Error().
		Str("failed_step", step).
		Str("reason", reason).
		Msg("Pipeline failed")
}

// emit writes the user-facing progress line. Callers hold the mutex.
func (sl *StepLogger) emit(event, step string, d time.Duration) {
	switch sl.mode {
	case ModeJSON:
		line, _ := json.Marshal(map[string]interface{}{
			"event":    event,
			"pipeline": sl.name,
			"step":     step,
			"step_num": sl.current + 1,
			"steps":    len(sl.steps),
			"ms":       d.Milliseconds(),
		})
		fmt.Fprintln(os.Stdout, string(line))
	case ModePlain:
		sl.emitPlain(event, step, d)
	default: // ModeAuto
		if sl.isTTY {
			sl.emitTTY(event, step, d)
		} else {
			sl.emitPlain(event, step, d)
		}
	}
}

func (sl *StepLogger) emitPlain(event, step string, d time.Duration) {
	switch event {
	case "start":
		fmt.Printf("[%d/%d] %s...\n", sl.current+1, len(sl.steps), step)
	case "finish":
		fmt.Printf("%s completed in %v\n", step, d.Round(time.Millisecond))
	case "fail":
		fmt.Printf("%s failed at step %s\n", sl.name, step)
	}
}

func (sl *StepLogger) emitTTY(event, step string, d time.Duration) {
	switch event {
	case "start":
		fmt.Printf("\r\033[K%s %s [%s]", "▶", step, sl.bar())
	case "done":
		fmt.Printf("\r\033[K✅ %s (%v) [%s]\n", step, d.Round(time.Millisecond), sl.bar())
	case "finish":
		fmt.Printf("\r\033[K✅ %s completed (%v)\n", step, d.Round(time.Millisecond))
	case "fail":
		fmt.Printf("\r\033[K❌ %s failed at step %s\n", sl.name, step)
	}
}

func (sl *StepLogger) bar() string {
	const width = 10
	filled := 0
	if len(sl.steps) > 0 {
		filled = width * (sl.current + 1) / len(sl.steps)
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// ParseMode normalizes a --progress flag value
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAuto, ModePlain, ModeJSON:
		return Mode(s), nil
	default:
		return ModeAuto, fmt.Errorf("invalid progress mode %q (auto|plain|json)", s)
	}
}
