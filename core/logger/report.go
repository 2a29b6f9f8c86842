package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Report holds statistics about the logged events.
type Report struct {
	LogEntries     int        `json:"log_entries"`
	Sessions       int        `json:"sessions"`
	InvalidEntries StrCounter `json:"unknown_log_entries"`

	Commands   StrCounter   `json:"commands"`
	Builtins   StrCounter   `json:"builtins"`
	Redirects  StrCounter   `json:"redirects"`
	ExitCodes  StrCounter   `json:"exit_codes"`
	Pipelines  int          `json:"pipelines"`
	Interrupts int          `json:"interrupts"`
	Failures   *PathCounter `json:"failures"`
}

func NewReport() *Report {
	return &Report{
		Failures: NewPathCounter("kind", "command"),
	}
}

func (r *Report) Update(le *LogEntry) {
	r.LogEntries++

	switch le.Event {
	case EventSessionStart:
		r.Sessions++
	case EventSessionEnd:
		// Ignore
	case EventRunCommand:
		r.countCommand(le.Command)
		if le.RedirectMode != "" {
			r.Redirects.Increment(le.RedirectMode)
		}
		r.countExit(le.ExitCode)
	case EventPipeline:
		r.Pipelines++
		r.countCommand(le.Command)
		r.countCommand(le.Right)
		r.countExit(le.ExitCode)
	case EventBuiltin:
		if len(le.Command) > 0 {
			r.Builtins.Increment(le.Command[0])
		}
	case EventFailure:
		name := ""
		if len(le.Command) > 0 {
			name = le.Command[0]
		}
		r.Failures.Increment(le.Kind, name)
	case EventInterrupt:
		r.Interrupts++
	default:
		r.InvalidEntries.Increment(le.Event)
	}
}

// WriteJSON writes the report as indented JSON followed by a newline.
func (r *Report) WriteJSON(w io.Writer) error {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func (r *Report) countCommand(args []string) {
	if len(args) > 0 {
		r.Commands.Increment(args[0])
	}
}

func (r *Report) countExit(code *int) {
	if code == nil {
		return
	}
	if *code == 0 {
		r.ExitCodes.Increment("success")
	} else {
		r.ExitCodes.Increment("failure")
	}
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Get returns the count for key.
func (s *StrCounter) Get(key string) int {
	return s.internal[key]
}

// MarshalJSON implements custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	if s.internal == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.internal)
}

func NewPathCounter(cols ...string) *PathCounter {
	return &PathCounter{
		cols:     cols,
		internal: make(map[string]int),
	}
}

// PathCounter counts tuples of strings.
type PathCounter struct {
	cols     []string
	internal map[string]int
}

// Increment adds one to the given key.
func (ctr *PathCounter) Increment(toAdd ...string) {
	if len(toAdd) != len(ctr.cols) {
		panic("wrong number of columns to add")
	}

	ctr.internal[toKey(toAdd...)]++
}

// Get returns the count for the tuple.
func (ctr *PathCounter) Get(vals ...string) int {
	return ctr.internal[toKey(vals...)]
}

// MarshalJSON implements custom JSON marshaler.
func (ctr *PathCounter) MarshalJSON() ([]byte, error) {
	type Count struct {
		Count  int               `json:"count"`
		Fields map[string]string `json:"event"`
		Path   string            `json:"-"`
	}

	out := []Count{}
	for k, v := range ctr.internal {
		count := Count{
			Count:  v,
			Path:   k,
			Fields: make(map[string]string),
		}

		splitPath := fromKey(k)
		for colNum, colVal := range ctr.cols {
			count.Fields[colVal] = splitPath[colNum]
		}

		out = append(out, count)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Path < out[j].Path
		}
		return out[i].Count > out[j].Count
	})

	return json.Marshal(out)
}

func toKey(vals ...string) string {
	key, _ := json.Marshal(vals)
	return string(key)
}

func fromKey(key string) (out []string) {
	json.Unmarshal([]byte(key), &out)
	return
}
