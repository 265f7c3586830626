package rppg

import (
	"fmt"
	"os"
	"strings"
)

// SessionLog owns the per-session CSV files: the aggregate report log, the
// per-frame estimate log and, in trace mode, per-window signal and
// estimation dumps. Separator is ";" with a literal header line, matching
// the historical format. Writes are best-effort; I/O errors never reach
// the pipeline.
type SessionLog struct {
	prefix string
	traces bool
	bpm    *os.File
	bpmAll *os.File
}

// OpenSessionLog creates `<prefix>_bpm.csv` and `<prefix>_bpmAll.csv` with
// their headers.
func OpenSessionLog(prefix string, traces bool) (*SessionLog, error) {
	bpm, err := os.Create(prefix + "_bpm.csv")
	if err != nil {
		return nil, fmt.Errorf("open bpm log: %w", err)
	}
	if _, err := bpm.WriteString("time;face_valid;mean;min;max\n"); err != nil {
		bpm.Close()
		return nil, fmt.Errorf("write bpm header: %w", err)
	}

	bpmAll, err := os.Create(prefix + "_bpmAll.csv")
	if err != nil {
		bpm.Close()
		return nil, fmt.Errorf("open bpmAll log: %w", err)
	}
	if _, err := bpmAll.WriteString("time;face_valid;bpm\n"); err != nil {
		bpm.Close()
		bpmAll.Close()
		return nil, fmt.Errorf("write bpmAll header: %w", err)
	}

	return &SessionLog{prefix: prefix, traces: traces, bpm: bpm, bpmAll: bpmAll}, nil
}

// WriteAggregate appends one row to the aggregate report log.
func (l *SessionLog) WriteAggregate(time int64, faceValid bool, mean, min, max float64) {
	if l == nil || l.bpm == nil {
		return
	}
	fmt.Fprintf(l.bpm, "%d;%d;%g;%g;%g\n", time, b2i(faceValid), mean, min, max)
}

// WriteSample appends one row to the per-frame estimate log.
func (l *SessionLog) WriteSample(time int64, faceValid bool, bpm float64) {
	if l == nil || l.bpmAll == nil {
		return
	}
	fmt.Fprintf(l.bpmAll, "%d;%d;%g\n", time, b2i(faceValid), bpm)
}

// TraceWindow dumps one filtering window to `<prefix>_signal_<t>.csv`.
// Columns are algorithm-specific; rows hold the window samples.
func (l *SessionLog) TraceWindow(time int64, header []string, rows [][]float64) {
	if l == nil || !l.traces {
		return
	}
	f, err := os.Create(fmt.Sprintf("%s_signal_%d.csv", l.prefix, time))
	if err != nil {
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "%s\n", strings.Join(header, ";"))
	for _, row := range rows {
		for j, v := range row {
			if j > 0 {
				fmt.Fprint(f, ";")
			}
			fmt.Fprintf(f, "%g", v)
		}
		fmt.Fprint(f, "\n")
	}
}

// TraceEstimation dumps the in-band power spectrum to
// `<prefix>_estimation_<t>.csv`.
func (l *SessionLog) TraceEstimation(time int64, powerSpectrum []float64, low, high int) {
	if l == nil || !l.traces {
		return
	}
	f, err := os.Create(fmt.Sprintf("%s_estimation_%d.csv", l.prefix, time))
	if err != nil {
		return
	}
	defer f.Close()
	fmt.Fprint(f, "i;powerSpectrum\n")
	for i, v := range powerSpectrum {
		if low <= i && i <= high {
			fmt.Fprintf(f, "%d;%g\n", i, v)
		}
	}
}

// Close flushes and closes the session files.
func (l *SessionLog) Close() {
	if l == nil {
		return
	}
	if l.bpm != nil {
		l.bpm.Close()
		l.bpm = nil
	}
	if l.bpmAll != nil {
		l.bpmAll.Close()
		l.bpmAll = nil
	}
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
