// Package baseline replays a reference heart-rate recording (contact PPG
// and ECG) against the video clock, aggregating on the same sampling
// cadence as the estimator so the two can be compared row for row.
package baseline

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/your-org/rppg/internal/dsp"
)

type sample struct {
	time int64
	ppg  float64
	ecg  float64
}

// Baseline holds the parsed reference series and the replay cursor.
type Baseline struct {
	samplingFrequency float64
	timeBase          float64
	timeOffset        int64

	data  []sample
	index int

	lastSamplingTime int64
	bpmsPPG          []float64
	bpmsECG          []float64
	bpmPPG           float64
	bpmECG           float64
}

// Load parses the reference CSV. Rows are comma-separated with the
// reference timestamp in column 1, PPG BPM in column 2 and ECG BPM in
// column 3; timeOffset maps the video clock onto the reference clock.
func Load(path string, samplingFrequency, timeBase float64, timeOffset int64) (*Baseline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open baseline file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	b := &Baseline{
		samplingFrequency: samplingFrequency,
		timeBase:          timeBase,
		timeOffset:        timeOffset,
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read baseline row: %w", err)
		}
		if len(record) < 4 {
			continue
		}
		ts, err := strconv.ParseInt(record[1], 10, 64)
		if err != nil {
			continue // header or malformed row
		}
		ppg, err1 := strconv.ParseFloat(record[2], 64)
		ecg, err2 := strconv.ParseFloat(record[3], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		b.data = append(b.data, sample{time: ts, ppg: ppg, ecg: ecg})
	}

	return b, nil
}

// ProcessFrame consumes reference samples up to the frame timestamp and
// refreshes the aggregate on the sampling cadence.
func (b *Baseline) ProcessFrame(time int64) {
	ref := time + b.timeOffset

	for b.index < len(b.data) && b.data[b.index].time <= ref {
		b.bpmsPPG = append(b.bpmsPPG, b.data[b.index].ppg)
		b.bpmsECG = append(b.bpmsECG, b.data[b.index].ecg)
		b.index++
	}

	if float64(time-b.lastSamplingTime)*b.timeBase >= 1/b.samplingFrequency {
		b.lastSamplingTime = time
		if len(b.bpmsPPG) > 0 {
			b.bpmPPG = dsp.Mean(b.bpmsPPG)
			b.bpmECG = dsp.Mean(b.bpmsECG)
		}
		b.bpmsPPG = b.bpmsPPG[:0]
		b.bpmsECG = b.bpmsECG[:0]
	}
}

// Current returns the latest aggregated reference BPMs.
func (b *Baseline) Current() (ppg, ecg float64) {
	return b.bpmPPG, b.bpmECG
}
