package models

import "github.com/google/uuid"

// BPMSample is a single per-frame heart-rate estimate.
type BPMSample struct {
	SessionID uuid.UUID `json:"session_id"`
	Time      int64     `json:"time"`
	FaceValid bool      `json:"face_valid"`
	BPM       float64   `json:"bpm"`
}

// BPMReport is the periodic aggregate emitted once per sampling interval.
type BPMReport struct {
	SessionID uuid.UUID `json:"session_id"`
	Time      int64     `json:"time"`
	FaceValid bool      `json:"face_valid"`
	Mean      float64   `json:"mean"`
	Min       float64   `json:"min"`
	Max       float64   `json:"max"`
}
