package domain

import (
	"math"
	"time"
)

// PassingScore is the threshold used by pass-rate aggregation.
const PassingScore = 60.0

// GradeKey uniquely identifies one grade: at most one Grade exists per key.
type GradeKey struct {
	ExamID      string
	SubjectCode string
	StudentNo   string
}

// Grade is one recorded score. Grades are created unpublished, updated in
// place, and never deleted. Published only ever transitions false to true.
type Grade struct {
	ExamID      string    `json:"exam_id"`
	SubjectCode string    `json:"subject_code"`
	StudentNo   string    `json:"student_no"`
	Score       float64   `json:"score"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Published   bool      `json:"published"`
}

// Key returns the grade's identifying triple.
func (g *Grade) Key() GradeKey {
	return GradeKey{ExamID: g.ExamID, SubjectCode: g.SubjectCode, StudentNo: g.StudentNo}
}

// RoundScore normalises a raw score to the stored one-decimal precision.
func RoundScore(score float64) float64 {
	return math.Round(score*10) / 10
}

// ValidScore reports whether score is within the accepted 0–100 range.
func ValidScore(score float64) bool {
	return score >= 0 && score <= 100
}

// Round2 rounds to two decimals, used for averages and pass rates.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// AggregatedStats summarises all recorded scores for one (exam, subject).
type AggregatedStats struct {
	Highest  float64 `json:"highest"`
	Lowest   float64 `json:"lowest"`
	Average  float64 `json:"average"`
	PassRate float64 `json:"pass_rate"`
}

// AggregateScores computes stats over scores, or ok=false for an empty set.
func AggregateScores(scores []float64) (stats AggregatedStats, ok bool) {
	if len(scores) == 0 {
		return AggregatedStats{}, false
	}
	highest, lowest, sum := scores[0], scores[0], 0.0
	passing := 0
	for _, s := range scores {
		if s > highest {
			highest = s
		}
		if s < lowest {
			lowest = s
		}
		if s >= PassingScore {
			passing++
		}
		sum += s
	}
	n := float64(len(scores))
	return AggregatedStats{
		Highest:  highest,
		Lowest:   lowest,
		Average:  Round2(sum / n),
		PassRate: Round2(float64(passing) / n * 100),
	}, true
}
