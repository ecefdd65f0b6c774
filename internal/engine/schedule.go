package engine

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// StageSchedule maps (stage, elapsed year) to a refund percentage. Three
// stages, ten year slots each.
type StageSchedule [MaxStage][MaxYearIndex + 1]uint8

// Validate enforces the schedule shape rules: every value <= 100, every row
// sums to <= 100, each row's non-zero values form a single block starting at
// index 0 (prefix-contiguous, so [0,0,20,...] is rejected even though the
// run itself is contiguous), and at least one value anywhere is non-zero.
func (s StageSchedule) Validate() error {
	anyNonzero := false

	for stage := 0; stage < MaxStage; stage++ {
		row := s[stage]
		sum := 0
		ended := false

		for _, val := range row {
			if val > 100 {
				return ErrInvalidScheduleValue
			}
			if val == 0 {
				// The first zero ends the prefix for good.
				ended = true
				continue
			}
			if ended {
				return ErrNonContiguousSchedule
			}
			anyNonzero = true
			sum += int(val)
		}

		if sum > 100 {
			return ErrInvalidScheduleSum
		}
	}

	if !anyNonzero {
		return ErrEmptySchedule
	}
	return nil
}

// RefundPercentage returns the percentage for a stage (1-3) at a year index
// (0-9), or 0 for out-of-range input.
func (s StageSchedule) RefundPercentage(stage uint8, yearIndex uint8) uint8 {
	if stage < 1 || stage > MaxStage || yearIndex > MaxYearIndex {
		return 0
	}
	return s[stage-1][yearIndex]
}

// ToJSON renders the schedule for jsonb storage.
func (s StageSchedule) ToJSON() datatypes.JSON {
	raw, _ := json.Marshal(s)
	return datatypes.JSON(raw)
}

// ScheduleFromJSON parses a stored schedule.
func ScheduleFromJSON(raw datatypes.JSON) (StageSchedule, error) {
	var s StageSchedule
	if err := json.Unmarshal(raw, &s); err != nil {
		return StageSchedule{}, err
	}
	return s, nil
}
