// Package timecalc pairs raw time-clock events into work shifts and derives
// per-staff hour analytics. It is pure computation: no I/O, no shared state,
// safe for concurrent use. Callers fetch entries, invoke the calculators, and
// own any caching of the results.
package timecalc

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/lengolf/timeclock-api/internal/models"
)

// Policy carries the labor-policy constants applied during shift calculation.
// The zero value is not usable; start from DefaultPolicy and override fields.
type Policy struct {
	// Location is the business timezone. The club operates in a fixed-offset
	// zone, so DST never shifts a business date.
	Location *time.Location
	// BreakThresholdMinutes is the raw shift length above which an unpaid
	// break is deducted. The deduction is a step function, not prorated.
	BreakThresholdMinutes int
	// BreakDeductionMinutes is the fixed deduction applied past the threshold.
	BreakDeductionMinutes int
	// MaxShiftMinutes flags implausibly long shifts. Flagged shifts are still
	// reported in full; anomalies are surfaced, never hidden.
	MaxShiftMinutes int
	// DailyRegularHours is the per-shift threshold beyond which net hours
	// count as overtime.
	DailyRegularHours float64
}

// DefaultPolicy returns the club's standard labor policy.
func DefaultPolicy() Policy {
	return Policy{
		Location:              time.FixedZone("ICT", 7*60*60),
		BreakThresholdMinutes: 360,
		BreakDeductionMinutes: 60,
		MaxShiftMinutes:       16 * 60,
		DailyRegularHours:     8,
	}
}

// WorkShift is one continuous work period derived from a clock-in and, when
// found, its paired clock-out.
type WorkShift struct {
	StaffID          int        `json:"staff_id"`
	StaffName        string     `json:"staff_name"`
	ClockInEntryID   string     `json:"clock_in_entry_id"`
	ClockInTime      time.Time  `json:"clock_in_time"`
	ClockOutEntryID  *string    `json:"clock_out_entry_id,omitempty"`
	ClockOutTime     *time.Time `json:"clock_out_time,omitempty"`
	Date             string     `json:"date"`
	IsComplete       bool       `json:"is_complete"`
	CrossesMidnight  bool       `json:"crosses_midnight"`
	TotalMinutes     int        `json:"total_minutes"`
	BreakMinutes     int        `json:"break_minutes"`
	NetHours         float64    `json:"net_hours"`
	OvertimeHours    float64    `json:"overtime_hours"`
	ShiftNotes       []string   `json:"shift_notes,omitempty"`
	ValidationIssues []string   `json:"validation_issues,omitempty"`
}

// HasIssues reports whether the shift carries validation issues.
func (s WorkShift) HasIssues() bool {
	return len(s.ValidationIssues) > 0
}

// OrphanClockOut records a clock-out with no preceding open clock-in. Orphans
// never become shifts; they are surfaced as a separate issue list so the
// shift row count stays equal to the clock-in count.
type OrphanClockOut struct {
	StaffID   int       `json:"staff_id"`
	StaffName string    `json:"staff_name"`
	EntryID   string    `json:"entry_id"`
	Timestamp time.Time `json:"timestamp"`
	Issue     string    `json:"issue"`
}

// Result bundles the derived shifts with standalone validation findings.
type Result struct {
	Shifts  []WorkShift      `json:"shifts"`
	Orphans []OrphanClockOut `json:"orphan_clock_outs,omitempty"`
}

// CalculateWorkShifts pairs clock events into shifts. Entries may arrive in
// any order and may span multiple staff; each staff's entries are sorted by
// timestamp before the pairing walk, so output is deterministic regardless of
// input order. Exactly one shift is emitted per clock-in.
//
// Malformed-but-parseable data degrades to validation issues on the affected
// shift. Entries missing a staff id or timestamp, or carrying an unknown
// action, fail the whole calculation: they indicate an upstream integrity bug.
func CalculateWorkShifts(entries []models.TimeEntry, policy Policy) (Result, error) {
	if policy.Location == nil {
		policy.Location = DefaultPolicy().Location
	}

	byStaff := make(map[int][]models.TimeEntry)
	staffIDs := make([]int, 0)
	for i, entry := range entries {
		if err := checkEntry(entry, i); err != nil {
			return Result{}, err
		}
		if _, seen := byStaff[entry.StaffID]; !seen {
			staffIDs = append(staffIDs, entry.StaffID)
		}
		byStaff[entry.StaffID] = append(byStaff[entry.StaffID], entry)
	}
	sort.Ints(staffIDs)

	result := Result{Shifts: make([]WorkShift, 0, len(entries)/2+1)}
	for _, staffID := range staffIDs {
		group := byStaff[staffID]
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].Timestamp.Equal(group[j].Timestamp) {
				return group[i].ID < group[j].ID
			}
			return group[i].Timestamp.Before(group[j].Timestamp)
		})

		var open *WorkShift
		for _, entry := range group {
			switch entry.Action {
			case models.ActionClockIn:
				if open != nil {
					open.ValidationIssues = append(open.ValidationIssues,
						"missing clock-out, superseded by new clock-in")
					result.Shifts = append(result.Shifts, *open)
				}
				open = openShift(entry, policy.Location)
			case models.ActionClockOut:
				if open == nil {
					result.Orphans = append(result.Orphans, OrphanClockOut{
						StaffID:   entry.StaffID,
						StaffName: entry.StaffName,
						EntryID:   entry.ID,
						Timestamp: entry.Timestamp,
						Issue:     "clock-out with no preceding clock-in",
					})
					continue
				}
				closeShift(open, entry, policy)
				result.Shifts = append(result.Shifts, *open)
				open = nil
			}
		}
		if open != nil {
			open.ValidationIssues = append(open.ValidationIssues, "missing clock-out")
			result.Shifts = append(result.Shifts, *open)
		}
	}

	return result, nil
}

func checkEntry(entry models.TimeEntry, idx int) error {
	if entry.StaffID <= 0 {
		return fmt.Errorf("entry %d (%s): missing staff id", idx, entry.ID)
	}
	if entry.Timestamp.IsZero() {
		return fmt.Errorf("entry %d (%s): missing timestamp", idx, entry.ID)
	}
	if !entry.Action.Valid() {
		return fmt.Errorf("entry %d (%s): unrecognised action %q", idx, entry.ID, entry.Action)
	}
	return nil
}

func openShift(entry models.TimeEntry, loc *time.Location) *WorkShift {
	return &WorkShift{
		StaffID:        entry.StaffID,
		StaffName:      entry.StaffName,
		ClockInEntryID: entry.ID,
		ClockInTime:    entry.Timestamp,
		Date:           businessDate(entry.Timestamp, loc),
	}
}

func closeShift(shift *WorkShift, entry models.TimeEntry, policy Policy) {
	outID := entry.ID
	outTime := entry.Timestamp
	shift.ClockOutEntryID = &outID
	shift.ClockOutTime = &outTime
	shift.IsComplete = true

	// Duration math uses the absolute timestamp delta, never calendar-day
	// arithmetic, so shifts spanning midnight stay correct.
	shift.TotalMinutes = int(outTime.Sub(shift.ClockInTime) / time.Minute)
	shift.CrossesMidnight = businessDate(outTime, policy.Location) != shift.Date
	if shift.CrossesMidnight {
		shift.ShiftNotes = append(shift.ShiftNotes, "cross-day shift")
	}

	netMinutes := shift.TotalMinutes
	if policy.BreakDeductionMinutes > 0 && shift.TotalMinutes > policy.BreakThresholdMinutes {
		shift.BreakMinutes = policy.BreakDeductionMinutes
		if shift.BreakMinutes > netMinutes {
			shift.BreakMinutes = netMinutes
		}
		netMinutes -= shift.BreakMinutes
		shift.ShiftNotes = append(shift.ShiftNotes,
			fmt.Sprintf("unpaid break deducted (%d min)", shift.BreakMinutes))
	}

	shift.NetHours = roundHours(float64(netMinutes) / 60)
	if overtime := shift.NetHours - policy.DailyRegularHours; overtime > 0 {
		shift.OvertimeHours = roundHours(overtime)
	}

	if policy.MaxShiftMinutes > 0 && shift.TotalMinutes > policy.MaxShiftMinutes {
		shift.ValidationIssues = append(shift.ValidationIssues,
			"shift exceeds maximum plausible duration")
	}
}

// businessDate formats the instant as a calendar date in the business zone.
func businessDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// roundHours rounds half-up to one decimal place.
func roundHours(h float64) float64 {
	return math.Floor(h*10+0.5) / 10
}
