package timecalc

import (
	"sort"

	"github.com/lengolf/timeclock-api/internal/models"
)

// StaffTimeAnalytics aggregates one staff member's shifts over a query window.
// Hour figures cover complete shifts only; days worked and issue counts cover
// incomplete shifts too.
type StaffTimeAnalytics struct {
	StaffID             int     `json:"staff_id"`
	StaffName           string  `json:"staff_name"`
	TotalShifts         int     `json:"total_shifts"`
	CompleteShifts      int     `json:"complete_shifts"`
	IncompleteShifts    int     `json:"incomplete_shifts"`
	DaysWorked          int     `json:"days_worked"`
	RegularHours        float64 `json:"regular_hours"`
	OvertimeHours       float64 `json:"overtime_hours"`
	TotalHours          float64 `json:"total_hours"`
	AverageShiftHours   float64 `json:"average_shift_hours"`
	LongestShiftHours   float64 `json:"longest_shift_hours"`
	ShortestShiftHours  float64 `json:"shortest_shift_hours"`
	TotalBreaksMinutes  int     `json:"total_breaks_minutes"`
	PhotoComplianceRate float64 `json:"photo_compliance_rate"`
	ShiftsWithIssues    int     `json:"shifts_with_issues"`
}

// CalculateStaffAnalytics derives per-staff aggregates from the shifts
// produced by CalculateWorkShifts. The raw entries are passed alongside
// because photo compliance counts every clock action, including those that
// never formed a shift. Staff appearing only in entries still get a row, so
// a member with nothing but orphan clock-outs is not silently dropped.
//
// All averages and extremes are zero when the staff has no complete shifts;
// the computation never divides by zero.
func CalculateStaffAnalytics(shifts []WorkShift, entries []models.TimeEntry) []StaffTimeAnalytics {
	stats := make(map[int]*StaffTimeAnalytics)
	order := make([]int, 0)

	lookup := func(staffID int, name string) *StaffTimeAnalytics {
		if s, ok := stats[staffID]; ok {
			if s.StaffName == "" {
				s.StaffName = name
			}
			return s
		}
		s := &StaffTimeAnalytics{StaffID: staffID, StaffName: name}
		stats[staffID] = s
		order = append(order, staffID)
		return s
	}

	daysWorked := make(map[int]map[string]struct{})
	for _, shift := range shifts {
		s := lookup(shift.StaffID, shift.StaffName)
		s.TotalShifts++
		if shift.HasIssues() {
			s.ShiftsWithIssues++
		}
		if daysWorked[shift.StaffID] == nil {
			daysWorked[shift.StaffID] = make(map[string]struct{})
		}
		daysWorked[shift.StaffID][shift.Date] = struct{}{}

		if !shift.IsComplete {
			s.IncompleteShifts++
			continue
		}
		s.CompleteShifts++
		s.TotalHours += shift.NetHours
		s.OvertimeHours += shift.OvertimeHours
		s.TotalBreaksMinutes += shift.BreakMinutes
		if shift.NetHours > s.LongestShiftHours {
			s.LongestShiftHours = shift.NetHours
		}
		if s.CompleteShifts == 1 || shift.NetHours < s.ShortestShiftHours {
			s.ShortestShiftHours = shift.NetHours
		}
	}

	photoTotals := make(map[int][2]int) // captured, total
	for _, entry := range entries {
		lookup(entry.StaffID, entry.StaffName)
		counts := photoTotals[entry.StaffID]
		if entry.PhotoCaptured {
			counts[0]++
		}
		counts[1]++
		photoTotals[entry.StaffID] = counts
	}

	for staffID, s := range stats {
		s.DaysWorked = len(daysWorked[staffID])
		s.TotalHours = roundHours(s.TotalHours)
		s.OvertimeHours = roundHours(s.OvertimeHours)
		s.RegularHours = roundHours(s.TotalHours - s.OvertimeHours)
		if s.CompleteShifts > 0 {
			s.AverageShiftHours = roundHours(s.TotalHours / float64(s.CompleteShifts))
		}
		if counts := photoTotals[staffID]; counts[1] > 0 {
			s.PhotoComplianceRate = roundHours(float64(counts[0]) / float64(counts[1]) * 100)
		}
	}

	sort.Ints(order)
	result := make([]StaffTimeAnalytics, 0, len(order))
	for _, staffID := range order {
		result = append(result, *stats[staffID])
	}
	return result
}
