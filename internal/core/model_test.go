package core

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to JobStatus
		want     bool
	}{
		{JobIntake, JobQuoted, true},
		{JobIntake, JobApproved, true}, // direct jobs skip quoting
		{JobQuoted, JobApproved, true},
		{JobApproved, JobPendingProof, true},
		{JobPendingProof, JobInProduction, true},
		{JobInProduction, JobShipped, true},
		{JobShipped, JobInvoiced, true},
		{JobInvoiced, JobPaid, true},

		{JobIntake, JobCancelled, true},
		{JobInProduction, JobCancelled, true},

		{JobIntake, JobInProduction, false},
		{JobQuoted, JobIntake, false},
		{JobShipped, JobApproved, false},
		{JobPaid, JobCancelled, false},
		{JobPaid, JobIntake, false},
		{JobCancelled, JobIntake, false},
		{JobCancelled, JobCancelled, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
