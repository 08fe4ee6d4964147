package models

import "testing"

func TestDeriveStoryStatus(t *testing.T) {
	cases := []struct {
		name     string
		statuses []TaskStatus
		want     TaskStatus
	}{
		{"no tasks", nil, StatusNotStarted},
		{"nothing begun", []TaskStatus{StatusNotStarted, StatusNotStarted}, StatusNotStarted},
		{"all done", []TaskStatus{StatusCompleted, StatusCompleted}, StatusCompleted},
		{"least advanced wins", []TaskStatus{StatusCompleted, StatusImplementing}, StatusImplementing},
		{"in flight with untouched siblings", []TaskStatus{StatusValidating, StatusNotStarted}, StatusSetup},
		{"blocked never drags forward", []TaskStatus{StatusCompleted, StatusBlocked}, StatusSetup},
		{"on hold ranks like blocked", []TaskStatus{StatusVerifying, StatusOnHold}, StatusSetup},
		{"single active task", []TaskStatus{StatusPlanning}, StatusPlanning},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveStoryStatus(tc.statuses); got != tc.want {
				t.Errorf("DeriveStoryStatus(%v) = %s, want %s", tc.statuses, got, tc.want)
			}
		})
	}
}

func TestIsActive(t *testing.T) {
	for _, s := range ActiveStatuses {
		if !s.IsActive() {
			t.Errorf("%s should be active", s)
		}
	}
	for _, s := range []TaskStatus{StatusNotStarted, StatusCompleted, StatusBlocked, StatusOnHold} {
		if s.IsActive() {
			t.Errorf("%s should not be active", s)
		}
	}
}

func TestIsValid(t *testing.T) {
	if TaskStatus("shipped").IsValid() {
		t.Error("unknown status accepted")
	}
	if !StatusValidating.IsValid() {
		t.Error("known status rejected")
	}
}
