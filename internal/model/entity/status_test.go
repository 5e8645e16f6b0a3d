package entity

import "testing"

func TestCanTransitionBOMStatus(t *testing.T) {
	tests := []struct {
		from string
		to   string
		want bool
	}{
		{BOMStatusDraft, BOMStatusActive, true},
		{BOMStatusDraft, BOMStatusArchived, true},
		{BOMStatusActive, BOMStatusDraft, true},
		{BOMStatusActive, BOMStatusArchived, true},
		{BOMStatusArchived, BOMStatusDraft, false},
		{BOMStatusArchived, BOMStatusActive, false},
		{BOMStatusArchived, BOMStatusArchived, false},
		{BOMStatusDraft, BOMStatusDraft, false},
		{"UNKNOWN", BOMStatusActive, false},
	}

	for _, tt := range tests {
		if got := CanTransitionBOMStatus(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransitionBOMStatus(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestCanTransitionAssemblyStatus(t *testing.T) {
	tests := []struct {
		from string
		to   string
		want bool
	}{
		{AssemblyStatusInProgress, AssemblyStatusCompleted, true},
		{AssemblyStatusInProgress, AssemblyStatusCancelled, true},
		{AssemblyStatusCompleted, AssemblyStatusCancelled, false},
		{AssemblyStatusCompleted, AssemblyStatusInProgress, false},
		{AssemblyStatusCancelled, AssemblyStatusCompleted, false},
		{AssemblyStatusCancelled, AssemblyStatusInProgress, false},
	}

	for _, tt := range tests {
		if got := CanTransitionAssemblyStatus(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransitionAssemblyStatus(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestValidAssemblyType(t *testing.T) {
	if !ValidAssemblyType(AssemblyTypeAssembly) || !ValidAssemblyType(AssemblyTypeDisassembly) {
		t.Error("Expected built-in order types to be valid")
	}
	if ValidAssemblyType("REWORK") {
		t.Error("Expected unknown order type to be invalid")
	}
}
