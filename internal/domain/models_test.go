package domain

import (
	"reflect"
	"strings"
	"testing"
)

func TestUserModelTags(t *testing.T) {
	typ := reflect.TypeOf(User{})

	tgID, ok := typ.FieldByName("TelegramID")
	if !ok {
		t.Fatal("missing User.TelegramID field")
	}
	if !strings.Contains(tgID.Tag.Get("gorm"), "uniqueIndex") {
		t.Fatalf("User.TelegramID gorm tag missing uniqueIndex: %q", tgID.Tag.Get("gorm"))
	}

	credits, ok := typ.FieldByName("AvailableCredits")
	if !ok {
		t.Fatal("missing User.AvailableCredits field")
	}
	if !strings.Contains(credits.Tag.Get("gorm"), "default:0") {
		t.Fatalf("User.AvailableCredits gorm tag missing default:0: %q", credits.Tag.Get("gorm"))
	}
}

func TestAuditRequestModelTags(t *testing.T) {
	typ := reflect.TypeOf(AuditRequest{})

	for _, hidden := range []string{"FileID", "SourcePath", "ReportPath"} {
		f, ok := typ.FieldByName(hidden)
		if !ok {
			t.Fatalf("missing AuditRequest.%s field", hidden)
		}
		if got := f.Tag.Get("json"); got != "-" {
			t.Fatalf("AuditRequest.%s must not be serialized, json tag: %q", hidden, got)
		}
	}

	status, ok := typ.FieldByName("Status")
	if !ok {
		t.Fatal("missing AuditRequest.Status field")
	}
	if !strings.Contains(status.Tag.Get("gorm"), "index") {
		t.Fatalf("AuditRequest.Status gorm tag missing index: %q", status.Tag.Get("gorm"))
	}
}

func TestStatusTransitions(t *testing.T) {
	allowed := map[Status][]Status{
		StatusQueued:     {StatusProcessing},
		StatusProcessing: {StatusCompleted, StatusFailed},
		StatusCompleted:  {},
		StatusFailed:     {},
	}
	all := []Status{StatusQueued, StatusProcessing, StatusCompleted, StatusFailed}

	for from, nexts := range allowed {
		ok := map[Status]bool{}
		for _, n := range nexts {
			ok[n] = true
		}
		for _, to := range all {
			if got := from.CanTransitionTo(to); got != ok[to] {
				t.Fatalf("CanTransitionTo(%s -> %s) = %v, want %v", from, to, got, ok[to])
			}
		}
	}
}

func TestStatusFailedOnlyFromProcessing(t *testing.T) {
	if StatusQueued.CanTransitionTo(StatusFailed) {
		t.Fatal("queued must not fail directly")
	}
	if !StatusProcessing.CanTransitionTo(StatusFailed) {
		t.Fatal("processing must be able to fail")
	}
}

func TestStatusTerminal(t *testing.T) {
	if StatusQueued.Terminal() || StatusProcessing.Terminal() {
		t.Fatal("queued/processing must not be terminal")
	}
	if !StatusCompleted.Terminal() || !StatusFailed.Terminal() {
		t.Fatal("completed/failed must be terminal")
	}
	if !Status("processing").Valid() || Status("cancelled").Valid() {
		t.Fatal("status validity check broken")
	}
}
