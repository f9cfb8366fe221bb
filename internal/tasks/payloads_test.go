package tasks

import "testing"

func TestResumeExportTask(t *testing.T) {
	task, err := NewResumeExportTask(ResumeExportPayload{ResumeID: 5, OwnerID: 2, Format: "pdf", CorrelationID: "abc"}, 3)
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if task.Type() != TypeResumeExport {
		t.Fatalf("unexpected type %q", task.Type())
	}

	p, err := ParseResumeExportPayload(task.Payload())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.ResumeID != 5 || p.OwnerID != 2 || p.Format != "pdf" || p.CorrelationID != "abc" {
		t.Fatalf("unexpected payload %+v", p)
	}
}

func TestParseResumeExportPayloadRejectsMissingIDs(t *testing.T) {
	if _, err := ParseResumeExportPayload([]byte(`{"format":"pdf"}`)); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := ParseResumeExportPayload([]byte(`not json`)); err == nil {
		t.Fatalf("expected error")
	}
}
