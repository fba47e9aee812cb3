package diag

import "testing"

func TestReportEmptyAndMerge(t *testing.T) {
	var r Report
	if !r.Empty() {
		t.Fatal("expected zero report to be empty")
	}
	r.AddWarning("missing package.json", "casper", "add a package.json")
	other := Report{}
	other.AddError("missing index.html", "casper", "")
	r.Merge(other)
	if r.Empty() {
		t.Fatal("expected merged report to carry findings")
	}
	if len(r.Errors) != 1 || len(r.Warnings) != 1 {
		t.Fatalf("unexpected counts: errors=%d warnings=%d", len(r.Errors), len(r.Warnings))
	}
}

func TestIssueString(t *testing.T) {
	got := Issue{Message: "bad key", Context: "server.gzip", Help: "use server.compress"}.String()
	want := "bad key (server.gzip) - use server.compress"
	if got != want {
		t.Fatalf("unexpected issue string: got %q want %q", got, want)
	}
	if got := (Issue{Message: "only"}).String(); got != "only" {
		t.Fatalf("unexpected bare issue string: %q", got)
	}
}
