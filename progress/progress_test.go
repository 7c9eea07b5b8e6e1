package progress

import (
	"bytes"
	"errors"
	"testing"
)

func TestDotsOutput(t *testing.T) {
	var buf bytes.Buffer
	d := NewDots(&buf)

	d.RegionStarted("us-east-1", 4)
	d.Resolved("us-east-1", "s3", "s3.us-east-1.amazonaws.com")
	d.Absent("us-east-1", "iam")
	d.Failed("us-east-1", "ec2", errors.New("boom"))
	d.Resolved("us-east-1", "sqs", "sqs.us-east-1.amazonaws.com")
	d.RegionFinished("us-east-1")

	want := "Retrieving 4 endpoint(s) for us-east-1... .-!. done.\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	var rep Reporter = r

	rep.RegionStarted("eu-west-1", 2)
	rep.Resolved("eu-west-1", "s3", "s3.eu-west-1.amazonaws.com")
	rep.Failed("eu-west-1", "ec2", errors.New("denied"))
	rep.RegionFinished("eu-west-1")

	events := r.Events()
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}
	if events[0].Kind != KindStarted || events[0].Services != 2 {
		t.Errorf("unexpected first event: %+v", events[0])
	}
	if events[2].Kind != KindFailed || events[2].Err == nil {
		t.Errorf("expected failed event with error, got %+v", events[2])
	}
	if r.Count(KindResolved) != 1 || r.Count(KindAbsent) != 0 {
		t.Errorf("unexpected counts: resolved=%d absent=%d", r.Count(KindResolved), r.Count(KindAbsent))
	}

	// Events returns a copy.
	events[0].Region = "mutated"
	if r.Events()[0].Region != "eu-west-1" {
		t.Error("recorder state was mutated through Events")
	}
}

func TestNopSatisfiesReporter(t *testing.T) {
	var rep Reporter = Nop{}
	rep.RegionStarted("us-east-1", 1)
	rep.Failed("us-east-1", "s3", errors.New("ignored"))
	rep.RegionFinished("us-east-1")
}
