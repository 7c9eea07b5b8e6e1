package result

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
)

func TestEncodeSortedAndIndented(t *testing.T) {
	m := New()
	m.Set("us-east-2", "s3", "s3.us-east-2.amazonaws.com")
	m.Set("us-east-1", "s3", "s3.us-east-1.amazonaws.com")
	m.Set("us-east-1", "ec2", "ec2.us-east-1.amazonaws.com")

	var buf bytes.Buffer
	if err := Encode(&buf, m); err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	want := `{
    "us-east-1": {
        "ec2": "ec2.us-east-1.amazonaws.com",
        "s3": "s3.us-east-1.amazonaws.com"
    },
    "us-east-2": {
        "s3": "s3.us-east-2.amazonaws.com"
    }
}
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeCompactForm(t *testing.T) {
	m := New()
	m.Set("us-east-1", "s3", "s3.us-east-1.amazonaws.com")
	m.Set("us-east-2", "s3", "s3.us-east-2.amazonaws.com")

	var buf bytes.Buffer
	if err := Encode(&buf, m); err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, buf.Bytes()); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	want := `{"us-east-1":{"s3":"s3.us-east-1.amazonaws.com"},"us-east-2":{"s3":"s3.us-east-2.amazonaws.com"}}`
	if compact.String() != want {
		t.Errorf("expected %s, got %s", want, compact.String())
	}
}

func TestEncodeEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, New()); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if buf.String() != "{}\n" {
		t.Errorf("expected empty object, got %q", buf.String())
	}
}

func TestSetIgnoresEmptyValues(t *testing.T) {
	m := New()
	m.Set("us-east-1", "s3", "")
	m.Set("", "s3", "s3.amazonaws.com")
	m.Set("us-east-1", "", "s3.amazonaws.com")

	if m.Len() != 0 {
		t.Errorf("expected no entries, got %d", m.Len())
	}
	if len(m.Regions()) != 0 {
		t.Errorf("expected no regions, got %v", m.Regions())
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	m := New()
	m.Set("us-east-1", "s3", "s3.us-east-1.amazonaws.com")

	snap := m.Snapshot()
	snap["us-east-1"]["s3"] = "mutated"
	snap["eu-west-1"] = map[string]string{"s3": "x"}

	if got, _ := m.Get("us-east-1", "s3"); got != "s3.us-east-1.amazonaws.com" {
		t.Errorf("map was mutated through snapshot: %s", got)
	}
	if diff := cmp.Diff([]string{"us-east-1"}, m.Regions()); diff != "" {
		t.Errorf("regions mismatch (-want +got):\n%s", diff)
	}
}

func TestConcurrentSet(t *testing.T) {
	m := New()
	var wg sync.WaitGroup
	for r := 0; r < 8; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			for s := 0; s < 50; s++ {
				m.Set(fmt.Sprintf("region-%d", r), fmt.Sprintf("svc-%d", s), "host")
			}
		}(r)
	}
	wg.Wait()

	if m.Len() != 8*50 {
		t.Errorf("expected %d entries, got %d", 8*50, m.Len())
	}
}

func TestMarshalJSON(t *testing.T) {
	m := New()
	m.Set("eu-west-1", "sqs", "sqs.eu-west-1.amazonaws.com")

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]map[string]string
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if diff := cmp.Diff(m.Snapshot(), decoded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
