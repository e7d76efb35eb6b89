package animals

import (
	"encoding/json"
	"testing"
	"time"
)

func TestRecord_RoundTripPreservesUnknownFields(t *testing.T) {
	in := []byte(`{
		"uuid": "u1",
		"owner_id": "owner-1",
		"last_modified": "2026-03-10T12:00:00Z",
		"isletme_kupesi": "A001",
		"tohumlamalar": [{"tohumlama_tarihi": "2026-01-05T00:00:00Z", "sperma": "Toro-7"}],
		"gebeli_onay_tarihi": "2026-02-20T00:00:00Z",
		"custom_score": 42,
		"vet_notes": {"last_visit": "2026-02-01"}
	}`)

	var rec Record
	if err := json.Unmarshal(in, &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.UUID != "u1" || rec.FarmTag != "A001" {
		t.Fatalf("known fields not decoded: %#v", rec)
	}
	if len(rec.Inseminations) != 1 || rec.Inseminations[0].Bull != "Toro-7" {
		t.Fatalf("inseminations not decoded: %#v", rec.Inseminations)
	}
	if _, ok := rec.Extra["custom_score"]; !ok {
		t.Fatalf("expected custom_score preserved in Extra, got %#v", rec.Extra)
	}
	if rec.PregnancyConfirmed == nil || rec.PregnancyConfirmed.Day() != 20 {
		t.Fatalf("confirmation date not decoded: %v", rec.PregnancyConfirmed)
	}
	if _, ok := rec.Extra["gebeli_onay_tarihi"]; ok {
		t.Fatalf("confirmation date leaked into Extra")
	}

	out, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var again map[string]json.RawMessage
	if err := json.Unmarshal(out, &again); err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if string(again["custom_score"]) != "42" {
		t.Fatalf("expected custom_score=42 after round trip, got %s", again["custom_score"])
	}
	if _, ok := again["vet_notes"]; !ok {
		t.Fatalf("expected vet_notes after round trip, got %s", out)
	}
	if string(again["isletme_kupesi"]) != `"A001"` {
		t.Fatalf("expected farm tag after round trip, got %s", again["isletme_kupesi"])
	}
}

func TestRecord_TolerantDateDecoding(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want *time.Time
	}{
		{"rfc3339", `{"dogum_tarihi": "2023-05-10T00:00:00Z"}`, tp(2023, 5, 10)},
		{"naive iso", `{"dogum_tarihi": "2023-05-10T00:00:00"}`, tp(2023, 5, 10)},
		{"date only", `{"dogum_tarihi": "2023-05-10"}`, tp(2023, 5, 10)},
		{"garbage", `{"dogum_tarihi": "no idea"}`, nil},
		{"missing", `{}`, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var rec Record
			if err := json.Unmarshal([]byte(tc.in), &rec); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if tc.want == nil {
				if rec.BirthDate != nil {
					t.Fatalf("expected nil birth date, got %v", rec.BirthDate)
				}
				return
			}
			if rec.BirthDate == nil || !rec.BirthDate.Equal(*tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, rec.BirthDate)
			}
		})
	}
}

func TestRecord_ModifiedTimeZeroOnBadTimestamp(t *testing.T) {
	for _, raw := range []string{"", "garbage", "10.03.2026"} {
		rec := Record{LastModified: raw}
		if !rec.ModifiedTime().IsZero() {
			t.Fatalf("expected zero time for %q, got %v", raw, rec.ModifiedTime())
		}
	}

	rec := Record{LastModified: "2026-03-10T12:00:00Z"}
	if rec.ModifiedTime().IsZero() {
		t.Fatalf("expected parsed timestamp, got zero")
	}
}

func TestRecord_DisplayNameFallbackOrder(t *testing.T) {
	cases := []struct {
		rec  Record
		want string
	}{
		{Record{FarmTag: "A001", StateTag: "TR-1", CollarNo: "C-1", UUID: "u1"}, "A001"},
		{Record{StateTag: "TR-1", CollarNo: "C-1", UUID: "u1"}, "TR-1"},
		{Record{CollarNo: "C-1", UUID: "u1"}, "C-1"},
		{Record{UUID: "u1"}, "u1"},
	}
	for _, tc := range cases {
		if got := tc.rec.DisplayName(); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestRecord_LastInsemination(t *testing.T) {
	d1 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	rec := Record{Inseminations: []Insemination{
		{Date: &d1, Bull: "Toro-1"},
		{Date: nil, Bull: "Toro-sin-fecha"},
		{Date: &d2, Bull: "Toro-2"},
	}}

	last := rec.LastInsemination()
	if last == nil || !last.Equal(d2) {
		t.Fatalf("expected %v, got %v", d2, last)
	}

	if (Record{}).LastInsemination() != nil {
		t.Fatalf("expected nil for record without inseminations")
	}
}

func tp(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestRecord_CloneIsIndependent(t *testing.T) {
	d := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	orig := Record{
		UUID:          "u1",
		Inseminations: []Insemination{{Date: &d, Bull: "Toro-1"}},
		Extra:         map[string]json.RawMessage{"k": json.RawMessage(`1`)},
	}

	clone := orig.Clone()
	clone.Inseminations[0].Bull = "otro"
	clone.Extra["k"] = json.RawMessage(`2`)

	if orig.Inseminations[0].Bull != "Toro-1" {
		t.Fatalf("clone shares insemination slice")
	}
	if string(orig.Extra["k"]) != "1" {
		t.Fatalf("clone shares Extra map")
	}
}
