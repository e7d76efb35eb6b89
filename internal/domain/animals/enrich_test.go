package animals

import (
	"fmt"
	"testing"
	"time"
)

func TestEstimateClass(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	days := func(n int) time.Time { return base.AddDate(0, 0, n) }

	cases := []struct {
		name  string
		dates []time.Time
		want  string
	}{
		{"sin inseminaciones", nil, ClassHeifer},
		{"una sola", []time.Time{base}, ClassHeifer},
		{"seguidas sin hueco", []time.Time{base, days(21), days(42)}, ClassHeifer},
		{"hueco de parto", []time.Time{base, days(300)}, ClassCow},
		{"hueco exacto de 180 no alcanza", []time.Time{base, days(180)}, ClassHeifer},
		{"desordenadas con hueco", []time.Time{days(300), base, days(321)}, ClassCow},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := EstimateClass(tc.dates); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestPregnancyStatusText(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	in := func(n int) *time.Time {
		d := now.AddDate(0, 0, n)
		return &d
	}

	cases := []struct {
		name      string
		expected  *time.Time
		confirmed *time.Time
		want      string
	}{
		{"sin fecha", nil, nil, "Tohumlama Tarihi Bilinmiyor"},
		{"ya pasó", in(-3), nil, "Doğum Gerçekleşti/Geçti"},
		{"últimos 20 días", in(10), nil, fmt.Sprintf("Doğuma SON 20 GÜN! (%d gün kaldı)", 10)},
		{"borde de 20 días", in(20), nil, fmt.Sprintf("Doğuma SON 20 GÜN! (%d gün kaldı)", 20)},
		{"últimos 2 meses", in(45), nil, fmt.Sprintf("Doğuma SON 2 AY! (%d gün kaldı)", 45)},
		{"falta mucho sin confirmar", in(200), nil, "Tohumlandı, Gebelik Bekleniyor"},
		{"confirmada", in(200), in(-15), "Gebelik Onaylandı"},
		{"confirmación a futuro no cuenta", in(200), in(5), "Tohumlandı, Gebelik Bekleniyor"},
		{"confirmación no pisa la recta final", in(10), in(-15), fmt.Sprintf("Doğuma SON 20 GÜN! (%d gün kaldı)", 10)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PregnancyStatusText(tc.expected, tc.confirmed, now); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestEnrich_ConfirmedPregnancyStatus(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	last := now.AddDate(0, 0, -30) // parto esperado a 255 días, rama "lejos"
	confirmed := now.AddDate(0, 0, -10)

	out := Enrich([]Record{{
		UUID:               "u1",
		Inseminations:      []Insemination{{Date: &last, Bull: "Toro-1"}},
		PregnancyConfirmed: &confirmed,
	}}, now)

	if out[0].PregnancyText != "Gebelik Onaylandı" {
		t.Fatalf("expected confirmed status, got %q", out[0].PregnancyText)
	}
}

func TestEnrich_DerivesExpectedBirthFromLastInsemination(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	last := now.AddDate(0, 0, -100)
	older := last.AddDate(0, 0, -300)

	recs := []Record{{
		UUID: "u1",
		Inseminations: []Insemination{
			{Date: &older, Bull: "Toro-1"},
			{Date: &last, Bull: "Toro-2"},
		},
	}}

	out := Enrich(recs, now)
	if len(out) != 1 {
		t.Fatalf("expected 1 record, got %d", len(out))
	}

	wantBirth := last.AddDate(0, 0, GestationPeriodDays)
	if out[0].ExpectedBirth == nil || !out[0].ExpectedBirth.Equal(wantBirth) {
		t.Fatalf("expected birth %v, got %v", wantBirth, out[0].ExpectedBirth)
	}
	// hueco >180 días entre inseminaciones: ya parió
	if out[0].Class != ClassCow {
		t.Fatalf("expected %s, got %s", ClassCow, out[0].Class)
	}
	if out[0].PregnancyText == "" {
		t.Fatalf("expected pregnancy text set")
	}

	// el original no se toca
	if recs[0].ExpectedBirth != nil || recs[0].Class != "" {
		t.Fatalf("Enrich mutated its input: %#v", recs[0])
	}
}

func TestEnrich_NoInseminations(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	out := Enrich([]Record{{UUID: "u1"}}, now)
	if out[0].ExpectedBirth != nil {
		t.Fatalf("expected nil expected birth, got %v", out[0].ExpectedBirth)
	}
	if out[0].Class != ClassHeifer {
		t.Fatalf("expected %s, got %s", ClassHeifer, out[0].Class)
	}
	if out[0].PregnancyText != "Tohumlama Tarihi Bilinmiyor" {
		t.Fatalf("unexpected pregnancy text %q", out[0].PregnancyText)
	}
}

func TestIsPregnant(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	future := now.AddDate(0, 0, 30)
	past := now.AddDate(0, 0, -30)

	if !IsPregnant(Record{ExpectedBirth: &future}, now) {
		t.Fatalf("expected pregnant with future expected birth")
	}
	if IsPregnant(Record{ExpectedBirth: &past}, now) {
		t.Fatalf("expected not pregnant after expected birth passed")
	}
	if IsPregnant(Record{}, now) {
		t.Fatalf("expected not pregnant without expected birth")
	}
}
