package obligation

import (
	"math"
	"testing"
)

func TestUrgencyOrderingUsesRank(t *testing.T) {
	for i := 1; i < len(Urgencies); i++ {
		lower, higher := Urgencies[i-1], Urgencies[i]
		if !lower.Less(higher) {
			t.Fatalf("expected %s < %s", lower, higher)
		}
		if higher.Less(lower) {
			t.Fatalf("expected %s not < %s", higher, lower)
		}
	}
	if Urgency("bogus").Rank() != 0 {
		t.Fatalf("unknown urgency must rank 0")
	}
}

func TestParseUrgencyAndCategory(t *testing.T) {
	u, err := ParseUrgency(" Critical ")
	if err != nil || u != UrgencyCritical {
		t.Fatalf("parse urgency = %q, %v", u, err)
	}
	if _, err := ParseUrgency("urgent"); err == nil {
		t.Fatalf("expected error for unknown urgency")
	}
	c, err := ParseCategory("Dialogue-Promise")
	if err != nil || c != CategoryDialoguePromise {
		t.Fatalf("parse category = %q, %v", c, err)
	}
	if _, err := ParseCategory("romance"); err == nil {
		t.Fatalf("expected error for unknown category")
	}
}

func TestChaptersSinceIntroducedSaturates(t *testing.T) {
	o := Obligation{ChapterIntroduced: 4}
	if got := o.ChaptersSinceIntroduced(2); got != 0 {
		t.Fatalf("chapters since = %d, want 0", got)
	}
	if got := o.ChaptersSinceIntroduced(9); got != 5 {
		t.Fatalf("chapters since = %d, want 5", got)
	}
}

func TestClampHandlesNaN(t *testing.T) {
	if got := Clamp(math.NaN(), 0, 1); got != 0 {
		t.Fatalf("clamp NaN = %v, want 0", got)
	}
	if got := Clamp(4, 0, 1); got != 1 {
		t.Fatalf("clamp 4 = %v, want 1", got)
	}
}

func TestCloneDoesNotShareSlices(t *testing.T) {
	o := Obligation{ID: "a", Dependencies: []string{"b"}, CharactersInvolved: []string{"Mara"}}
	c := o.Clone()
	c.Dependencies[0] = "z"
	c.CharactersInvolved[0] = "Ivo"
	if o.Dependencies[0] != "b" || o.CharactersInvolved[0] != "Mara" {
		t.Fatalf("clone shares backing arrays: %+v", o)
	}
}
