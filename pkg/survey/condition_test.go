package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsVisible_ConditionDisabled(t *testing.T) {
	q := Question{ID: 6, ConditionEnabled: false, ConditionExpression: "5=Oui"}

	assert.True(t, IsVisible(q, nil))
	assert.True(t, IsVisible(q, Answers{5: TextAnswer("Non")}))
}

func TestIsVisible_FailOpen(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"only quotes", `""`},
		{"no equals", "garbage"},
		{"non numeric id", "abc=Oui"},
		{"all atoms malformed", "x ET y OU z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Question{ID: 6, ConditionEnabled: true, ConditionExpression: tt.expr}
			assert.True(t, IsVisible(q, nil))
			assert.True(t, IsVisible(q, Answers{5: TextAnswer("Non")}))
		})
	}
}

func TestIsVisible_AtomComparison(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		answers Answers
		want    bool
	}{
		{"missing answer", "5=Oui", Answers{}, false},
		{"exact match", "5=Oui", Answers{5: TextAnswer("Oui")}, true},
		{"case and space insensitive", "5= oui ", Answers{5: TextAnswer("  OUI")}, true},
		{"quoted expression", `"5=Oui"`, Answers{5: TextAnswer("Oui")}, true},
		{"quoted value", `5='Oui'`, Answers{5: TextAnswer("oui")}, true},
		{"mismatch", "5=Oui", Answers{5: TextAnswer("Non")}, false},
		{"number answer", "7=3", Answers{7: NumberAnswer(3)}, true},
		{"decimal number", "7=2.5", Answers{7: NumberAnswer(2.5)}, true},
		{"value containing equals", "5=a=b", Answers{5: TextAnswer("a=b")}, true},
		{"malformed atom is true", "5=Oui ET junk", Answers{5: TextAnswer("Oui")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Question{ID: 6, ConditionEnabled: true, ConditionExpression: tt.expr}
			assert.Equal(t, tt.want, IsVisible(q, tt.answers))
		})
	}
}

func TestIsVisible_OrOfAnds(t *testing.T) {
	// (A1 and A2) or A3
	exprs := []string{
		"1=a ET 2=b OU 3=c",
		"3=c OU 2=b ET 1=a",
		"1=a AND 2=b OR 3=c",
	}
	vals := []bool{false, true}

	for _, expr := range exprs {
		q := Question{ID: 9, ConditionEnabled: true, ConditionExpression: expr}
		for _, a1 := range vals {
			for _, a2 := range vals {
				for _, a3 := range vals {
					answers := Answers{}
					if a1 {
						answers[1] = TextAnswer("a")
					}
					if a2 {
						answers[2] = TextAnswer("b")
					}
					if a3 {
						answers[3] = TextAnswer("c")
					}
					want := (a1 && a2) || a3
					assert.Equal(t, want, IsVisible(q, answers), "expr=%q a1=%v a2=%v a3=%v", expr, a1, a2, a3)
				}
			}
		}
	}
}

func TestParseCondition_Warnings(t *testing.T) {
	cond, warns := ParseCondition(12, "5=Oui ET broken OU x=1")

	assert.Len(t, cond.Groups, 2)
	assert.Len(t, cond.Groups[0], 2)
	assert.Len(t, warns, 2)
	assert.Equal(t, 12, warns[0].QuestionID)
	assert.Equal(t, "broken", warns[0].Fragment)
	assert.Contains(t, warns[1].Error(), "non-numeric")
}

func TestParseCondition_Empty(t *testing.T) {
	cond, warns := ParseCondition(1, "  ")

	assert.Empty(t, cond.Groups)
	assert.Empty(t, warns)
	assert.True(t, cond.Eval(nil))
}

func TestCombine_LaterOverwrites(t *testing.T) {
	collected := []PhaseRecord{
		{PhaseName: "Identification", Answers: Answers{1: TextAnswer("a"), 2: TextAnswer("x")}},
		{PhaseName: "Bornes AC", Answers: Answers{2: TextAnswer("y")}},
	}
	current := Answers{2: TextAnswer("z"), 3: NumberAnswer(4)}

	combined := Combine(collected, current)

	assert.Equal(t, "a", combined[1].String())
	assert.Equal(t, "z", combined[2].String())
	assert.Equal(t, "4", combined[3].String())
	assert.Equal(t, "x", collected[0].Answers[2].String(), "inputs must not be mutated")
}
