package sabnfvm

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	tassert "github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_ResultFields(t *testing.T) {
	g := mustBuild(t, func(b *Builder) {
		b.Rule("S", Tls("ab"))
	})
	p := NewParser()

	result, err := p.ParseString(g, "S", "ab", nil)
	require.NoError(t, err)

	expected := Result{
		Success:      true,
		State:        MatchState,
		Length:       2,
		Matched:      2,
		MaxMatched:   2,
		MaxTreeDepth: 2,
		NodeHits:     2,
		InputLength:  2,
		SubBegin:     0,
		SubEnd:       2,
		SubLength:    2,
	}
	if diffStr := cmp.Diff(expected, result); diffStr != "" {
		t.Errorf("%s: wrong result (-want +got):\n%s", t.Name(), diffStr)
	}
}

func TestParser_Substring(t *testing.T) {
	g := mustBuild(t, func(b *Builder) {
		b.Rule("S", Cat(Abg(), Tls("ab"), Aen()))
	})
	p := NewParser()

	result, err := p.ParseSubstring(g, "S", []rune("xaby"), 1, 2, nil)
	require.NoError(t, err)
	tassert.True(t, result.Success)
	tassert.Equal(t, 1, result.SubBegin)
	tassert.Equal(t, 3, result.SubEnd)
	tassert.Equal(t, 4, result.InputLength)
}

func TestParser_SubstringLookAheadWidens(t *testing.T) {
	// The look-ahead may read past the window end, up to the full
	// input.
	g := mustBuild(t, func(b *Builder) {
		b.Rule("S", Cat(Tls("ab"), And(Tbs("!"))))
	})
	p := NewParser()

	result, err := p.ParseSubstring(g, "S", []rune("ab!"), 0, 2, nil)
	require.NoError(t, err)
	tassert.True(t, result.Success)

	result, err = p.ParseSubstring(g, "S", []rune("ab?"), 0, 2, nil)
	require.NoError(t, err)
	tassert.False(t, result.Success)
}

func TestParser_ParseAt(t *testing.T) {
	g := mustBuild(t, func(b *Builder) {
		b.Rule("S", Rnm("A"))
		b.Rule("A", Tls("a"))
	})
	p := NewParser()

	result, err := p.ParseAt(g, 1, []rune("a"), 0, 1, nil)
	require.NoError(t, err)
	tassert.True(t, result.Success)

	_, err = p.ParseAt(g, 7, []rune("a"), 0, 1, nil)
	tassert.ErrorIs(t, err, ErrStartRule)
}

func TestParser_SetupErrors(t *testing.T) {
	g := mustBuild(t, func(b *Builder) {
		b.Rule("S", Udt("u_x", false))
	})
	input := []rune("a")

	p := NewParser()
	_, err := p.Parse(g, "nosuch", input, nil)
	tassert.ErrorIs(t, err, ErrStartRule)

	_, err = p.Parse(g, "S", input, nil)
	tassert.ErrorIs(t, err, ErrUDTCallback, "UDT callbacks are mandatory")

	p.SetUDTCallback("u_x", func(d *CallbackData) { d.State = NoMatchState })
	_, err = p.ParseSubstring(g, "S", input, 0, 5, nil)
	tassert.ErrorIs(t, err, ErrWindow)
	_, err = p.ParseSubstring(g, "S", input, -1, 1, nil)
	tassert.ErrorIs(t, err, ErrWindow)

	p.SetRuleCallback("nosuch", func(d *CallbackData) {})
	_, err = p.Parse(g, "S", input, nil)
	tassert.ErrorIs(t, err, ErrCallbackName)
}

func TestParser_InvalidGrammar(t *testing.T) {
	p := NewParser()
	_, err := p.Parse(&Grammar{}, "S", []rune("a"), nil)
	tassert.ErrorIs(t, err, ErrGrammar)

	bad := &Grammar{Rules: []Rule{{Name: "S", Lower: "s", Ops: []Op{{Code: OpRNM, Index: 9}}}}}
	_, err = p.Parse(bad, "S", []rune("a"), nil)
	tassert.ErrorIs(t, err, ErrGrammar)
}

func TestParser_RuleCallbackPre(t *testing.T) {
	// The pre-phase callback short-circuits the rule's opcodes: the
	// rule behaves like a terminal matching two characters.
	g := mustBuild(t, func(b *Builder) {
		b.Rule("S", Rnm("A"))
		b.Rule("A", Tbs("zz"))
	})
	p := NewParser()
	p.SetRuleCallback("A", func(d *CallbackData) {
		d.State = MatchState
		d.PhraseLength = 2
	})

	result, err := p.ParseString(g, "S", "ab", nil)
	require.NoError(t, err)
	tassert.True(t, result.Success)
	tassert.Equal(t, 2, result.Matched)
}

func TestParser_RuleCallbackPost(t *testing.T) {
	// The post-phase callback sees the rule's outcome and may overwrite
	// it.
	g := mustBuild(t, func(b *Builder) {
		b.Rule("S", Rnm("A"))
		b.Rule("A", Tbs("ab"))
	})
	p := NewParser()
	var phases []State
	p.SetRuleCallback("A", func(d *CallbackData) {
		phases = append(phases, d.State)
		if d.State == MatchState {
			d.State = NoMatchState
		}
	})

	result, err := p.ParseString(g, "S", "ab", nil)
	require.NoError(t, err)
	tassert.False(t, result.Success)
	require.Len(t, phases, 2)
	tassert.Equal(t, ActiveState, phases[0])
	tassert.Equal(t, MatchState, phases[1])
}

func TestParser_RuleCallbackCoercion(t *testing.T) {
	// MATCH with phrase length zero is coerced to EMPTY.
	g := mustBuild(t, func(b *Builder) {
		b.Rule("S", Rnm("A"))
		b.Rule("A", Tbs("x"))
	})
	p := NewParser()
	p.SetRuleCallback("A", func(d *CallbackData) {
		d.State = MatchState
		d.PhraseLength = 0
	})

	result, err := p.ParseString(g, "S", "", nil)
	require.NoError(t, err)
	tassert.True(t, result.Success)
	tassert.Equal(t, EmptyState, result.State)
}

func TestParser_RuleCallbackViolations(t *testing.T) {
	g := mustBuild(t, func(b *Builder) {
		b.Rule("S", Rnm("A"))
		b.Rule("A", Tbs("a"))
	})

	p := NewParser()
	p.SetRuleCallback("A", func(d *CallbackData) {
		d.State = MatchState
		d.PhraseLength = 99
	})
	_, err := p.ParseString(g, "S", "a", nil)
	tassert.ErrorIs(t, err, ErrCallbackLength)

	p = NewParser()
	p.SetRuleCallback("A", func(d *CallbackData) {
		if d.State != ActiveState {
			d.State = ActiveState
		}
	})
	_, err = p.ParseString(g, "S", "a", nil)
	tassert.ErrorIs(t, err, ErrCallbackActive)

	p = NewParser()
	p.SetRuleCallback("A", func(d *CallbackData) {
		d.State = State(42)
	})
	_, err = p.ParseString(g, "S", "a", nil)
	tassert.ErrorIs(t, err, ErrCallbackState)
}

func TestParser_UDTEmptyViolation(t *testing.T) {
	g := mustBuild(t, func(b *Builder) {
		b.Rule("S", Udt("u_x", false))
	})
	p := NewParser()
	p.SetUDTCallback("u_x", func(d *CallbackData) {
		d.State = EmptyState
	})
	_, err := p.ParseString(g, "S", "a", nil)
	tassert.ErrorIs(t, err, ErrUDTEmpty)
}

func TestParser_UDTEmptyAllowed(t *testing.T) {
	g := mustBuild(t, func(b *Builder) {
		b.Rule("S", Cat(Udt("e_x", true), Tbs("a")))
	})
	p := NewParser()
	p.SetUDTCallback("e_x", func(d *CallbackData) {
		d.State = EmptyState
	})
	result, err := p.ParseString(g, "S", "a", nil)
	require.NoError(t, err)
	tassert.True(t, result.Success)
}

func TestParser_EvaluateRuleHook(t *testing.T) {
	// A UDT callback that delegates to a grammar rule through the
	// advanced hook.
	g := mustBuild(t, func(b *Builder) {
		b.Rule("S", Udt("u_delegate", false))
		b.Rule("digits", Rep(1, RepInfinite, Trg('0', '9')))
	})
	p := NewParser()
	p.SetUDTCallback("u_delegate", func(d *CallbackData) {
		if err := d.EvaluateRule(1, d.PhraseIndex); err != nil {
			d.State = NoMatchState
		}
	})

	result, err := p.ParseString(g, "S", "123", nil)
	require.NoError(t, err)
	tassert.True(t, result.Success)
	tassert.Equal(t, 3, result.Matched)
}

func TestParser_UserData(t *testing.T) {
	g := mustBuild(t, func(b *Builder) {
		b.Rule("S", Udt("u_x", false))
	})
	p := NewParser()
	seen := ""
	p.SetUDTCallback("u_x", func(d *CallbackData) {
		seen = d.UserData.(string)
		d.State = MatchState
		d.PhraseLength = len(d.Input)
	})
	_, err := p.ParseString(g, "S", "a", "hello")
	require.NoError(t, err)
	tassert.Equal(t, "hello", seen)
}

func TestParser_Reuse(t *testing.T) {
	g := mustBuild(t, func(b *Builder) {
		b.Rule("S", Rep(1, RepInfinite, Trg('a', 'z')))
	})
	p := NewParser()
	for _, input := range []string{"abc", "x", "qrstuv"} {
		result, err := p.ParseString(g, "S", input, nil)
		require.NoError(t, err)
		tassert.True(t, result.Success)
		tassert.Equal(t, len(input), result.Matched)
	}
}
