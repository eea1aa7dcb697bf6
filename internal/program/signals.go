package program

import (
	"fmt"

	"github.com/roach88/reactor/internal/arrow"
	"github.com/roach88/reactor/internal/runtime"
	"github.com/roach88/reactor/internal/signal"
)

// Kind is the kind of a declared signal.
type Kind string

const (
	KindPure  Kind = "pure"
	KindValue Kind = "value"
	KindUniq  Kind = "uniq"
)

// SignalDecl declares a signal used by a program.
type SignalDecl struct {
	Name    string `yaml:"name" json:"name"`
	Kind    Kind   `yaml:"kind" json:"kind"`
	Combine string `yaml:"combine,omitempty" json:"combine,omitempty"`
}

// Combiners maps combine names to functions.
var Combiners = map[string]func(int64, int64) int64{
	"sum":  signal.Sum[int64],
	"max":  signal.Max[int64],
	"min":  signal.Min[int64],
	"last": signal.Last[int64],
}

// bound is a declared signal instantiated for one compilation.
type bound struct {
	decl     SignalDecl
	presence signal.Signal
	emit     arrow.Arrow[int64, int64]
	// await is nil for pure signals.
	await arrow.Arrow[int64, int64]
}

func bind(decl SignalDecl) (*bound, error) {
	b := &bound{decl: decl}

	switch decl.Kind {
	case KindPure:
		if decl.Combine != "" {
			return nil, fmt.Errorf("pure signal %q cannot have a combine function", decl.Name)
		}
		s := signal.NewPure()
		b.presence = s
		b.emit = passThrough(s.Emit(), func(int64) arrow.Unit { return arrow.Unit{} })
		return b, nil

	case KindValue, KindUniq:
		name := decl.Combine
		if name == "" {
			name = "sum"
		}
		combine, ok := Combiners[name]
		if !ok {
			return nil, fmt.Errorf("signal %q: unknown combine %q", decl.Name, decl.Combine)
		}
		var (
			emit  arrow.Arrow[int64, arrow.Unit]
			await arrow.Arrow[arrow.Unit, int64]
		)
		if decl.Kind == KindValue {
			s := signal.NewValue(combine)
			b.presence = s
			emit, await = s.Emit(), s.Await()
		} else {
			e, a := signal.NewUniq(combine)
			b.presence = e
			emit, await = e.Emit(), a.Await()
		}
		b.emit = passThrough(emit, func(v int64) int64 { return v })
		b.await = arrow.Bind(arrow.Value[int64](arrow.Unit{}), await)
		return b, nil

	default:
		return nil, fmt.Errorf("signal %q: unknown kind %q", decl.Name, decl.Kind)
	}
}

// passThrough runs x on in(v) and then continues with the original v.
func passThrough[X any](x arrow.Arrow[X, arrow.Unit], in func(int64) X) arrow.Arrow[int64, int64] {
	return arrow.Func[int64, int64](func(rt runtime.Runtime, v int64, k arrow.Continuation[int64]) {
		x.Call(rt, in(v), func(rt runtime.Runtime, _ arrow.Unit) {
			k(rt, v)
		})
	})
}
