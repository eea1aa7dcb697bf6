package program

import (
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/reactor/internal/arrow"
	"github.com/roach88/reactor/internal/runtime"
	"github.com/roach88/reactor/internal/signal"
	"github.com/roach88/reactor/internal/trace"
)

// RootPath is the path reported for the top-level node.
const RootPath = "program"

// Program is a compiled program.
type Program struct {
	// Arrow runs the program on its int64 input.
	Arrow arrow.Arrow[int64, int64]

	// Nodes is the number of nodes compiled.
	Nodes int
}

// Option configures compilation.
type Option func(*compiler)

// WithRecorder sets the recorder that log nodes write to.
//
// Default: a fresh recorder, discarded after the run.
func WithRecorder(rec *trace.Recorder) Option {
	return func(c *compiler) {
		c.recorder = rec
	}
}

// WithLogger sets the logger for compilation diagnostics.
//
// Default: slog.Default()
func WithLogger(logger *slog.Logger) Option {
	return func(c *compiler) {
		c.logger = logger
	}
}

type compiler struct {
	signals  map[string]*bound
	recorder *trace.Recorder
	logger   *slog.Logger
	nodes    int
}

// Compile builds the program rooted at root with the given signals. Every
// call creates fresh signal instances, so a compiled program must run on a
// single runtime.
func Compile(root *yaml.Node, decls []SignalDecl, opts ...Option) (*Program, error) {
	c := &compiler{
		signals:  make(map[string]*bound, len(decls)),
		recorder: trace.NewRecorder(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	for i, decl := range decls {
		path := fmt.Sprintf("signals[%d]", i)
		if decl.Name == "" {
			return nil, &CompileError{Path: path, Message: "signal name is required"}
		}
		if _, dup := c.signals[decl.Name]; dup {
			return nil, &CompileError{Path: path, Message: fmt.Sprintf("duplicate signal %q", decl.Name)}
		}
		b, err := bind(decl)
		if err != nil {
			return nil, &CompileError{Path: path, Message: err.Error()}
		}
		c.signals[decl.Name] = b
	}

	if root == nil {
		return nil, &CompileError{Path: RootPath, Message: "program is empty"}
	}
	if root.Kind == yaml.DocumentNode && len(root.Content) == 1 {
		root = root.Content[0]
	}

	x, err := c.node(RootPath, root)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("program compiled", "nodes", c.nodes, "signals", len(c.signals))
	return &Program{Arrow: x, Nodes: c.nodes}, nil
}

// Parse decodes a YAML document holding a single program node and compiles
// it.
func Parse(src []byte, decls []SignalDecl, opts ...Option) (*Program, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(src, &root); err != nil {
		return nil, fmt.Errorf("failed to parse program: %w", err)
	}
	if root.Kind == 0 {
		return nil, &CompileError{Path: RootPath, Message: "program is empty"}
	}
	return Compile(&root, decls, opts...)
}

type nodeFunc func(c *compiler, path string, n *yaml.Node) (arrow.Arrow[int64, int64], error)

var nodeKinds map[string]nodeFunc

func init() {
	nodeKinds = map[string]nodeFunc{
		"id":              compileID,
		"const":           compileConst,
		"add":             compileAdd,
		"mul":             compileMul,
		"log":             compileLog,
		"pause":           compilePause,
		"seq":             compileSeq,
		"par":             compilePar,
		"fork":            compileFork,
		"loop":            compileLoop,
		"emit":            compileEmit,
		"await":           compileAwait,
		"await_immediate": compileAwaitImmediate,
		"present":         compilePresent,
	}
}

// NodeKinds returns the accepted node keys.
func NodeKinds() []string {
	kinds := make([]string, 0, len(nodeKinds))
	for k := range nodeKinds {
		kinds = append(kinds, k)
	}
	return kinds
}

func (c *compiler) node(path string, n *yaml.Node) (arrow.Arrow[int64, int64], error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	c.nodes++

	switch n.Kind {
	case yaml.ScalarNode:
		if n.Value == "id" {
			return arrow.Identity[int64](), nil
		}
		return nil, errorAt(path, n, "expected a node mapping, got scalar %q", n.Value)
	case yaml.MappingNode:
	default:
		return nil, errorAt(path, n, "expected a node mapping")
	}

	if len(n.Content) != 2 {
		keys := make([]string, 0, len(n.Content)/2)
		for i := 0; i < len(n.Content); i += 2 {
			keys = append(keys, n.Content[i].Value)
		}
		return nil, errorAt(path, n, "node must have exactly one key, got [%s]", strings.Join(keys, ", "))
	}

	key, body := n.Content[0].Value, n.Content[1]
	compile, ok := nodeKinds[key]
	if !ok {
		return nil, errorAt(path, n.Content[0], "unknown node %q", key)
	}
	return compile(c, path+"."+key, body)
}

func errorAt(path string, n *yaml.Node, format string, args ...any) *CompileError {
	return &CompileError{Path: path, Line: n.Line, Message: fmt.Sprintf(format, args...)}
}

func intArg(path string, n *yaml.Node) (int64, error) {
	var v int64
	if n.Kind != yaml.ScalarNode {
		return 0, errorAt(path, n, "expected an integer")
	}
	if err := n.Decode(&v); err != nil {
		return 0, errorAt(path, n, "expected an integer, got %q", n.Value)
	}
	return v, nil
}

func stringArg(path string, n *yaml.Node) (string, error) {
	if n.Kind != yaml.ScalarNode || n.Value == "" {
		return "", errorAt(path, n, "expected a name")
	}
	return n.Value, nil
}

func (c *compiler) signal(path string, n *yaml.Node) (*bound, error) {
	name, err := stringArg(path, n)
	if err != nil {
		return nil, err
	}
	b, ok := c.signals[name]
	if !ok {
		return nil, errorAt(path, n, "undeclared signal %q", name)
	}
	return b, nil
}

// fields decodes a mapping body into named sub-nodes, rejecting unknown keys.
func fields(path string, n *yaml.Node, allowed ...string) (map[string]*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, errorAt(path, n, "expected a mapping with keys [%s]", strings.Join(allowed, ", "))
	}
	out := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i < len(n.Content); i += 2 {
		k := n.Content[i]
		known := false
		for _, a := range allowed {
			if k.Value == a {
				known = true
				break
			}
		}
		if !known {
			return nil, errorAt(path, k, "unknown field %q", k.Value)
		}
		if _, dup := out[k.Value]; dup {
			return nil, errorAt(path, k, "duplicate field %q", k.Value)
		}
		out[k.Value] = n.Content[i+1]
	}
	return out, nil
}

func compileID(_ *compiler, path string, n *yaml.Node) (arrow.Arrow[int64, int64], error) {
	if n.Kind != yaml.ScalarNode || (n.Tag != "!!null" && n.Value != "") {
		return nil, errorAt(path, n, "id takes no argument")
	}
	return arrow.Identity[int64](), nil
}

func compileConst(_ *compiler, path string, n *yaml.Node) (arrow.Arrow[int64, int64], error) {
	v, err := intArg(path, n)
	if err != nil {
		return nil, err
	}
	return arrow.Value[int64](v), nil
}

func compileAdd(_ *compiler, path string, n *yaml.Node) (arrow.Arrow[int64, int64], error) {
	d, err := intArg(path, n)
	if err != nil {
		return nil, err
	}
	return arrow.Map(func(v int64) int64 { return v + d }), nil
}

func compileMul(_ *compiler, path string, n *yaml.Node) (arrow.Arrow[int64, int64], error) {
	f, err := intArg(path, n)
	if err != nil {
		return nil, err
	}
	return arrow.Map(func(v int64) int64 { return v * f }), nil
}

func compileLog(c *compiler, path string, n *yaml.Node) (arrow.Arrow[int64, int64], error) {
	label, err := stringArg(path, n)
	if err != nil {
		return nil, err
	}
	rec := c.recorder
	return arrow.Func[int64, int64](func(rt runtime.Runtime, v int64, k arrow.Continuation[int64]) {
		rec.Record(rt.Now(), label, v)
		k(rt, v)
	}), nil
}

func compilePause(_ *compiler, path string, n *yaml.Node) (arrow.Arrow[int64, int64], error) {
	count, err := intArg(path, n)
	if err != nil {
		return nil, err
	}
	if count < 1 {
		return nil, errorAt(path, n, "pause needs at least 1 instant, got %d", count)
	}
	return arrow.PauseFor[int64](count), nil
}

func compileSeq(c *compiler, path string, n *yaml.Node) (arrow.Arrow[int64, int64], error) {
	if n.Kind != yaml.SequenceNode {
		return nil, errorAt(path, n, "seq expects a list of nodes")
	}
	if len(n.Content) == 0 {
		return nil, errorAt(path, n, "seq needs at least one node")
	}
	xs := make([]arrow.Arrow[int64, int64], len(n.Content))
	for i, child := range n.Content {
		x, err := c.node(fmt.Sprintf("%s[%d]", path, i), child)
		if err != nil {
			return nil, err
		}
		xs[i] = x
	}
	return arrow.Chain(xs...), nil
}

var joins = map[string]func(arrow.Pair[int64, int64]) int64{
	"sum":   func(p arrow.Pair[int64, int64]) int64 { return p.First + p.Second },
	"left":  func(p arrow.Pair[int64, int64]) int64 { return p.First },
	"right": func(p arrow.Pair[int64, int64]) int64 { return p.Second },
}

func compilePar(c *compiler, path string, n *yaml.Node) (arrow.Arrow[int64, int64], error) {
	f, err := fields(path, n, "left", "right", "join", "sync")
	if err != nil {
		return nil, err
	}

	sides := make([]arrow.Arrow[int64, int64], 2)
	for i, side := range []string{"left", "right"} {
		child, ok := f[side]
		if !ok {
			return nil, errorAt(path, n, "par requires %q", side)
		}
		if sides[i], err = c.node(path+"."+side, child); err != nil {
			return nil, err
		}
	}

	join := joins["sum"]
	if j, ok := f["join"]; ok {
		if join, ok = joins[j.Value]; !ok {
			return nil, errorAt(path+".join", j, "unknown join %q (want sum, left or right)", j.Value)
		}
	}

	var sync bool
	if s, ok := f["sync"]; ok {
		if err := s.Decode(&sync); err != nil {
			return nil, errorAt(path+".sync", s, "expected a boolean")
		}
	}

	var both arrow.Arrow[arrow.Pair[int64, int64], arrow.Pair[int64, int64]]
	if sync {
		both = arrow.SeqProduct(sides[0], sides[1])
	} else {
		both = arrow.Product(sides[0], sides[1])
	}

	split := arrow.Map(func(v int64) arrow.Pair[int64, int64] { return arrow.MakePair(v, v) })
	return arrow.Bind(arrow.Bind(split, both), arrow.Map(join)), nil
}

func compileFork(c *compiler, path string, n *yaml.Node) (arrow.Arrow[int64, int64], error) {
	x, err := c.node(path, n)
	if err != nil {
		return nil, err
	}
	return arrow.Fork(x), nil
}

func compileLoop(c *compiler, path string, n *yaml.Node) (arrow.Arrow[int64, int64], error) {
	f, err := fields(path, n, "while", "body")
	if err != nil {
		return nil, err
	}
	w, ok := f["while"]
	if !ok {
		return nil, errorAt(path, n, "loop requires \"while\"")
	}
	cond, err := parseCond(path+".while", w)
	if err != nil {
		return nil, err
	}
	b, ok := f["body"]
	if !ok {
		return nil, errorAt(path, n, "loop requires \"body\"")
	}
	body, err := c.node(path+".body", b)
	if err != nil {
		return nil, err
	}

	again := arrow.Bind(body, arrow.Map(arrow.Left[int64, int64]))
	done := arrow.Map(arrow.Right[int64, int64])
	return arrow.Fixpoint(arrow.If(cond, again, done)), nil
}

func compileEmit(c *compiler, path string, n *yaml.Node) (arrow.Arrow[int64, int64], error) {
	b, err := c.signal(path, n)
	if err != nil {
		return nil, err
	}
	return b.emit, nil
}

func compileAwait(c *compiler, path string, n *yaml.Node) (arrow.Arrow[int64, int64], error) {
	b, err := c.signal(path, n)
	if err != nil {
		return nil, err
	}
	if b.await == nil {
		return nil, errorAt(path, n, "cannot await pure signal %q; use await_immediate", b.decl.Name)
	}
	return b.await, nil
}

func compileAwaitImmediate(c *compiler, path string, n *yaml.Node) (arrow.Arrow[int64, int64], error) {
	b, err := c.signal(path, n)
	if err != nil {
		return nil, err
	}
	return signal.AwaitImmediate[int64](b.presence), nil
}

func compilePresent(c *compiler, path string, n *yaml.Node) (arrow.Arrow[int64, int64], error) {
	f, err := fields(path, n, "signal", "then", "else")
	if err != nil {
		return nil, err
	}
	s, ok := f["signal"]
	if !ok {
		return nil, errorAt(path, n, "present requires \"signal\"")
	}
	b, err := c.signal(path+".signal", s)
	if err != nil {
		return nil, err
	}

	branches := make([]arrow.Arrow[int64, int64], 2)
	for i, name := range []string{"then", "else"} {
		child, ok := f[name]
		if !ok {
			branches[i] = arrow.Identity[int64]()
			continue
		}
		if branches[i], err = c.node(path+"."+name, child); err != nil {
			return nil, err
		}
	}
	return signal.Present(b.presence, branches[0], branches[1]), nil
}
