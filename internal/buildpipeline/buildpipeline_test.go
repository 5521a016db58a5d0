package buildpipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"natsu/internal/diag"
	"natsu/internal/metadata"
)

const corlib = metadata.CorLibName

func object() *metadata.TypeSig { return metadata.ClassSig(corlib, "System", "Object") }

func corlibModule() *metadata.Module {
	return &metadata.Module{Name: corlib, Types: []*metadata.TypeDef{
		{Namespace: "System", Name: "Object"},
		{Namespace: "System", Name: "Int32", IsValueType: true},
	}}
}

func demoModule(fields ...*metadata.FieldDef) *metadata.Module {
	i4 := metadata.Prim(metadata.ElemI4)
	add := &metadata.MethodDef{Name: "Add", IsStatic: true, Return: i4,
		Params: []metadata.Param{{Name: "a", Type: i4}, {Name: "b", Type: i4}},
		Body: &metadata.MethodBody{Instructions: []metadata.Instruction{
			{Offset: 0, Op: metadata.OpLdarg0}, {Offset: 1, Op: metadata.OpLdarg1},
			{Offset: 2, Op: metadata.OpAdd}, {Offset: 3, Op: metadata.OpRet}}}}
	return &metadata.Module{Name: "Demo", References: []string{corlib}, Types: []*metadata.TypeDef{
		{Namespace: "Demo", Name: "Calc", BaseType: object(), Fields: fields, Methods: []*metadata.MethodDef{add}},
	}}
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnEvent(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) has(file string, stage Stage, status Status) bool {
	for _, ev := range r.events {
		if ev.File == file && ev.Stage == stage && ev.Status == status {
			return true
		}
	}
	return false
}

func images(t *testing.T, demo *metadata.Module) (dir, demoPath, corPath string) {
	t.Helper()
	dir = t.TempDir()
	corPath = filepath.Join(dir, "System.Private.CorLib.nmd")
	demoPath = filepath.Join(dir, "Demo.nmd.cbor")
	if err := metadata.WriteFile(corPath, corlibModule()); err != nil {
		t.Fatalf("write corlib: %v", err)
	}
	if err := metadata.WriteFile(demoPath, demo); err != nil {
		t.Fatalf("write demo: %v", err)
	}
	return dir, demoPath, corPath
}

func TestTranslateWritesPairAndReusesCache(t *testing.T) {
	dir, demo, cor := images(t, demoModule())
	out := filepath.Join(dir, "gen")
	rec := &recorder{}
	req := &TranslateRequest{Inputs: []string{demo}, References: []string{cor}, OutputDir: out,
		Translator: "test", Progress: rec, Files: []string{"Demo"}}

	res, err := Translate(context.Background(), req)
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if len(res.Modules) != 1 || res.Modules[0].Cached || res.Modules[0].Methods != 1 {
		t.Fatalf("first run %+v", res.Modules)
	}
	header, err := os.ReadFile(filepath.Join(out, "Demo.h"))
	if err != nil {
		t.Fatalf("header: %v", err)
	}
	if !strings.Contains(string(header), "struct Calc") {
		t.Fatalf("unexpected header:\n%s", header)
	}
	if _, err := os.Stat(filepath.Join(out, "Demo.cpp")); err != nil {
		t.Fatalf("source: %v", err)
	}
	if !rec.has("Demo", StageWrite, StatusDone) || !rec.has("", StageLoad, StatusWorking) {
		t.Fatalf("missing progress events: %+v", rec.events)
	}

	res, err = Translate(context.Background(), req)
	if err != nil {
		t.Fatalf("second translate: %v", err)
	}
	if !res.Modules[0].Cached || res.Modules[0].Methods != 1 {
		t.Fatalf("second run should reuse outputs: %+v", res.Modules)
	}
	if !rec.has("Demo", StageTranslate, StatusCached) {
		t.Fatalf("no cached event")
	}

	req.NoCache = true
	res, err = Translate(context.Background(), req)
	if err != nil || res.Modules[0].Cached {
		t.Fatalf("--no-cache run: %+v, %v", res.Modules, err)
	}
}

func TestFailedModuleWritesNothing(t *testing.T) {
	broken := &metadata.FieldDef{Name: "v", Type: metadata.ValueSig("", "Demo", "Missing")}
	dir, demo, cor := images(t, demoModule(broken))
	out := filepath.Join(dir, "gen")

	var failed []Event
	sink := FuncSink(func(ev Event) {
		if ev.Status == StatusError {
			failed = append(failed, ev)
		}
	})
	_, err := Translate(context.Background(), &TranslateRequest{Inputs: []string{demo}, References: []string{cor}, OutputDir: out, Progress: sink})
	if code, ok := diag.CodeOf(err); !ok || code != diag.TrMissingDependency {
		t.Fatalf("expected missing dependency, got %v", err)
	}
	if len(failed) != 1 || failed[0].Stage != StageTranslate || failed[0].Err == nil {
		t.Fatalf("error events %+v", failed)
	}
	for _, name := range []string{"Demo.h", "Demo.cpp"} {
		if _, err := os.Stat(filepath.Join(out, name)); !os.IsNotExist(err) {
			t.Fatalf("%s exists after a failed translation", name)
		}
	}
}

func TestGraphReport(t *testing.T) {
	_, demo, cor := images(t, demoModule())
	rep, err := Graph(context.Background(), demo, []string{cor}, 0)
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	if rep.Module != "Demo" || len(rep.Batches) != 1 || rep.Batches[0][0] != "Demo.Calc" {
		t.Fatalf("report %+v", rep)
	}
	var sb strings.Builder
	if err := rep.Print(&sb); err != nil {
		t.Fatalf("print: %v", err)
	}
	if !strings.Contains(sb.String(), "uses "+corlib) {
		t.Fatalf("externals missing:\n%s", sb.String())
	}
}

func TestChangedReferenceInvalidatesCache(t *testing.T) {
	i4 := metadata.Prim(metadata.ElemI4)
	config := func(literal bool) *metadata.Module {
		max := &metadata.FieldDef{Name: "Max", Type: i4, IsStatic: true}
		if literal {
			max.Constant = metadata.IntConst(metadata.ElemI4, 10)
		}
		m := corlibModule()
		m.Types = append(m.Types, &metadata.TypeDef{Namespace: "System", Name: "Config", BaseType: object(),
			Fields: []*metadata.FieldDef{max}})
		return m
	}
	get := &metadata.MethodDef{Name: "Get", IsStatic: true, Return: i4,
		Body: &metadata.MethodBody{Instructions: []metadata.Instruction{
			{Offset: 0, Op: metadata.OpLdsfld, Field: &metadata.FieldRef{
				DeclaringType: metadata.ClassSig(corlib, "System", "Config"), Name: "Max", Type: i4}},
			{Offset: 5, Op: metadata.OpRet}}}}
	demo := &metadata.Module{Name: "Demo", References: []string{corlib}, Types: []*metadata.TypeDef{
		{Namespace: "Demo", Name: "Reader", BaseType: object(), Methods: []*metadata.MethodDef{get}},
	}}

	dir := t.TempDir()
	corPath, demoPath := filepath.Join(dir, "System.Private.CorLib.nmd"), filepath.Join(dir, "Demo.nmd")
	if err := metadata.WriteFile(demoPath, demo); err != nil {
		t.Fatalf("write demo: %v", err)
	}
	translate := func(out string, literal bool) (ModuleResult, string) {
		t.Helper()
		if err := metadata.WriteFile(corPath, config(literal)); err != nil {
			t.Fatalf("write corlib: %v", err)
		}
		res, err := Translate(context.Background(), &TranslateRequest{Inputs: []string{demoPath},
			References: []string{corPath}, OutputDir: out, Translator: "test"})
		if err != nil {
			t.Fatalf("translate: %v", err)
		}
		source, err := os.ReadFile(filepath.Join(out, "Demo.cpp"))
		if err != nil {
			t.Fatalf("source: %v", err)
		}
		return res.Modules[0], string(source)
	}

	out := filepath.Join(dir, "gen")
	_, first := translate(out, true)
	if strings.Contains(first, "static_holder") {
		t.Fatalf("literal field read through the static block:\n%s", first)
	}
	mr, second := translate(out, false)
	if mr.Cached {
		t.Fatalf("output reused after a referenced image changed")
	}
	_, fresh := translate(filepath.Join(dir, "fresh"), false)
	if second != fresh || !strings.Contains(second, "static_holder") {
		t.Fatalf("incremental output differs from a fresh run:\n%s\n---\n%s", second, fresh)
	}
}
