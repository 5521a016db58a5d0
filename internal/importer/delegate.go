package importer

import (
	"strings"

	"natsu/internal/diag"
	"natsu/internal/mangle"
	"natsu/internal/metadata"
	"natsu/internal/rtabi"
)

// Fields of System.Delegate and System.MulticastDelegate read by the
// synthesized bodies.
const (
	delegateTarget     = "_target"
	delegateMethodPtr  = "_methodPtr"
	delegateInvocation = "_invocationList"
)

// importDelegate synthesizes the runtime-provided constructor and Invoke of
// a delegate type.
func importDelegate(env *Env, t *metadata.TypeDef, m *metadata.MethodDef, loc diag.Location) (*Result, error) {
	ctx := mangle.Context{Module: env.Module, CorLib: env.Closure.CorLib()}.WithType(t).WithMethod(m)
	params := make([]string, len(m.Params))
	for i := range m.Params {
		name, err := mangle.ParamName(m, i)
		if err != nil {
			return nil, diag.Locate(err, loc)
		}
		params[i] = name
	}
	switch {
	case m.IsConstructor():
		if len(params) != 2 {
			return nil, diag.Errorf(diag.TrBodilessMethod, loc, "delegate constructor takes %d parameters, want 2", len(params))
		}
		return &Result{Lines: []string{
			"_this->" + delegateTarget + " = " + params[0] + ";",
			"_this->" + delegateMethodPtr + " = " + params[1] + ";",
		}, Returns: 1}, nil
	case m.Name == "Invoke":
	default:
		return nil, diag.Errorf(diag.TrBodilessMethod, loc, "runtime method %s of delegate %s is not supported", m.Name, t.FullName())
	}

	ret, err := ctx.VariableTypeName(m.Return)
	if err != nil {
		return nil, diag.Locate(err, loc)
	}
	sig := []string{rtabi.Inst(rtabi.GCObjRef, rtabi.ObjectTypeRef)}
	for _, p := range m.Params {
		cpp, err := ctx.VariableTypeName(p.Type)
		if err != nil {
			return nil, diag.Locate(err, loc)
		}
		sig = append(sig, cpp)
	}
	invoke := func(recv string) string {
		args := append([]string{recv + "->" + delegateTarget}, params...)
		return rtabi.Call("reinterpret_cast<method_t>((intptr_t)"+recv+"->"+delegateMethodPtr+")", args...)
	}
	lines := []string{"typedef " + ret + "(*method_t)(" + strings.Join(sig, ", ") + ");"}
	void := m.Return.IsVoid()

	multicast := false
	if f, _ := env.Closure.FindField(t, delegateInvocation); f != nil {
		multicast = true
	}
	if !multicast {
		if void {
			lines = append(lines, invoke("_this")+";")
		} else {
			lines = append(lines, "return "+invoke("_this")+";")
		}
		return &Result{Lines: lines, Returns: 1}, nil
	}

	self, err := ctx.TypeName(t.Sig(env.Module))
	if err != nil {
		return nil, diag.Locate(err, loc)
	}
	lines = append(lines, "if (!_this->"+delegateInvocation+")", "{")
	if void {
		lines = append(lines, "    "+invoke("_this")+";", "    return;")
	} else {
		lines = append(lines, "    return "+invoke("_this")+";")
	}
	lines = append(lines, "}", "else", "{")
	if !void {
		lines = append(lines, "    "+ret+" result;")
	}
	lines = append(lines,
		"    for (auto d : *_this->"+delegateInvocation+")",
		"    {",
		"        auto typed_d = d.cast<"+self+">();")
	if void {
		lines = append(lines, "        "+invoke("typed_d")+";")
	} else {
		lines = append(lines, "        result = "+invoke("typed_d")+";")
	}
	lines = append(lines, "    }")
	if !void {
		lines = append(lines, "    return result;")
	}
	lines = append(lines, "}")
	return &Result{Lines: lines, Returns: 1}, nil
}
