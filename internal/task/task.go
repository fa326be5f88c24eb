// Package task resolves per-package task declarations into descriptors.
//
// A package may declare a generate section, a verify section, both, or
// neither. Resolution is a pure transformation over the manifest's raw HCL
// bodies; no process is spawned and no file is touched here.
package task

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/wsgen/internal/workspace"
)

// Kind distinguishes the two task phases.
type Kind string

const (
	// KindGenerate marks a code-generation task.
	KindGenerate Kind = "generate"
	// KindVerify marks a freshness-verification task.
	KindVerify Kind = "verify"
)

// WorkspaceBinary is the only recognized task kind: the generator or verifier
// is a binary target defined within the same workspace.
const WorkspaceBinary = "workspace_binary"

// Descriptor is one resolved task declaration.
type Descriptor struct {
	Kind Kind
	// Binary names a binary target that must exist somewhere in the
	// workspace (in a package other than the one being generated).
	Binary string
	// Args are appended to the binary's own argument list, after the
	// separator, in declaration order.
	Args []string
}

// ConfigurationError reports a malformed task section. It aborts the run
// before any process is spawned.
type ConfigurationError struct {
	Package string
	Section Kind
	Detail  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s section in the manifest of package %q: %s", e.Section, e.Package, e.Detail)
}

var sectionSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "kind", Required: true},
		{Name: "bin", Required: true},
		{Name: "args"},
	},
}

// Resolve returns the descriptors declared by pkg, in generate-then-verify
// order. A package with no task sections resolves to an empty slice.
func Resolve(pkg *workspace.Package) ([]Descriptor, error) {
	var out []Descriptor
	if pkg.Generate != nil {
		d, err := decodeSection(pkg.Name, KindGenerate, pkg.Generate)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	if pkg.Verify != nil {
		d, err := decodeSection(pkg.Name, KindVerify, pkg.Verify)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, nil
}

// For returns the descriptor of the given kind declared by pkg, or nil when
// the package has no section for that kind.
func For(pkg *workspace.Package, kind Kind) (*Descriptor, error) {
	descs, err := Resolve(pkg)
	if err != nil {
		return nil, err
	}
	for i := range descs {
		if descs[i].Kind == kind {
			return &descs[i], nil
		}
	}
	return nil, nil
}

func decodeSection(pkgName string, kind Kind, body hcl.Body) (*Descriptor, error) {
	content, diags := body.Content(sectionSchema)
	if diags.HasErrors() {
		return nil, &ConfigurationError{Package: pkgName, Section: kind, Detail: diags.Error()}
	}

	kindVal, err := stringAttr(content.Attributes["kind"])
	if err != nil {
		return nil, &ConfigurationError{Package: pkgName, Section: kind, Detail: err.Error()}
	}
	if kindVal != WorkspaceBinary {
		return nil, &ConfigurationError{
			Package: pkgName,
			Section: kind,
			Detail:  fmt.Sprintf("unknown kind %q, the only supported kind is %q", kindVal, WorkspaceBinary),
		}
	}

	bin, err := stringAttr(content.Attributes["bin"])
	if err != nil {
		return nil, &ConfigurationError{Package: pkgName, Section: kind, Detail: err.Error()}
	}
	if bin == "" {
		return nil, &ConfigurationError{Package: pkgName, Section: kind, Detail: "bin must not be empty"}
	}

	var args []string
	if attr, ok := content.Attributes["args"]; ok {
		args, err = stringListAttr(attr)
		if err != nil {
			return nil, &ConfigurationError{Package: pkgName, Section: kind, Detail: err.Error()}
		}
	}

	return &Descriptor{Kind: kind, Binary: bin, Args: args}, nil
}

func stringAttr(attr *hcl.Attribute) (string, error) {
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return "", fmt.Errorf("evaluating %s: %s", attr.Name, diags.Error())
	}
	if val.IsNull() {
		return "", fmt.Errorf("%s must not be null", attr.Name)
	}
	val, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("%s must be a string: %w", attr.Name, err)
	}
	return val.AsString(), nil
}

func stringListAttr(attr *hcl.Attribute) ([]string, error) {
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("evaluating %s: %s", attr.Name, diags.Error())
	}
	if val.IsNull() {
		return nil, fmt.Errorf("%s must not be null", attr.Name)
	}
	if !val.Type().IsTupleType() && !val.Type().IsListType() {
		return nil, fmt.Errorf("%s must be a list of strings, got %s", attr.Name, val.Type().FriendlyName())
	}
	var out []string
	for i, elem := range val.AsValueSlice() {
		elem, err := convert.Convert(elem, cty.String)
		if err != nil {
			return nil, fmt.Errorf("%s[%d] must be a string: %w", attr.Name, i, err)
		}
		if elem.IsNull() {
			return nil, fmt.Errorf("%s[%d] must not be null", attr.Name, i)
		}
		out = append(out, elem.AsString())
	}
	return out, nil
}
