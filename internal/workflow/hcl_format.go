package workflow

import (
	"strings"

	"github.com/giantswarm/lineage/internal/api"
	"github.com/giantswarm/lineage/internal/plan"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// HCLFormat reads workflow files written in HCL:
//
//	workflow "analysis" {
//	  step "head" {
//	    command = "head -n 10 data/models.csv > intermediate"
//	    input "models" { path = "data/models.csv" }
//	    output "intermediate" {
//	      path      = "intermediate"
//	      mapped_to = "stdout"
//	    }
//	    parameter "n" {
//	      prefix = "-n"
//	      value  = 10
//	    }
//	  }
//	}
type HCLFormat struct{}

type hclFile struct {
	Workflows []*hclWorkflow `hcl:"workflow,block"`
}

type hclWorkflow struct {
	Name        string     `hcl:"name,label"`
	Description string     `hcl:"description,optional"`
	Keywords    []string   `hcl:"keywords,optional"`
	Steps       []*hclStep `hcl:"step,block"`
}

type hclStep struct {
	Name         string          `hcl:"name,label"`
	Command      string          `hcl:"command"`
	Description  string          `hcl:"description,optional"`
	Keywords     []string        `hcl:"keywords,optional"`
	SuccessCodes []int           `hcl:"success_codes,optional"`
	Inputs       []*hclInput     `hcl:"input,block"`
	Outputs      []*hclOutput    `hcl:"output,block"`
	Parameters   []*hclParameter `hcl:"parameter,block"`
}

type hclInput struct {
	Name        string `hcl:"name,label"`
	Path        string `hcl:"path"`
	Description string `hcl:"description,optional"`
	Prefix      string `hcl:"prefix,optional"`
	Implicit    bool   `hcl:"implicit,optional"`
	MappedTo    string `hcl:"mapped_to,optional"`
}

type hclOutput struct {
	Name         string `hcl:"name,label"`
	Path         string `hcl:"path"`
	Description  string `hcl:"description,optional"`
	Prefix       string `hcl:"prefix,optional"`
	Implicit     bool   `hcl:"implicit,optional"`
	MappedTo     string `hcl:"mapped_to,optional"`
	Persist      bool   `hcl:"persist,optional"`
	CreateFolder bool   `hcl:"create_folder,optional"`
}

type hclParameter struct {
	Name        string    `hcl:"name,label"`
	Value       cty.Value `hcl:"value"`
	Description string    `hcl:"description,optional"`
	Prefix      string    `hcl:"prefix,optional"`
	Implicit    bool      `hcl:"implicit,optional"`
}

func (HCLFormat) Name() string { return "hcl" }

func (HCLFormat) Extensions() []string { return []string{".hcl"} }

func (HCLFormat) Parse(path string, data []byte) (*File, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, diagError(path, diags)
	}

	var decoded hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &decoded); diags.HasErrors() {
		return nil, diagError(path, diags)
	}
	if len(decoded.Workflows) != 1 {
		return nil, &api.ParseError{File: path, Attribute: "workflow", Message: "expected exactly one workflow block"}
	}

	wf := decoded.Workflows[0]
	lines := stepLines(file)
	f := &File{
		Name:        wf.Name,
		Path:        path,
		Description: wf.Description,
		Keywords:    wf.Keywords,
	}
	for _, s := range wf.Steps {
		step, err := s.toStep(lines[s.Name])
		if err != nil {
			return nil, withFile(err, path)
		}
		f.Steps = append(f.Steps, step)
	}
	return f, nil
}

func (s *hclStep) toStep(line int) (*Step, error) {
	step := &Step{
		Name:            s.Name,
		Description:     s.Description,
		Keywords:        s.Keywords,
		Command:         s.Command,
		OriginalCommand: s.Command,
		SuccessCodes:    s.SuccessCodes,
		Line:            line,
	}
	fail := func(attribute, token, message string) error {
		return &api.ParseError{Step: s.Name, Attribute: attribute, Token: token, Line: line, Message: message}
	}

	for _, in := range s.Inputs {
		mapped, err := plan.ParseStream(in.MappedTo)
		if err != nil {
			return nil, fail("mapped_to", in.Name, err.Error())
		}
		step.Inputs = append(step.Inputs, plan.Input{
			Argument: plan.Argument{Name: in.Name, Description: in.Description, Prefix: in.Prefix, Implicit: in.Implicit},
			Path:     in.Path,
			MappedTo: mapped,
		})
	}
	for _, out := range s.Outputs {
		mapped, err := plan.ParseStream(out.MappedTo)
		if err != nil {
			return nil, fail("mapped_to", out.Name, err.Error())
		}
		step.Outputs = append(step.Outputs, plan.Output{
			Argument:     plan.Argument{Name: out.Name, Description: out.Description, Prefix: out.Prefix, Implicit: out.Implicit},
			Path:         out.Path,
			MappedTo:     mapped,
			Persist:      out.Persist,
			CreateFolder: out.CreateFolder,
		})
	}
	for _, p := range s.Parameters {
		value, valueType, ok := ctyString(p.Value)
		if !ok {
			return nil, fail("value", p.Name, "parameter value must be a string, number or bool")
		}
		step.Parameters = append(step.Parameters, plan.Parameter{
			Argument:  plan.Argument{Name: p.Name, Description: p.Description, Prefix: p.Prefix, Implicit: p.Implicit},
			Value:     value,
			ValueType: valueType,
		})
	}
	return step, nil
}

// ctyString renders a primitive cty value the way it would be typed on a
// command line.
func ctyString(v cty.Value) (string, plan.ValueType, bool) {
	if v.IsNull() || !v.IsKnown() {
		return "", "", false
	}
	switch v.Type() {
	case cty.String:
		return v.AsString(), plan.ValueString, true
	case cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			return bf.Text('f', -1), plan.ValueInt, true
		}
		return bf.Text('g', -1), plan.ValueFloat, true
	case cty.Bool:
		if v.True() {
			return "true", plan.ValueBool, true
		}
		return "false", plan.ValueBool, true
	}
	return "", "", false
}

// stepLines maps step names to the line of their block.
func stepLines(file *hcl.File) map[string]int {
	lines := make(map[string]int)
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return lines
	}
	for _, wf := range body.Blocks {
		if wf.Type != "workflow" {
			continue
		}
		for _, block := range wf.Body.Blocks {
			if block.Type == "step" && len(block.Labels) > 0 {
				lines[block.Labels[0]] = block.TypeRange.Start.Line
			}
		}
	}
	return lines
}

func diagError(path string, diags hcl.Diagnostics) error {
	for _, diag := range diags {
		if diag.Severity != hcl.DiagError {
			continue
		}
		err := &api.ParseError{File: path, Message: diag.Summary}
		if diag.Detail != "" {
			err.Message = diag.Summary + ": " + strings.TrimSuffix(diag.Detail, ".")
		}
		if diag.Subject != nil {
			err.Line = diag.Subject.Start.Line
		}
		return err
	}
	return &api.ParseError{File: path, Message: diags.Error()}
}
