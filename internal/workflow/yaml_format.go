package workflow

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/giantswarm/lineage/internal/api"
	"github.com/giantswarm/lineage/internal/plan"

	"gopkg.in/yaml.v3"
)

// YAMLFormat reads workflow files written in YAML:
//
//	name: analysis
//	steps:
//	  - head:
//	      command: head -n 10 data/models.csv > intermediate
//	      inputs:
//	        - models: data/models.csv
//	      outputs:
//	        - intermediate: {path: intermediate, mapped_to: stdout}
//	      parameters:
//	        - n: {value: 10, prefix: -n}
type YAMLFormat struct{}

func (YAMLFormat) Name() string { return "yaml" }

func (YAMLFormat) Extensions() []string { return []string{".yml", ".yaml"} }

func (YAMLFormat) Parse(path string, data []byte) (*File, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &api.ParseError{File: path, Message: strings.TrimPrefix(err.Error(), "yaml: ")}
	}
	if len(doc.Content) == 0 {
		return nil, &api.ParseError{File: path, Message: "workflow file is empty"}
	}
	d := yamlDecoder{path: path}
	return d.file(doc.Content[0])
}

type yamlDecoder struct {
	path string
	step string
}

func (d *yamlDecoder) fail(n *yaml.Node, attribute, message string) error {
	return &api.ParseError{
		File:      d.path,
		Step:      d.step,
		Attribute: attribute,
		Token:     n.Value,
		Line:      n.Line,
		Message:   message,
	}
}

// pairs iterates over the key/value pairs of a mapping node.
func (d *yamlDecoder) pairs(n *yaml.Node, attribute string, fn func(key, value *yaml.Node) error) error {
	if n.Kind != yaml.MappingNode {
		return d.fail(n, attribute, "expected a mapping")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if err := fn(n.Content[i], n.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func (d *yamlDecoder) file(root *yaml.Node) (*File, error) {
	f := &File{Path: d.path}
	err := d.pairs(root, "", func(key, value *yaml.Node) error {
		var err error
		switch key.Value {
		case "name":
			f.Name, err = d.scalar(value, "name")
		case "description":
			f.Description, err = d.scalar(value, "description")
		case "keywords":
			f.Keywords, err = d.strings(value, "keywords")
		case "steps":
			f.Steps, err = d.steps(value)
		default:
			err = d.fail(key, key.Value, "unknown attribute")
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (d *yamlDecoder) steps(n *yaml.Node) ([]*Step, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, d.fail(n, "steps", "expected a list of steps")
	}
	steps := make([]*Step, 0, len(n.Content))
	for _, item := range n.Content {
		if item.Kind != yaml.MappingNode || len(item.Content) != 2 {
			return nil, d.fail(item, "steps", "each step must be a mapping with a single key, the step name")
		}
		step, err := d.stepBody(item.Content[0], item.Content[1])
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	d.step = ""
	return steps, nil
}

func (d *yamlDecoder) stepBody(key, body *yaml.Node) (*Step, error) {
	step := &Step{Name: key.Value, Line: key.Line}
	d.step = key.Value

	err := d.pairs(body, "steps", func(k, v *yaml.Node) error {
		var err error
		switch k.Value {
		case "command":
			step.OriginalCommand, err = d.scalar(v, "command")
		case "description":
			step.Description, err = d.scalar(v, "description")
		case "keywords":
			step.Keywords, err = d.strings(v, "keywords")
		case "success_codes":
			step.SuccessCodes, err = d.ints(v, "success_codes")
		case "inputs":
			err = d.arguments(v, plan.KindInput, step)
		case "outputs":
			err = d.arguments(v, plan.KindOutput, step)
		case "parameters":
			err = d.arguments(v, plan.KindParameter, step)
		default:
			err = d.fail(k, k.Value, "unknown step attribute")
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	step.Command = step.OriginalCommand
	return step, nil
}

// yamlArgument collects the attributes of one declared argument.
type yamlArgument struct {
	plan.Argument
	value        string
	valueType    plan.ValueType
	mappedTo     plan.Stream
	persist      bool
	createFolder bool
}

func (d *yamlDecoder) arguments(n *yaml.Node, kind plan.ArgumentKind, step *Step) error {
	attribute := string(kind) + "s"
	if n.Kind != yaml.SequenceNode {
		return d.fail(n, attribute, "expected a list")
	}

	for _, item := range n.Content {
		arg, err := d.argument(item, kind)
		if err != nil {
			return err
		}
		switch kind {
		case plan.KindInput:
			step.Inputs = append(step.Inputs, plan.Input{Argument: arg.Argument, Path: arg.value, MappedTo: arg.mappedTo})
		case plan.KindOutput:
			step.Outputs = append(step.Outputs, plan.Output{
				Argument:     arg.Argument,
				Path:         arg.value,
				MappedTo:     arg.mappedTo,
				Persist:      arg.persist,
				CreateFolder: arg.createFolder,
			})
		case plan.KindParameter:
			step.Parameters = append(step.Parameters, plan.Parameter{Argument: arg.Argument, Value: arg.value, ValueType: arg.valueType})
		}
	}
	return nil
}

// argument decodes a bare scalar (an unnamed argument) or a single-key
// mapping from the argument name to its value or attributes.
func (d *yamlDecoder) argument(n *yaml.Node, kind plan.ArgumentKind) (*yamlArgument, error) {
	attribute := string(kind) + "s"
	arg := &yamlArgument{}

	switch n.Kind {
	case yaml.ScalarNode:
		arg.value, arg.valueType = n.Value, scalarType(n)
		return arg, nil
	case yaml.MappingNode:
		if len(n.Content) != 2 {
			return nil, d.fail(n, attribute, "each argument must be a mapping with a single key, the argument name")
		}
	default:
		return nil, d.fail(n, attribute, "expected an argument")
	}

	arg.Name = n.Content[0].Value
	body := n.Content[1]
	if body.Kind == yaml.ScalarNode {
		arg.value, arg.valueType = body.Value, scalarType(body)
		return arg, nil
	}

	valueKey := "path"
	if kind == plan.KindParameter {
		valueKey = "value"
	}

	err := d.pairs(body, attribute, func(k, v *yaml.Node) error {
		var err error
		switch {
		case k.Value == valueKey:
			arg.value, err = d.scalar(v, valueKey)
			arg.valueType = scalarType(v)
		case k.Value == "description":
			arg.Description, err = d.scalar(v, "description")
		case k.Value == "prefix":
			arg.Prefix, err = d.scalar(v, "prefix")
		case k.Value == "implicit":
			arg.Implicit, err = d.bool(v, "implicit")
		case k.Value == "mapped_to" && kind != plan.KindParameter:
			var s string
			if s, err = d.scalar(v, "mapped_to"); err == nil {
				if arg.mappedTo, err = plan.ParseStream(s); err != nil {
					err = d.fail(v, "mapped_to", err.Error())
				}
			}
		case k.Value == "persist" && kind == plan.KindOutput:
			arg.persist, err = d.bool(v, "persist")
		case k.Value == "create_folder" && kind == plan.KindOutput:
			arg.createFolder, err = d.bool(v, "create_folder")
		default:
			err = d.fail(k, k.Value, fmt.Sprintf("unknown %s attribute", kind))
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return arg, nil
}

func scalarType(n *yaml.Node) plan.ValueType {
	switch n.ShortTag() {
	case "!!int":
		return plan.ValueInt
	case "!!float":
		return plan.ValueFloat
	case "!!bool":
		return plan.ValueBool
	case "!!str":
		return plan.ValueString
	}
	return ""
}

func (d *yamlDecoder) scalar(n *yaml.Node, attribute string) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", d.fail(n, attribute, "expected a scalar value")
	}
	return n.Value, nil
}

func (d *yamlDecoder) bool(n *yaml.Node, attribute string) (bool, error) {
	var b bool
	if n.Kind != yaml.ScalarNode || n.Decode(&b) != nil {
		return false, d.fail(n, attribute, "expected true or false")
	}
	return b, nil
}

func (d *yamlDecoder) strings(n *yaml.Node, attribute string) ([]string, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, d.fail(n, attribute, "expected a list")
	}
	res := make([]string, 0, len(n.Content))
	for _, item := range n.Content {
		s, err := d.scalar(item, attribute)
		if err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, nil
}

func (d *yamlDecoder) ints(n *yaml.Node, attribute string) ([]int, error) {
	items, err := d.strings(n, attribute)
	if err != nil {
		return nil, err
	}
	res := make([]int, 0, len(items))
	for i, s := range items {
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, d.fail(n.Content[i], attribute, "expected an integer")
		}
		res = append(res, v)
	}
	return res, nil
}
