// Package workflow reads declarative workflow files and turns their steps
// into plans.
//
// # Workflow File Structure
//
// A workflow file names a workflow and lists its steps in order. Each step
// declares a one-line command and the inputs, outputs and parameters it
// uses:
//
//	name: wf
//	description: Prepare the training data
//	steps:
//	  - head:
//	      command: head -n 10 data/collection/models.csv data/collection/colors.csv > intermediate
//	      inputs:
//	        - models:
//	            path: data/collection/models.csv
//	        - colors:
//	            path: data/collection/colors.csv
//	      outputs:
//	        - intermediate:
//	            path: intermediate
//	      parameters:
//	        - n:
//	            prefix: -n
//	            value: 10
//
// Arguments may also be bare scalars (a path for inputs and outputs, a value
// for parameters); unnamed arguments get the names input-N, output-N and
// parameter-N. The names inputs, outputs and parameters are reserved. The
// public name of a step is <workflow-name>.<step-name>.
//
// Files are parsed by a Format chosen from a Registry by file extension.
// YAML (.yaml, .yml) and HCL (.hcl) are provided.
//
// # Binding
//
// BindStep parses the step command with the cmdline package and binds every
// declared argument to its position on the command line. Commands may name
// arguments explicitly ($name), take a whole list ($inputs, $outputs,
// $parameters) or simply repeat the declared path or value. Literal words are
// matched against unbound parameters, then inputs, then outputs:
//
//  1. the prefixed value, either as one word (--out=x) or as two (-n 10)
//  2. the bare value, while the base command is still open
//  3. a whitespace-normalised match over one or more words
//
// The words before the first match, reference, redirection or flag form the
// base command, which replaces the command of the step. Unmatched words after
// that become implicit arguments and unmatched declarations are reported as
// warnings; neither stops the step from being used.
package workflow
